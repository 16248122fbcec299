package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tokenrush.gg/internal/ledger"
	"tokenrush.gg/internal/persistence/indexdb"
	"tokenrush.gg/internal/persistence/retention"
	"tokenrush.gg/internal/persistence/snapshot"
)

func latestSnapshot(dataDir string) string {
	dir := filepath.Join(dataDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestUnix uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		unix, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || unix > bestUnix {
			bestUnix = unix
			best = filepath.Join(dir, name)
		}
	}
	return best
}

func writeSnapshot(engine *ledger.Engine, idx *indexdb.SQLiteIndex, mirror *mirrorRuntime, dataDir string) (string, error) {
	snap, err := engine.ExportSnapshot()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dataDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.CreatedUnix))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		return "", err
	}
	idx.RecordSnapshot(path, snap)
	mirror.Enqueue(path)
	return path, nil
}

func snapshotLoop(ctx context.Context, engine *ledger.Engine, idx *indexdb.SQLiteIndex, mirror *mirrorRuntime, dataDir string, every time.Duration, keep int, logger *log.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !engine.Initialized() {
				continue
			}
			path, err := writeSnapshot(engine, idx, mirror, dataDir)
			if err != nil {
				logger.Printf("snapshot failed: %v", err)
				continue
			}
			logger.Printf("snapshot: %s", path)
			removed, err := retention.Prune(filepath.Join(dataDir, "snapshots"), keep)
			if err != nil {
				logger.Printf("snapshot prune failed: %v", err)
			} else if len(removed) > 0 {
				logger.Printf("snapshot prune: removed %d old snapshots", len(removed))
			}
		}
	}
}

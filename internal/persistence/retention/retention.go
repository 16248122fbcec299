// Package retention bounds the snapshot directory. Snapshots are named
// <unix>.snap.zst; pruning keeps the newest N and removes the rest, so a
// long-lived server does not accumulate one file per interval forever.
package retention

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const snapshotSuffix = ".snap.zst"

// Prune deletes all but the newest keep snapshots in dir. Returns the
// removed file names. keep <= 0 disables pruning. Files that do not match
// the <unix>.snap.zst naming are left alone.
func Prune(dir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type snap struct {
		name string
		unix int64
	}
	var snaps []snap
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(e.Name(), snapshotSuffix)
		unix, err := strconv.ParseInt(stamp, 10, 64)
		if err != nil {
			continue
		}
		snaps = append(snaps, snap{name: e.Name(), unix: unix})
	}
	if len(snaps) <= keep {
		return nil, nil
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].unix > snaps[j].unix })

	var removed []string
	for _, s := range snaps[keep:] {
		if err := os.Remove(filepath.Join(dir, s.name)); err != nil {
			return removed, err
		}
		removed = append(removed, s.name)
	}
	return removed, nil
}

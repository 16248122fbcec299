package ledger

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"

	"tokenrush.gg/internal/extledger"
	"tokenrush.gg/internal/persistence/snapshot"
)

func TestSnapshotRoundTrip(t *testing.T) {
	e, _, clk := newTestEngine(t)
	mustInit(t, e, "owner", 10, false, 100_000)
	ctx := context.Background()

	if _, err := e.AutoMint(ctx, "owner", 1000); err != nil {
		t.Fatalf("automint: %v", err)
	}
	for _, p := range []string{"p1", "p2"} {
		if _, err := e.EarnFromPool(ctx, p, p, 25); err != nil {
			t.Fatalf("earn: %v", err)
		}
	}

	snap, err := e.ExportSnapshot()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	path := filepath.Join(t.TempDir(), "1.snap.zst")
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := snapshot.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	restored := NewEngine(Options{
		Denom:       "urush",
		PoolAccount: "rush-active-pool",
		Clock:       clk,
		External:    extledger.NewMemory(),
		Logger:      log.New(io.Discard, "", 0),
	})
	if err := restored.RestoreSnapshot(loaded); err != nil {
		t.Fatalf("restore: %v", err)
	}

	st, _ := restored.Status()
	orig, _ := e.Status()
	if st != orig {
		t.Fatalf("restored status %+v != original %+v", st, orig)
	}
	for _, p := range []string{"p1", "p2"} {
		got, ok := restored.PlayerStats(p)
		if !ok {
			t.Fatalf("missing player %s after restore", p)
		}
		want, _ := e.PlayerStats(p)
		if got != want {
			t.Fatalf("player %s: restored %+v != original %+v", p, got, want)
		}
	}
}

func TestRestoreRefusesInitializedEngine(t *testing.T) {
	e, _, _ := newTestEngine(t)
	mustInit(t, e, "owner", 10, true, 0)
	if err := e.RestoreSnapshot(snapshot.SnapshotV1{}); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestExportBeforeInitializeFails(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if _, err := e.ExportSnapshot(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

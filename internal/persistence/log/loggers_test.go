package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"tokenrush.gg/internal/ledger"
)

func TestEventLoggerWritesReadableJSONL(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLogger(dir)

	l.RecordMint(ledger.MintEvent{Amount: 100, GameAmount: 80, OwnerAmount: 20, TotalMinted: 100})
	l.RecordEarn(ledger.EarnEvent{Player: "p1", Amount: 5, TotalEarned: 5})
	l.RecordPause(ledger.PauseEvent{TotalMinted: 100})
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := os.ReadDir(filepath.Join(dir, "events"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one event file, got %v (%v)", files, err)
	}
	name := files[0].Name()
	if !strings.HasPrefix(name, "events-") || !strings.HasSuffix(name, ".jsonl.zst") {
		t.Fatalf("unexpected file name %q", name)
	}

	f, err := os.Open(filepath.Join(dir, "events", name))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var kinds []string
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e struct {
			Kind string `json:"kind"`
			TS   string `json:"ts"`
		}
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		if e.TS == "" {
			t.Fatalf("missing timestamp: %q", sc.Text())
		}
		kinds = append(kinds, e.Kind)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []string{"MINT", "EARN", "PAUSE"}
	if len(kinds) != len(want) {
		t.Fatalf("kinds=%v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds=%v, want %v", kinds, want)
		}
	}
}

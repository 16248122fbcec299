package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"tokenrush.gg/internal/ledger"
)

// JSONLZstdWriter appends one JSON object per line to hourly-rotated
// zstd-compressed files. The JSONL stream is the durable record of every
// ledger transition; the sqlite index is rebuildable from it.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string

	// OnRotate, when set, is called with the path of each segment after it
	// is closed. Runs under the writer lock; keep it cheap.
	OnRotate func(path string)

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		closed := w.f.Name()
		_ = w.f.Close()
		w.f = nil
		if w.OnRotate != nil {
			w.OnRotate(closed)
		}
	}
	w.w = nil
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

type entry struct {
	Kind string `json:"kind"`
	TS   string `json:"ts"`
	Data any    `json:"data"`
}

// EventLogger writes every mint/earn/pause transition as compressed JSONL.
// Implements ledger.EventSink; write errors are swallowed (the engine must
// not fail a committed transition over a log write).
type EventLogger struct{ w *JSONLZstdWriter }

func NewEventLogger(dataDir string) *EventLogger {
	return &EventLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "events"), "events")}
}

// SetOnRotate forwards closed segment paths, used to mirror finished
// event-log files offsite. Call before the first event is recorded.
func (l *EventLogger) SetOnRotate(fn func(path string)) { l.w.OnRotate = fn }

func (l *EventLogger) record(kind string, v any) {
	_ = l.w.Write(entry{Kind: kind, TS: time.Now().UTC().Format(time.RFC3339Nano), Data: v})
}

func (l *EventLogger) RecordMint(ev ledger.MintEvent)   { l.record("MINT", ev) }
func (l *EventLogger) RecordEarn(ev ledger.EarnEvent)   { l.record("EARN", ev) }
func (l *EventLogger) RecordPause(ev ledger.PauseEvent) { l.record("PAUSE", ev) }
func (l *EventLogger) Close() error                     { return l.w.Close() }

package main

import (
	"tokenrush.gg/internal/ledger"
)

// sinkFan fans one engine event out to every configured sink.
type sinkFan struct {
	sinks []ledger.EventSink
}

// A typed-nil sink (e.g. the sqlite index when -disable_db is set) is safe to
// keep in the fan: its Record methods no-op on a nil receiver.
func newSinkFan(sinks ...ledger.EventSink) *sinkFan {
	f := &sinkFan{}
	for _, s := range sinks {
		if s == nil {
			continue
		}
		f.sinks = append(f.sinks, s)
	}
	return f
}

func (f *sinkFan) RecordMint(ev ledger.MintEvent) {
	for _, s := range f.sinks {
		s.RecordMint(ev)
	}
}

func (f *sinkFan) RecordEarn(ev ledger.EarnEvent) {
	for _, s := range f.sinks {
		s.RecordEarn(ev)
	}
}

func (f *sinkFan) RecordPause(ev ledger.PauseEvent) {
	for _, s := range f.sinks {
		s.RecordPause(ev)
	}
}

package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"tokenrush.gg/internal/ledger"
	"tokenrush.gg/internal/persistence/snapshot"
)

// SQLiteIndex is a non-authoritative read-model index over ledger events.
// Writes go through a buffered channel into a single writer goroutine and are
// dropped under backpressure; the JSONL event logs remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropMint     atomic.Uint64
	dropEarn     atomic.Uint64
	dropPause    atomic.Uint64
	dropSnapshot atomic.Uint64
}

type reqKind int

const (
	reqMint reqKind = iota + 1
	reqEarn
	reqPause
	reqSnapshot
)

type req struct {
	kind reqKind
	ts   string

	mint     ledger.MintEvent
	earn     ledger.EarnEvent
	pause    ledger.PauseEvent
	snapshot snapshotRow
}

type snapshotRow struct {
	Path        string
	TotalMinted uint64
	ActivePool  uint64
	Players     int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Buffered for bursty earn traffic without stalling the engine.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads; NORMAL is a fair
	// durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS mints (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			amount INTEGER NOT NULL,
			game_amount INTEGER NOT NULL,
			owner_amount INTEGER NOT NULL,
			total_minted INTEGER NOT NULL,
			active_pool INTEGER NOT NULL,
			pool_tx_id TEXT,
			owner_tx_id TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS earns (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			player TEXT NOT NULL,
			amount INTEGER NOT NULL,
			active_pool INTEGER NOT NULL,
			minute INTEGER NOT NULL,
			mints_this_minute INTEGER NOT NULL,
			tx_id TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_earns_player_seq ON earns(player, seq);`,
		`CREATE TABLE IF NOT EXISTS pauses (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			total_minted INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS players (
			player TEXT PRIMARY KEY,
			session_tokens INTEGER NOT NULL,
			total_earned INTEGER NOT NULL,
			last_minute INTEGER NOT NULL,
			mints_this_minute INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TEXT NOT NULL,
			path TEXT NOT NULL,
			total_minted INTEGER NOT NULL,
			active_pool INTEGER NOT NULL,
			players INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// RecordMint implements ledger.EventSink.
func (s *SQLiteIndex) RecordMint(ev ledger.MintEvent) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqMint, ts: now(), mint: ev}:
	default:
		s.dropMint.Add(1)
	}
}

// RecordEarn implements ledger.EventSink.
func (s *SQLiteIndex) RecordEarn(ev ledger.EarnEvent) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqEarn, ts: now(), earn: ev}:
	default:
		s.dropEarn.Add(1)
	}
}

// RecordPause implements ledger.EventSink.
func (s *SQLiteIndex) RecordPause(ev ledger.PauseEvent) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqPause, ts: now(), pause: ev}:
	default:
		s.dropPause.Add(1)
	}
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Path:        path,
		TotalMinted: snap.Authority.TotalMinted,
		ActivePool:  snap.Pools.ActivePool,
		Players:     len(snap.Players),
	}
	select {
	case s.ch <- req{kind: reqSnapshot, ts: now(), snapshot: r}:
	default:
		s.dropSnapshot.Add(1)
	}
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqMint:
			_, _ = s.db.Exec(
				`INSERT INTO mints (ts, amount, game_amount, owner_amount, total_minted, active_pool, pool_tx_id, owner_tx_id)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ts, r.mint.Amount, r.mint.GameAmount, r.mint.OwnerAmount,
				r.mint.TotalMinted, r.mint.ActivePool, r.mint.PoolTxID, r.mint.OwnerTxID,
			)
		case reqEarn:
			_, _ = s.db.Exec(
				`INSERT INTO earns (ts, player, amount, active_pool, minute, mints_this_minute, tx_id)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.ts, r.earn.Player, r.earn.Amount, r.earn.ActivePool,
				r.earn.Minute, r.earn.MintsThisMinute, r.earn.TxID,
			)
			_, _ = s.db.Exec(
				`INSERT INTO players (player, session_tokens, total_earned, last_minute, mints_this_minute, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)
				 ON CONFLICT(player) DO UPDATE SET
					session_tokens = excluded.session_tokens,
					total_earned = excluded.total_earned,
					last_minute = excluded.last_minute,
					mints_this_minute = excluded.mints_this_minute,
					updated_at = excluded.updated_at`,
				r.earn.Player, r.earn.SessionTokens, r.earn.TotalEarned,
				r.earn.Minute, r.earn.MintsThisMinute, r.ts,
			)
		case reqPause:
			_, _ = s.db.Exec(
				`INSERT INTO pauses (ts, total_minted) VALUES (?, ?)`,
				r.ts, r.pause.TotalMinted,
			)
		case reqSnapshot:
			_, _ = s.db.Exec(
				`INSERT INTO snapshots (ts, path, total_minted, active_pool, players) VALUES (?, ?, ?, ?, ?)`,
				r.ts, r.snapshot.Path, r.snapshot.TotalMinted, r.snapshot.ActivePool, r.snapshot.Players,
			)
		}
	}
}

// Flush blocks until every request queued before the call has been written.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	// The writer drains in order; a synchronous round-trip on the db after
	// the channel empties is enough for tests and shutdown.
	for len(s.ch) > 0 {
		time.Sleep(time.Millisecond)
	}
	_, _ = s.db.Exec("SELECT 1")
}

type Stats struct {
	DropMintTotal     uint64
	DropEarnTotal     uint64
	DropPauseTotal    uint64
	DropSnapshotTotal uint64
	QueueDepth        int
	QueueCapacity     int
}

func (s *SQLiteIndex) Stats() Stats {
	return Stats{
		DropMintTotal:     s.dropMint.Load(),
		DropEarnTotal:     s.dropEarn.Load(),
		DropPauseTotal:    s.dropPause.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
	}
}

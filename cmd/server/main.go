package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"flag"

	"tokenrush.gg/internal/extledger"
	"tokenrush.gg/internal/ledger"
	"tokenrush.gg/internal/persistence/indexdb"
	persistlog "tokenrush.gg/internal/persistence/log"
	"tokenrush.gg/internal/persistence/snapshot"
	"tokenrush.gg/internal/scheduler"
	"tokenrush.gg/internal/transport/httpapi"
	"tokenrush.gg/internal/transport/ws"
	"tokenrush.gg/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		owner      = flag.String("owner", "", "owner identity; when set and no snapshot exists, the ledger initializes at boot")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite event index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")

		disableMint = flag.Bool("disable_automint", false, "disable the automint scheduler")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[ledgerd] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	_ = os.MkdirAll(*dataDir, 0o755)

	mirror, err := buildMirrorRuntime(*dataDir, logger)
	if err != nil {
		logger.Fatalf("offsite mirror: %v", err)
	}
	defer mirror.Close()

	// Event sinks: JSONL logs always; sqlite index unless disabled.
	eventLog := persistlog.NewEventLogger(*dataDir)
	eventLog.SetOnRotate(mirror.Enqueue)
	defer eventLog.Close()

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
	}
	sink := newSinkFan(eventLog, idx)

	ext := extledger.NewMemory()
	engine := ledger.NewEngine(ledger.Options{
		Denom:       tune.Denom,
		PoolAccount: tune.PoolAccount,
		Clock:       ledger.WallClock{},
		External:    ext,
		Logger:      logger,
		Sink:        sink,
	})

	// Resume from snapshot, or initialize fresh when an owner is configured.
	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(*dataDir)
	}
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot %s: %v", snapshotToLoad, err)
		}
		if err := engine.RestoreSnapshot(snap); err != nil {
			logger.Fatalf("restore snapshot: %v", err)
		}
		rehydrateMemoryLedger(ext, tune, snap)
		logger.Printf("resumed from %s", snapshotToLoad)
	} else if strings.TrimSpace(*owner) != "" {
		if err := engine.Initialize(*owner, tune.RateLimits.PlayerMintsPerMinute, tune.Supply.Infinite, tune.Supply.MaxSupply); err != nil {
			logger.Fatalf("initialize: %v", err)
		}
	} else {
		logger.Printf("ledger not initialized; waiting for /v1/initialize")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// AutoMint cadence.
	if !*disableMint && engine.Initialized() {
		sched := scheduler.New(engine, engine.Owner(), tune.AutoMint.Amount,
			time.Duration(tune.AutoMint.IntervalSeconds)*time.Second, logger)
		go sched.Run(ctx)
	}

	// Snapshot cadence + snapshot on shutdown.
	if tune.SnapshotEverySeconds > 0 {
		go snapshotLoop(ctx, engine, idx, mirror, *dataDir, time.Duration(tune.SnapshotEverySeconds)*time.Second, tune.SnapshotsKeep, logger)
	}

	api := httpapi.New(engine, logger)
	wsrv := ws.NewServer(engine, logger)

	mux := http.NewServeMux()
	mux.Handle("/", api.Mux())
	mux.HandleFunc("/v1/ws", wsrv.Handler())

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Printf("shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	if engine.Initialized() {
		if path, err := writeSnapshot(engine, idx, mirror, *dataDir); err != nil {
			logger.Printf("final snapshot failed: %v", err)
		} else {
			logger.Printf("final snapshot: %s", path)
		}
	}
}

// rehydrateMemoryLedger rebuilds the in-process external ledger's balances
// from a snapshot. Conservation makes them fully derivable: the pool backing
// account holds activePool, each player holds their totalEarned, and the
// owner holds every owner share minted so far.
func rehydrateMemoryLedger(ext *extledger.Memory, tune tuning.Tuning, snap snapshot.SnapshotV1) {
	ext.Seed(tune.Denom, tune.PoolAccount, snap.Pools.ActivePool)
	var sumEarned uint64
	for _, p := range snap.Players {
		ext.Seed(tune.Denom, p.Player, p.TotalEarned)
		sumEarned += p.TotalEarned
	}
	ownerBal := snap.Authority.TotalMinted - snap.Pools.ActivePool - sumEarned
	ext.Seed(tune.Denom, snap.Authority.Owner, ownerBal)
}

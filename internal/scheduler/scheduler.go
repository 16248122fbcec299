// Package scheduler drives AutoMint on a fixed cadence. Cadence policy is
// entirely config; the engine imposes no interval of its own.
package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"tokenrush.gg/internal/ledger"
)

type AutoMinter interface {
	AutoMint(ctx context.Context, caller string, amount uint64) (ledger.MintResult, error)
}

type Scheduler struct {
	engine   AutoMinter
	owner    string
	amount   uint64
	interval time.Duration
	log      *log.Logger
}

func New(engine AutoMinter, owner string, amount uint64, interval time.Duration, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		engine:   engine,
		owner:    owner,
		amount:   amount,
		interval: interval,
		log:      logger,
	}
}

// Run mints every interval until ctx is cancelled. Errors are logged and the
// loop keeps ticking; after an emergency pause every tick fails the cap check
// and lands in the log.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 || s.amount == 0 {
		s.log.Printf("automint scheduler disabled (interval=%s amount=%d)", s.interval, s.amount)
		return
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()
	s.log.Printf("automint scheduler: every %s amount=%d", s.interval, s.amount)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			res, err := s.engine.AutoMint(ctx, s.owner, s.amount)
			if err != nil {
				if errors.Is(err, ledger.ErrSupplyLimit) {
					s.log.Printf("automint skipped: %v", err)
				} else {
					s.log.Printf("automint failed: %v", err)
				}
				continue
			}
			s.log.Printf("automint: total_minted=%d game=%d owner=%d", res.TotalMinted, res.GameAmount, res.OwnerAmount)
		}
	}
}

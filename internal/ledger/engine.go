package ledger

import (
	"context"
	"fmt"
	"log"
	"sync"

	"tokenrush.gg/internal/extledger"
)

// Engine owns the minting authority, the token pools and every player record.
// One exclusive lock serializes all mutating operations: every operation is
// pure arithmetic plus at most one external-ledger call, so holding the lock
// across the critical section keeps the read-check-write sequences of
// AutoMint, EmergencyPause and EarnFromPool from racing without finer-grained
// locking. Precondition checks happen before any mutation; local state is
// written only after the external-ledger call commits, so a failed call
// leaves the engine provably unchanged.
type Engine struct {
	mu sync.Mutex

	log   *log.Logger
	clock Clock
	ext   extledger.Ledger

	denom       string
	poolAccount string // external account backing activePool

	auth    *MintingAuthority
	pools   *GameTokenPools
	players map[string]*PlayerMintStats

	sink EventSink
}

type Options struct {
	Denom       string
	PoolAccount string
	Clock       Clock
	External    extledger.Ledger
	Logger      *log.Logger
	Sink        EventSink
}

func NewEngine(opts Options) *Engine {
	clk := opts.Clock
	if clk == nil {
		clk = WallClock{}
	}
	lg := opts.Logger
	if lg == nil {
		lg = log.Default()
	}
	return &Engine{
		log:         lg,
		clock:       clk,
		ext:         opts.External,
		denom:       opts.Denom,
		poolAccount: opts.PoolAccount,
		players:     make(map[string]*PlayerMintStats),
		sink:        opts.Sink,
	}
}

// Initialize creates the authority and pool records. It can run exactly once
// per engine; a second call fails with ErrAlreadyInitialized.
func (e *Engine) Initialize(owner string, maxMintsPerPlayerPerMinute uint32, isInfinite bool, maxSupply uint64) error {
	if owner == "" {
		return fmt.Errorf("empty owner: %w", ErrInvalidAmount)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.auth != nil {
		return ErrAlreadyInitialized
	}
	e.auth = &MintingAuthority{
		Owner:                      owner,
		TotalMinted:                0,
		IsInfinite:                 isInfinite,
		MaxSupply:                  maxSupply,
		MaxMintsPerPlayerPerMinute: maxMintsPerPlayerPerMinute,
	}
	e.pools = &GameTokenPools{
		Authority:     owner,
		GameTokenMint: e.denom,
	}
	e.log.Printf("authority initialized owner=%s rate_limit=%d/min infinite=%v max_supply=%d",
		owner, maxMintsPerPlayerPerMinute, isInfinite, maxSupply)
	return nil
}

// EmergencyPause freezes the supply at its current level: isInfinite drops to
// false and maxSupply collapses onto totalMinted, so every further AutoMint
// of a positive amount fails the cap check. Idempotent; there is no unpause.
func (e *Engine) EmergencyPause(caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.auth == nil {
		return ErrNotInitialized
	}
	if caller != e.auth.Owner {
		return ErrNotOwner
	}
	if !e.auth.IsInfinite && e.auth.MaxSupply == e.auth.TotalMinted {
		return nil // already paused
	}
	e.auth.IsInfinite = false
	e.auth.MaxSupply = e.auth.TotalMinted
	e.log.Printf("emergency pause: supply frozen at %d", e.auth.TotalMinted)
	if e.sink != nil {
		e.sink.RecordPause(PauseEvent{TotalMinted: e.auth.TotalMinted})
	}
	return nil
}

// AutoMint injects new supply: GameSharePercent of amount into the active
// pool, the remainder straight to the owner's external account. Owner revenue
// does not depend on any player activity.
func (e *Engine) AutoMint(ctx context.Context, caller string, amount uint64) (MintResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.auth == nil {
		return MintResult{}, ErrNotInitialized
	}
	if caller != e.auth.Owner {
		return MintResult{}, ErrNotOwner
	}
	if amount == 0 {
		return MintResult{}, ErrInvalidAmount
	}
	if e.auth.TotalMinted+amount < e.auth.TotalMinted {
		// uint64 wrap; no cap configuration makes this mintable.
		return MintResult{}, ErrSupplyLimit
	}
	if !e.auth.IsInfinite && e.auth.TotalMinted+amount > e.auth.MaxSupply {
		return MintResult{}, ErrSupplyLimit
	}

	gameAmount, ownerAmount := Split(amount)

	// External ledger first: a failure here aborts with no local mutation.
	// The two mints compose into one logical operation; the external ledger's
	// transaction layer owns their joint atomicity and replay protection.
	var poolTx, ownerTx extledger.TxID
	var err error
	if gameAmount > 0 {
		poolTx, err = e.ext.Mint(ctx, e.denom, e.poolAccount, gameAmount)
		if err != nil {
			return MintResult{}, fmt.Errorf("mint pool share: %w", err)
		}
	}
	if ownerAmount > 0 {
		ownerTx, err = e.ext.Mint(ctx, e.denom, e.auth.Owner, ownerAmount)
		if err != nil {
			return MintResult{}, fmt.Errorf("mint owner share: %w", err)
		}
	}

	e.auth.TotalMinted += amount
	e.pools.ActivePool += gameAmount

	res := MintResult{
		TotalMinted: amount,
		GameAmount:  gameAmount,
		OwnerAmount: ownerAmount,
		PoolTxID:    string(poolTx),
		OwnerTxID:   string(ownerTx),
	}
	e.log.Printf("automint amount=%d game=%d owner=%d total_minted=%d pool=%d",
		amount, gameAmount, ownerAmount, e.auth.TotalMinted, e.pools.ActivePool)
	if e.sink != nil {
		e.sink.RecordMint(MintEvent{
			Amount:      amount,
			GameAmount:  gameAmount,
			OwnerAmount: ownerAmount,
			TotalMinted: e.auth.TotalMinted,
			ActivePool:  e.pools.ActivePool,
			PoolTxID:    string(poolTx),
			OwnerTxID:   string(ownerTx),
		})
	}
	return res, nil
}

// EarnFromPool withdraws amount from the active pool into the player's
// external account. Checks run in order (amount, rate limit, pool balance);
// the first failure wins and leaves all state untouched. The minute bucket
// rolls over lazily here, on the first call observed in a new minute, so no
// separate timer is needed; the rolled-over counters are written back only on
// success and are re-derived from the clock on the next call otherwise.
func (e *Engine) EarnFromPool(ctx context.Context, caller, player string, amount uint64) (EarnResult, error) {
	if caller != player {
		return EarnResult{}, ErrNotPlayer
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.auth == nil {
		return EarnResult{}, ErrNotInitialized
	}
	if amount == 0 {
		return EarnResult{}, ErrInvalidAmount
	}

	// Stage the rate-limit window against the current minute. stats stays a
	// copy (zero-valued for a first-time player) until the operation commits.
	minute := e.clock.CurrentMinute()
	var stats PlayerMintStats
	if p, ok := e.players[player]; ok {
		stats = *p
	} else {
		stats = PlayerMintStats{Player: player}
	}
	if stats.LastMintMinute != minute {
		stats.LastMintMinute = minute
		stats.MintsThisMinute = 0
	}
	if stats.MintsThisMinute >= e.auth.MaxMintsPerPlayerPerMinute {
		return EarnResult{}, ErrRateLimit
	}

	if e.pools.ActivePool < amount {
		return EarnResult{}, ErrInsufficientPool
	}

	tx, err := e.ext.Transfer(ctx, e.denom, e.poolAccount, player, amount)
	if err != nil {
		return EarnResult{}, fmt.Errorf("transfer to player: %w", err)
	}

	e.pools.ActivePool -= amount
	stats.SessionTokens += amount
	stats.TotalEarned += amount
	stats.MintsThisMinute++
	committed := stats
	e.players[player] = &committed

	balance, err := e.ext.GetBalance(ctx, e.denom, player)
	if err != nil {
		// The transfer committed; balance readback is best-effort.
		balance = 0
	}

	res := EarnResult{
		PoolBalance:   e.pools.ActivePool,
		PlayerBalance: balance,
		SessionTokens: committed.SessionTokens,
		TotalEarned:   committed.TotalEarned,
		TxID:          string(tx),
	}
	if e.sink != nil {
		e.sink.RecordEarn(EarnEvent{
			Player:          player,
			Amount:          amount,
			ActivePool:      e.pools.ActivePool,
			SessionTokens:   committed.SessionTokens,
			TotalEarned:     committed.TotalEarned,
			Minute:          minute,
			MintsThisMinute: committed.MintsThisMinute,
			TxID:            string(tx),
		})
	}
	return res, nil
}

// Initialized reports whether Initialize has run.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.auth != nil
}

// Owner returns the configured owner identity ("" before Initialize).
func (e *Engine) Owner() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.auth == nil {
		return ""
	}
	return e.auth.Owner
}

// Denom returns the external denomination this engine tracks.
func (e *Engine) Denom() string { return e.denom }

// PoolAccount returns the external account backing the active pool.
func (e *Engine) PoolAccount() string { return e.poolAccount }

// Status is a consistent read of the global counters.
type Status struct {
	Owner                      string
	TotalMinted                uint64
	IsInfinite                 bool
	MaxSupply                  uint64
	MaxMintsPerPlayerPerMinute uint32

	ActivePool  uint64
	RewardPool  uint64
	ReservePool uint64
	BurnPool    uint64

	Players int
}

func (e *Engine) Status() (Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.auth == nil {
		return Status{}, ErrNotInitialized
	}
	return Status{
		Owner:                      e.auth.Owner,
		TotalMinted:                e.auth.TotalMinted,
		IsInfinite:                 e.auth.IsInfinite,
		MaxSupply:                  e.auth.MaxSupply,
		MaxMintsPerPlayerPerMinute: e.auth.MaxMintsPerPlayerPerMinute,
		ActivePool:                 e.pools.ActivePool,
		RewardPool:                 e.pools.RewardPool,
		ReservePool:                e.pools.ReservePool,
		BurnPool:                   e.pools.BurnPool,
		Players:                    len(e.players),
	}, nil
}

// PlayerStats returns a copy of one player's record.
func (e *Engine) PlayerStats(player string) (PlayerMintStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.players[player]
	if !ok {
		return PlayerMintStats{}, false
	}
	return *p, true
}

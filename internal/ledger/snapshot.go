package ledger

import (
	"sort"
	"time"

	"tokenrush.gg/internal/persistence/snapshot"
)

const snapshotVersion = 1

// ExportSnapshot copies the full ledger state into a snapshot. Fails with
// ErrNotInitialized before Initialize has run.
func (e *Engine) ExportSnapshot() (snapshot.SnapshotV1, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.auth == nil {
		return snapshot.SnapshotV1{}, ErrNotInitialized
	}

	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version:     snapshotVersion,
			Denom:       e.denom,
			CreatedUnix: time.Now().Unix(),
		},
		Authority: snapshot.AuthorityV1{
			Owner:                      e.auth.Owner,
			TotalMinted:                e.auth.TotalMinted,
			IsInfinite:                 e.auth.IsInfinite,
			MaxSupply:                  e.auth.MaxSupply,
			MaxMintsPerPlayerPerMinute: e.auth.MaxMintsPerPlayerPerMinute,
		},
		Pools: snapshot.PoolsV1{
			Authority:   e.pools.Authority,
			ActivePool:  e.pools.ActivePool,
			RewardPool:  e.pools.RewardPool,
			ReservePool: e.pools.ReservePool,
			BurnPool:    e.pools.BurnPool,
		},
	}
	for _, p := range e.players {
		snap.Players = append(snap.Players, snapshot.PlayerV1{
			Player:          p.Player,
			SessionTokens:   p.SessionTokens,
			TotalEarned:     p.TotalEarned,
			LastMintMinute:  p.LastMintMinute,
			MintsThisMinute: p.MintsThisMinute,
		})
	}
	sort.Slice(snap.Players, func(i, j int) bool { return snap.Players[i].Player < snap.Players[j].Player })
	return snap, nil
}

// RestoreSnapshot loads state into a fresh engine. Refuses to overwrite an
// initialized engine (same guarantee as Initialize).
func (e *Engine) RestoreSnapshot(snap snapshot.SnapshotV1) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.auth != nil {
		return ErrAlreadyInitialized
	}
	e.auth = &MintingAuthority{
		Owner:                      snap.Authority.Owner,
		TotalMinted:                snap.Authority.TotalMinted,
		IsInfinite:                 snap.Authority.IsInfinite,
		MaxSupply:                  snap.Authority.MaxSupply,
		MaxMintsPerPlayerPerMinute: snap.Authority.MaxMintsPerPlayerPerMinute,
	}
	e.pools = &GameTokenPools{
		Authority:     snap.Pools.Authority,
		ActivePool:    snap.Pools.ActivePool,
		RewardPool:    snap.Pools.RewardPool,
		ReservePool:   snap.Pools.ReservePool,
		BurnPool:      snap.Pools.BurnPool,
		GameTokenMint: e.denom,
	}
	e.players = make(map[string]*PlayerMintStats, len(snap.Players))
	for _, p := range snap.Players {
		e.players[p.Player] = &PlayerMintStats{
			Player:          p.Player,
			SessionTokens:   p.SessionTokens,
			TotalEarned:     p.TotalEarned,
			LastMintMinute:  p.LastMintMinute,
			MintsThisMinute: p.MintsThisMinute,
		}
	}
	e.log.Printf("restored snapshot: total_minted=%d pool=%d players=%d",
		e.auth.TotalMinted, e.pools.ActivePool, len(e.players))
	return nil
}

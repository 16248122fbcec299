package ledger

// MintingAuthority is the single record controlling total issuance.
// totalMinted only ever grows; once isInfinite is false, totalMinted <= maxSupply holds.
type MintingAuthority struct {
	Owner                      string
	TotalMinted                uint64
	IsInfinite                 bool
	MaxSupply                  uint64
	MaxMintsPerPlayerPerMinute uint32
}

// GameTokenPools holds the pooled balances mints land in. Only ActivePool is
// touched by AutoMint/EarnFromPool; the other pools are reserved for policy
// extensions and stay at their seeded value.
type GameTokenPools struct {
	Authority   string
	ActivePool  uint64
	RewardPool  uint64
	ReservePool uint64
	BurnPool    uint64

	// GameTokenMint names the external denomination this ledger tracks.
	GameTokenMint string
}

// PlayerMintStats is one per-player earning record, created lazily on the
// player's first successful withdrawal.
type PlayerMintStats struct {
	Player          string
	SessionTokens   uint64
	TotalEarned     uint64
	LastMintMinute  int64
	MintsThisMinute uint32
}

// MintResult reports one AutoMint's effect.
type MintResult struct {
	TotalMinted uint64 // amount minted by this call
	GameAmount  uint64
	OwnerAmount uint64

	PoolTxID  string
	OwnerTxID string
}

// EarnResult reports one EarnFromPool's effect.
type EarnResult struct {
	PoolBalance   uint64 // activePool after the withdrawal
	PlayerBalance uint64 // player's external balance after the transfer
	SessionTokens uint64
	TotalEarned   uint64
	TxID          string
}

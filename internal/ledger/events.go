package ledger

// Events describe committed state transitions; the engine hands them to an
// optional sink (JSONL log, sqlite index) after the transition applies. Sinks
// must not block: the engine lock is held while they run.

type MintEvent struct {
	Amount      uint64 `json:"amount"`
	GameAmount  uint64 `json:"game_amount"`
	OwnerAmount uint64 `json:"owner_amount"`
	TotalMinted uint64 `json:"total_minted"`
	ActivePool  uint64 `json:"active_pool"`
	PoolTxID    string `json:"pool_tx_id,omitempty"`
	OwnerTxID   string `json:"owner_tx_id,omitempty"`
}

type EarnEvent struct {
	Player          string `json:"player"`
	Amount          uint64 `json:"amount"`
	ActivePool      uint64 `json:"active_pool"`
	SessionTokens   uint64 `json:"session_tokens"`
	TotalEarned     uint64 `json:"total_earned"`
	Minute          int64  `json:"minute"`
	MintsThisMinute uint32 `json:"mints_this_minute"`
	TxID            string `json:"tx_id,omitempty"`
}

type PauseEvent struct {
	TotalMinted uint64 `json:"total_minted"`
}

type EventSink interface {
	RecordMint(MintEvent)
	RecordEarn(EarnEvent)
	RecordPause(PauseEvent)
}

package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PlayerID        string     `json:"player_id"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        string `json:"player_id"`
	Denom           string `json:"denom"`
	MintsPerMinute  uint32 `json:"mints_per_minute"`
	ActivePool      uint64 `json:"active_pool"`
	SessionTokens   uint64 `json:"session_tokens"`
	TotalEarned     uint64 `json:"total_earned"`
}

// EARN (client -> server): withdraw tokens the game has credited to the player.
type EarnMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq"`
	Amount          uint64 `json:"amount"`
}

// STATS (client -> server): read back the player's counters.
type StatsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq"`
}

// RESULT (server -> client)
type ResultMsg struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	Op   string `json:"op"`

	PoolBalance   uint64 `json:"pool_balance"`
	PlayerBalance uint64 `json:"player_balance"`
	SessionTokens uint64 `json:"session_tokens"`
	TotalEarned   uint64 `json:"total_earned"`
	TxID          string `json:"tx_id,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type    string `json:"type"`
	Seq     uint64 `json:"seq"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Configuration.
	ErrAlreadyInitialized = "E_ALREADY_INITIALIZED"
	ErrNotInitialized     = "E_NOT_INITIALIZED"

	// Authorization.
	ErrNotOwner  = "E_NOT_OWNER"
	ErrNotPlayer = "E_NOT_PLAYER"

	// Validation.
	ErrInvalidAmount = "E_INVALID_AMOUNT"

	// Capacity.
	ErrSupplyLimit      = "E_SUPPLY_LIMIT"
	ErrInsufficientPool = "E_INSUFFICIENT_POOL"

	// Rate limiting.
	ErrRateLimit = "E_RATE_LIMIT"

	// External ledger / fallback.
	ErrLedger   = "E_LEDGER"
	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:    {},
	ErrAlreadyInitialized: {},
	ErrNotInitialized:     {},
	ErrNotOwner:           {},
	ErrNotPlayer:          {},
	ErrInvalidAmount:      {},
	ErrSupplyLimit:        {},
	ErrInsufficientPool:   {},
	ErrRateLimit:          {},
	ErrLedger:             {},
	ErrInternal:           {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

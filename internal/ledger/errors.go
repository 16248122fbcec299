package ledger

import (
	"errors"

	"tokenrush.gg/internal/protocol"
)

var (
	ErrAlreadyInitialized = errors.New("authority already initialized")
	ErrNotInitialized     = errors.New("authority not initialized")
	ErrNotOwner           = errors.New("caller is not the owner")
	ErrNotPlayer          = errors.New("caller is not the player")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrSupplyLimit        = errors.New("supply limit exceeded")
	ErrInsufficientPool   = errors.New("insufficient active pool")
	ErrRateLimit          = errors.New("player mint rate limit exceeded")
)

// Code maps an engine error onto its stable protocol error code. External
// ledger failures (anything unrecognized) surface as E_LEDGER so callers can
// tell "retry later" apart from caller errors.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyInitialized):
		return protocol.ErrAlreadyInitialized
	case errors.Is(err, ErrNotInitialized):
		return protocol.ErrNotInitialized
	case errors.Is(err, ErrNotOwner):
		return protocol.ErrNotOwner
	case errors.Is(err, ErrNotPlayer):
		return protocol.ErrNotPlayer
	case errors.Is(err, ErrInvalidAmount):
		return protocol.ErrInvalidAmount
	case errors.Is(err, ErrSupplyLimit):
		return protocol.ErrSupplyLimit
	case errors.Is(err, ErrInsufficientPool):
		return protocol.ErrInsufficientPool
	case errors.Is(err, ErrRateLimit):
		return protocol.ErrRateLimit
	default:
		return protocol.ErrLedger
	}
}

// Package extledger abstracts the external ledger (the chain, in production)
// that durably holds account balances. The engine only ever asks it to mint,
// move, or read balances; key management, signing and replay protection live
// behind this interface.
package extledger

import "context"

// TxID identifies a committed external-ledger transaction.
type TxID string

type Ledger interface {
	// Mint atomically increases dest's balance of denom.
	Mint(ctx context.Context, denom, dest string, amount uint64) (TxID, error)

	// Transfer atomically moves amount of denom from src to dest.
	// Fails without effect if src's balance is short.
	Transfer(ctx context.Context, denom, src, dest string, amount uint64) (TxID, error)

	// GetBalance reads an account's current balance of denom.
	GetBalance(ctx context.Context, denom, account string) (uint64, error)
}

package extledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var ErrInsufficientBalance = errors.New("extledger: insufficient balance")

// Memory is an in-process Ledger: a plain account->balance map per denom.
// It backs local runs and the test suite; the production build swaps in a
// chain-backed implementation behind the same interface.
type Memory struct {
	mu       sync.Mutex
	balances map[string]uint64 // key: denom + "/" + account
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[string]uint64)}
}

func key(denom, account string) string { return denom + "/" + account }

func (m *Memory) Mint(ctx context.Context, denom, dest string, amount uint64) (TxID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if dest == "" {
		return "", fmt.Errorf("extledger: empty destination account")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[key(denom, dest)] += amount
	return TxID(uuid.NewString()), nil
}

func (m *Memory) Transfer(ctx context.Context, denom, src, dest string, amount uint64) (TxID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if src == "" || dest == "" {
		return "", fmt.Errorf("extledger: empty account")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sk := key(denom, src)
	if m.balances[sk] < amount {
		return "", ErrInsufficientBalance
	}
	m.balances[sk] -= amount
	m.balances[key(denom, dest)] += amount
	return TxID(uuid.NewString()), nil
}

// Seed sets an account balance directly. Only for rehydrating an in-process
// ledger from a snapshot and for tests; not part of the Ledger interface.
func (m *Memory) Seed(denom, account string, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[key(denom, account)] = amount
}

func (m *Memory) GetBalance(ctx context.Context, denom, account string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[key(denom, account)], nil
}

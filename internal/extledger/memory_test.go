package extledger

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryMintAndTransfer(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	tx, err := m.Mint(ctx, "urush", "pool", 100)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if tx == "" {
		t.Fatalf("expected tx id")
	}

	if _, err := m.Transfer(ctx, "urush", "pool", "p1", 40); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	poolBal, _ := m.GetBalance(ctx, "urush", "pool")
	p1Bal, _ := m.GetBalance(ctx, "urush", "p1")
	if poolBal != 60 || p1Bal != 40 {
		t.Fatalf("balances pool=%d p1=%d, want 60/40", poolBal, p1Bal)
	}
}

func TestMemoryTransferInsufficient(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if _, err := m.Mint(ctx, "urush", "pool", 10); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := m.Transfer(ctx, "urush", "pool", "p1", 11); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	poolBal, _ := m.GetBalance(ctx, "urush", "pool")
	if poolBal != 10 {
		t.Fatalf("failed transfer mutated balance: %d", poolBal)
	}
}

func TestMemoryDenomsAreIsolated(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if _, err := m.Mint(ctx, "urush", "a", 5); err != nil {
		t.Fatalf("mint: %v", err)
	}
	other, _ := m.GetBalance(ctx, "uother", "a")
	if other != 0 {
		t.Fatalf("denom bleed: %d", other)
	}
}

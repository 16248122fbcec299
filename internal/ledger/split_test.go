package ledger

import (
	"math"
	"testing"
)

func TestSplitConservesEveryAmount(t *testing.T) {
	for amount := uint64(0); amount <= 10_000; amount++ {
		game, owner := Split(amount)
		if game+owner != amount {
			t.Fatalf("Split(%d) = %d+%d, loses tokens", amount, game, owner)
		}
		if game != amount*GameSharePercent/100 {
			t.Fatalf("Split(%d) game=%d, want floor(%d*80/100)", amount, game, amount)
		}
	}
}

func TestSplitKnownValues(t *testing.T) {
	cases := []struct {
		amount, game, owner uint64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{4, 3, 1},
		{5, 4, 1},
		{100, 80, 20},
		{101, 80, 21},
		{999, 799, 200},
	}
	for _, c := range cases {
		game, owner := Split(c.amount)
		if game != c.game || owner != c.owner {
			t.Fatalf("Split(%d) = %d/%d, want %d/%d", c.amount, game, owner, c.game, c.owner)
		}
	}
}

func TestSplitNoOverflowNearMax(t *testing.T) {
	for _, amount := range []uint64{math.MaxUint64, math.MaxUint64 - 1, math.MaxUint64 / 2} {
		game, owner := Split(amount)
		if game+owner != amount {
			t.Fatalf("Split(%d) = %d+%d, loses tokens near MaxUint64", amount, game, owner)
		}
		if game > amount {
			t.Fatalf("Split(%d) game=%d exceeds amount", amount, game)
		}
	}
}

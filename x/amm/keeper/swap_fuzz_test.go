package keeper

import (
	"errors"
	"testing"

	"cosmossdk.io/math"

	"github.com/paw-chain/ammcore/x/amm/types"
)

// FuzzComputeSwapConstantProduct checks the pricing routine with extreme
// values: it must never panic, and every successful result must leave the
// output reserve strictly positive.
func FuzzComputeSwapConstantProduct(f *testing.F) {
	f.Add(int64(1000), int64(1_000_000_000), int64(1_000_000_000), uint64(30))
	f.Add(int64(1), int64(1), int64(1), uint64(0))
	f.Add(int64(1<<62), int64(1<<62), int64(1), uint64(10_000))

	f.Fuzz(func(t *testing.T, amountIn, reserveA, reserveB int64, feeBps uint64) {
		if amountIn <= 0 || reserveA <= 0 || reserveB <= 0 || feeBps > 10_000 {
			return
		}

		pool := types.NewPool(1, types.PoolKindConstantProduct, "uatom", "upaw", "creator", feeBps, 0, 0, 0)
		pool.ReserveA = math.NewInt(reserveA)
		pool.ReserveB = math.NewInt(reserveB)
		pool.TotalShares = math.NewInt(1)

		res, err := computeSwap(pool, math.NewInt(amountIn), true)
		if err != nil {
			if !errors.Is(err, types.ErrInvalidInput) &&
				!errors.Is(err, types.ErrInsufficientLiquidity) &&
				!errors.Is(err, types.ErrOverflow) {
				t.Fatalf("unexpected error type: %v", err)
			}
			return
		}

		if !res.amountOut.IsPositive() {
			t.Fatalf("amountOut = %s, must be positive", res.amountOut)
		}
		if res.amountOut.GTE(pool.ReserveB) {
			t.Fatalf("amountOut %s would drain reserve %s", res.amountOut, pool.ReserveB)
		}
		split := res.protocolFee.Add(res.creatorFee).Add(res.lpFee)
		if !split.Equal(res.fee) {
			t.Fatalf("fee split %s != fee %s", split, res.fee)
		}
	})
}

// FuzzComputeSwapStable does the same for the stable curve, which relies on
// iterative solvers rather than a closed form.
func FuzzComputeSwapStable(f *testing.F) {
	f.Add(int64(1000), int64(1_000_000_000), int64(1_000_000_000), uint64(100))
	f.Add(int64(500), int64(1_000_000), int64(900_000), uint64(1))
	f.Add(int64(1<<40), int64(1<<45), int64(1<<45), uint64(1_000_000))

	f.Fuzz(func(t *testing.T, amountIn, reserveA, reserveB int64, amp uint64) {
		if amountIn <= 0 || reserveA <= 0 || reserveB <= 0 {
			return
		}
		if amp < types.MinAmplification || amp > types.MaxAmplification {
			return
		}

		pool := types.NewPool(1, types.PoolKindStable, "uusdc", "uusdt", "creator", 30, 0, 0, amp)
		pool.ReserveA = math.NewInt(reserveA)
		pool.ReserveB = math.NewInt(reserveB)
		pool.TotalShares = math.NewInt(1)

		res, err := computeSwap(pool, math.NewInt(amountIn), true)
		if err != nil {
			return
		}
		if !res.amountOut.IsPositive() || res.amountOut.GTE(pool.ReserveB) {
			t.Fatalf("stable output %s out of range for reserve %s", res.amountOut, pool.ReserveB)
		}
	})
}

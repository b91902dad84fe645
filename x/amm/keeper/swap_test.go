package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/ammcore/x/amm/types"
)

func TestSwapConstantProductExactOutput(t *testing.T) {
	k, _ := newTestKeeper(t)
	pool, _ := newSeededPool(t, k, 30, 0, 0, 1_000_000_000, 1_000_000_000)

	// fee = 3, afterFee = 997, out = 997 * 1e9 / (1e9 + 997) = 996
	out, err := k.SwapAToB(pool.Id, "trader", math.NewInt(1000), math.OneInt(), nil, farDeadline)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(996), out)

	after, err := k.GetPool(pool.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_000_001_000), after.ReserveA, "full input enters the reserve")
	require.Equal(t, math.NewInt(999_999_004), after.ReserveB)
}

func TestQuoteExecutionEquivalence(t *testing.T) {
	k, _ := newTestKeeper(t)
	pool, _ := newSeededPool(t, k, 30, 20, 10, 1_000_000_000, 2_000_000_000)

	for _, amountIn := range []int64{37, 1000, 123_456, 50_000_000} {
		quoted, err := k.GetQuoteAToB(pool.Id, math.NewInt(amountIn))
		require.NoError(t, err)

		executed, err := k.SwapAToB(pool.Id, "trader", math.NewInt(amountIn), math.OneInt(), nil, farDeadline)
		require.NoError(t, err)
		require.Equal(t, quoted, executed, "quote must match execution for amountIn=%d", amountIn)
	}

	quoted, err := k.GetQuoteBToA(pool.Id, math.NewInt(5000))
	require.NoError(t, err)
	executed, err := k.SwapBToA(pool.Id, "trader", math.NewInt(5000), math.OneInt(), nil, farDeadline)
	require.NoError(t, err)
	require.Equal(t, quoted, executed)
}

func TestSwapKNeverDecreases(t *testing.T) {
	k, _ := newTestKeeper(t)
	pool, _ := newSeededPool(t, k, 30, 0, 0, 1_000_000_000, 3_000_000_000)

	state, err := k.GetPool(pool.Id)
	require.NoError(t, err)
	kBefore := state.ReserveA.Mul(state.ReserveB)

	amounts := []int64{1000, 999_999, 250_000_000, 13, 77_777_777}
	for i, amountIn := range amounts {
		if i%2 == 0 {
			_, err = k.SwapAToB(pool.Id, "trader", math.NewInt(amountIn), math.OneInt(), nil, farDeadline)
		} else {
			_, err = k.SwapBToA(pool.Id, "trader", math.NewInt(amountIn), math.OneInt(), nil, farDeadline)
		}
		require.NoError(t, err)

		state, err = k.GetPool(pool.Id)
		require.NoError(t, err)
		kAfter := state.ReserveA.Mul(state.ReserveB)
		require.True(t, kAfter.GTE(kBefore), "k decreased on swap %d: %s -> %s", i, kBefore, kAfter)
		kBefore = kAfter
	}
}

func TestSwapSlippageProtection(t *testing.T) {
	k, _ := newTestKeeper(t)
	pool, _ := newSeededPool(t, k, 30, 0, 0, 1_000_000_000, 1_000_000_000)

	_, err := k.SwapAToB(pool.Id, "trader", math.NewInt(1000), math.NewInt(997), nil, farDeadline)
	require.ErrorIs(t, err, types.ErrSlippageExceeded)

	// Nothing was committed by the failed swap
	state, err := k.GetPool(pool.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_000_000_000), state.ReserveA)

	out, err := k.SwapAToB(pool.Id, "trader", math.NewInt(1000), math.NewInt(996), nil, farDeadline)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(996), out)
}

// Realized price for a 1000-unit input against 1:1 reserves at 30 bps is
// 1000 * 1e9 / 996 = 1_004_016_064 (scaled). A limit at or above that
// passes; anything below fails.
func TestSwapPriceLimitBoundary(t *testing.T) {
	const realized = int64(1_004_016_064)

	run := func(t *testing.T, maxPrice int64) error {
		k, _ := newTestKeeper(t)
		pool, _ := newSeededPool(t, k, 30, 0, 0, 1_000_000_000, 1_000_000_000)
		limit := math.NewInt(maxPrice)
		_, err := k.SwapAToB(pool.Id, "trader", math.NewInt(1000), math.OneInt(), &limit, farDeadline)
		return err
	}

	require.NoError(t, run(t, 1_005_000_000), "limit above realized price")
	require.NoError(t, run(t, realized), "exact boundary equality must pass")
	require.ErrorIs(t, run(t, realized-1), types.ErrPriceLimitExceeded)
	require.ErrorIs(t, run(t, 1_000_000_000), types.ErrPriceLimitExceeded)
}

func TestSwapFeeSplit(t *testing.T) {
	k, _ := newTestKeeper(t)
	pool, _ := newSeededPool(t, k, 30, 20, 10, 1_000_000_000, 1_000_000_000)

	// fee = 1e6 * 30 / 10000 = 3000; protocol = 3000*20/10000 = 6,
	// creator = 3000*10/10000 = 3, lp = 2991
	_, err := k.SwapAToB(pool.Id, "trader", math.NewInt(1_000_000), math.OneInt(), nil, farDeadline)
	require.NoError(t, err)

	state, err := k.GetPool(pool.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(6), state.ProtocolFeesA)
	require.Equal(t, math.NewInt(3), state.CreatorFeesA)
	require.True(t, state.ProtocolFeesB.IsZero(), "fees accrue on the input side only")
	require.True(t, state.AccFeePerShareB.IsZero())
	require.True(t, state.AccFeePerShareA.IsPositive())

	// lp share via the accumulator: acc * totalShares / precision
	lpDistributed := state.AccFeePerShareA.Mul(state.TotalShares).Quo(types.FeePrecision)
	require.True(t, lpDistributed.LTE(math.NewInt(2991)))
	require.True(t, lpDistributed.GTE(math.NewInt(2989)), "accumulator rounding loses at most a couple units")
}

func TestSwapInputValidation(t *testing.T) {
	k, _ := newTestKeeper(t)
	pool, _ := newSeededPool(t, k, 30, 0, 0, 1_000_000_000, 1_000_000_000)

	_, err := k.SwapAToB(pool.Id, "trader", math.ZeroInt(), math.OneInt(), nil, farDeadline)
	require.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = k.SwapAToB(pool.Id, "trader", math.NewInt(-5), math.OneInt(), nil, farDeadline)
	require.ErrorIs(t, err, types.ErrInvalidInput)

	// Input so small the output truncates to zero
	_, err = k.SwapAToB(pool.Id, "trader", math.NewInt(1), math.ZeroInt(), nil, farDeadline)
	require.ErrorIs(t, err, types.ErrInsufficientLiquidity)

	_, err = k.SwapAToB(999, "trader", math.NewInt(1000), math.OneInt(), nil, farDeadline)
	require.ErrorIs(t, err, types.ErrPoolNotFound)
}

func TestGetPriceImpact(t *testing.T) {
	k, _ := newTestKeeper(t)
	pool, _ := newSeededPool(t, k, 0, 0, 0, 1_000_000_000, 1_000_000_000)

	// Fee-free: out = 1e8 * 1e9 / 1.1e9, realized rate 0.9090..., spot 1
	impact, err := k.GetPriceImpact(pool.Id, math.NewInt(100_000_000), true)
	require.NoError(t, err)
	require.Equal(t, uint64(909), impact)

	// Impact grows with trade size
	small, err := k.GetPriceImpact(pool.Id, math.NewInt(1_000_000), true)
	require.NoError(t, err)
	require.Less(t, small, impact)

	// A fee makes the same trade strictly worse
	feePool, _ := newSeededPool(t, k, 30, 0, 0, 1_000_000_000, 1_000_000_000)
	withFee, err := k.GetPriceImpact(feePool.Id, math.NewInt(100_000_000), true)
	require.NoError(t, err)
	require.Greater(t, withFee, impact)
}

func TestSwapOnUnseededPool(t *testing.T) {
	k, _ := newTestKeeper(t)
	pool, err := k.CreatePool("c", types.PoolKindConstantProduct, "uatom", "upaw", 30, 0, 0, 0)
	require.NoError(t, err)

	_, err = k.SwapAToB(pool.Id, "trader", math.NewInt(1000), math.OneInt(), nil, farDeadline)
	require.ErrorIs(t, err, types.ErrInsufficientLiquidity)
}

func TestStableSwapDPreserved(t *testing.T) {
	k, _ := newTestKeeper(t)
	pool, err := k.CreatePool("c", types.PoolKindStable, "uusdc", "uusdt", 5, 0, 0, 200)
	require.NoError(t, err)

	_, _, _, err = k.AddLiquidity(pool.Id, "lp", math.NewInt(1_000_000_000), math.NewInt(1_000_000_000), math.ZeroInt(), farDeadline)
	require.NoError(t, err)

	// Near balance a stable pool quotes much tighter than constant-product
	out, err := k.SwapAToB(pool.Id, "trader", math.NewInt(100_000_000), math.OneInt(), nil, farDeadline)
	require.NoError(t, err)

	cpEquivalent := math.NewInt(99_950_000).Mul(math.NewInt(1_000_000_000)).
		Quo(math.NewInt(1_099_950_000))
	require.True(t, out.GT(cpEquivalent), "stable output %s should beat constant-product %s", out, cpEquivalent)
	require.True(t, out.LT(math.NewInt(100_000_000)), "output cannot exceed input near balance")
}

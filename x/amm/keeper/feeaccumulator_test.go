package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestRecordFee(t *testing.T) {
	acc := math.ZeroInt()

	// fee 3000 over 2e9 liquidity -> 1500 per unit at 1e12 precision
	acc = RecordFee(acc, math.NewInt(3000), math.NewInt(2_000_000_000))
	require.Equal(t, math.NewInt(1_500_000), acc)

	// Accumulator only ever grows
	acc2 := RecordFee(acc, math.NewInt(1), math.NewInt(2_000_000_000))
	require.True(t, acc2.GTE(acc))
}

func TestRecordFeeZeroLiquidityIsNoOp(t *testing.T) {
	acc := math.NewInt(42)
	require.Equal(t, acc, RecordFee(acc, math.NewInt(1000), math.ZeroInt()))
	require.Equal(t, acc, RecordFee(acc, math.ZeroInt(), math.NewInt(1000)))
}

func TestPendingFeeLifecycle(t *testing.T) {
	liquidity := math.NewInt(1_000_000)
	acc := math.ZeroInt()
	debt := SettleFeeDebt(liquidity, acc)
	require.True(t, debt.IsZero())

	acc = RecordFee(acc, math.NewInt(500), math.NewInt(2_000_000))
	pending := PendingFee(liquidity, acc, debt)
	require.Equal(t, math.NewInt(250), pending, "half the liquidity earns half the fee")

	// Settling advances the debt; nothing further is pending
	debt = SettleFeeDebt(liquidity, acc)
	require.True(t, PendingFee(liquidity, acc, debt).IsZero())

	// New fees accrue on top of the settled debt
	acc = RecordFee(acc, math.NewInt(500), math.NewInt(2_000_000))
	require.Equal(t, math.NewInt(250), PendingFee(liquidity, acc, debt))
}

func TestPendingFeeClampsAtZero(t *testing.T) {
	// A debt above earned-to-date can only come from truncation; clamp, not error
	pending := PendingFee(math.NewInt(100), math.NewInt(1), math.NewInt(10))
	require.True(t, pending.IsZero())
	require.True(t, PendingFee(math.ZeroInt(), math.NewInt(1000), math.ZeroInt()).IsZero())
}

package keeper

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/ammcore/x/amm/types"
)

// Scalable reward-debt fee bookkeeping. Two monotonic per-pool accumulators
// plus one debt snapshot pair per position give O(1) fee distribution for an
// unbounded LP set; no collection of "all LPs" is ever materialized or
// iterated.

// RecordFee folds a collected LP fee into a per-share accumulator:
// acc += fee * FeePrecision / totalLiquidity. With zero total liquidity the
// fee is NOT accumulated: it would be unclaimable.
func RecordFee(accPerShare, feeAmount, totalLiquidity math.Int) math.Int {
	if totalLiquidity.IsZero() || feeAmount.IsZero() {
		return accPerShare
	}
	delta := feeAmount.Mul(types.FeePrecision).Quo(totalLiquidity)
	return accPerShare.Add(delta)
}

// PendingFee computes the unclaimed fee for a position:
// liquidity * accPerShare / FeePrecision - feeDebt, clamped at zero. A
// negative intermediate can only arise from truncation rounding, never from
// a correct debt update, so it is clamped rather than treated as an error.
func PendingFee(liquidity, accPerShare, feeDebt math.Int) math.Int {
	if liquidity.IsZero() {
		return math.ZeroInt()
	}
	earned := liquidity.Mul(accPerShare).Quo(types.FeePrecision)
	if earned.LT(feeDebt) {
		return math.ZeroInt()
	}
	return earned.Sub(feeDebt)
}

// SettleFeeDebt returns the fresh debt snapshot to store after a claim or
// any liquidity mutation: liquidity * accPerShare / FeePrecision.
func SettleFeeDebt(liquidity, accPerShare math.Int) math.Int {
	if liquidity.IsZero() {
		return math.ZeroInt()
	}
	return liquidity.Mul(accPerShare).Quo(types.FeePrecision)
}

package keeper

import (
	"fmt"
	"time"

	"cosmossdk.io/math"

	"github.com/paw-chain/ammcore/x/amm/types"
)

// swapBreakdown is the full pricing result for one swap. Quotes and
// executed swaps share this single computation so a quote is byte-identical
// to the execution against the same pool state.
type swapBreakdown struct {
	fee              math.Int
	protocolFee      math.Int
	creatorFee       math.Int
	lpFee            math.Int
	amountInAfterFee math.Int
	amountOut        math.Int
	// dBefore carries the pre-swap invariant for stable pools so the
	// post-swap check does not re-run the solver on stale inputs
	dBefore math.Int
}

// computeSwap prices a swap against the pool's current reserves without
// mutating anything.
//
// Steps: fee is taken from the input (fee = amountIn * feeBps / 10000),
// then the curve prices the after-fee input. The fee splits exactly into
// protocol, creator and LP portions: protocol = fee * protocolFeeBps /
// 10000, creator = fee * creatorFeeBps / 10000, LP = remainder.
func computeSwap(pool *types.Pool, amountIn math.Int, aToB bool) (swapBreakdown, error) {
	var out swapBreakdown

	if amountIn.IsNil() || !amountIn.IsPositive() {
		return out, types.ErrInvalidInput.Wrap("swap amount must be positive")
	}
	if pool.ReserveA.IsZero() || pool.ReserveB.IsZero() {
		return out, types.ErrInsufficientLiquidity.Wrap("pool reserves must be positive")
	}

	reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
	if !aToB {
		reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
	}

	out.fee = BpsOf(amountIn, pool.FeeBps)
	afterFee, err := CheckedSub(amountIn, out.fee)
	if err != nil {
		return out, err
	}
	if !afterFee.IsPositive() {
		return out, types.ErrInvalidInput.Wrap("swap amount too small after fees")
	}
	out.amountInAfterFee = afterFee

	switch pool.Kind {
	case types.PoolKindConstantProduct:
		// amountOut = afterFee * reserveOut / (reserveIn + afterFee).
		// The denominator always exceeds the numerator's reserve term, so
		// amountOut < reserveOut holds algebraically.
		out.amountOut, err = SafeMulDiv(afterFee, reserveOut, reserveIn.Add(afterFee))
		if err != nil {
			return out, err
		}
	case types.PoolKindStable:
		out.dBefore = GetD(reserveIn, reserveOut, pool.Amplification)
		newOutReserve, err := GetY(reserveIn.Add(afterFee), out.dBefore, pool.Amplification)
		if err != nil {
			return out, err
		}
		if newOutReserve.GTE(reserveOut) {
			return out, types.ErrInsufficientLiquidity.Wrap("output amount too small")
		}
		out.amountOut = reserveOut.Sub(newOutReserve)
	default:
		return out, types.ErrInvalidPoolState.Wrapf("unknown pool kind %d", pool.Kind)
	}

	if out.amountOut.IsZero() {
		return out, types.ErrInsufficientLiquidity.Wrap("output amount too small")
	}
	if out.amountOut.GTE(reserveOut) {
		return out, types.ErrInsufficientLiquidity.Wrapf("output %s >= reserve %s", out.amountOut, reserveOut)
	}

	out.protocolFee = BpsOf(out.fee, pool.ProtocolFeeBps)
	out.creatorFee = BpsOf(out.fee, pool.CreatorFeeBps)
	out.lpFee = out.fee.Sub(out.protocolFee).Sub(out.creatorFee)

	return out, nil
}

// SwapAToB swaps token A into the pool for token B.
func (k *Keeper) SwapAToB(poolID uint64, trader string, amountIn, minAmountOut math.Int, maxPrice *math.Int, deadlineMs uint64) (math.Int, error) {
	return k.executeSwap(poolID, trader, true, amountIn, minAmountOut, maxPrice, deadlineMs)
}

// SwapBToA swaps token B into the pool for token A.
func (k *Keeper) SwapBToA(poolID uint64, trader string, amountIn, minAmountOut math.Int, maxPrice *math.Int, deadlineMs uint64) (math.Int, error) {
	return k.executeSwap(poolID, trader, false, amountIn, minAmountOut, maxPrice, deadlineMs)
}

// executeSwap prices and commits a swap as one atomic critical section.
// All preconditions (deadline, price limit, slippage) are validated before
// any state is touched; a failed swap is a strict no-op.
func (k *Keeper) executeSwap(poolID uint64, trader string, aToB bool, amountIn, minAmountOut math.Int, maxPrice *math.Int, deadlineMs uint64) (math.Int, error) {
	start := time.Now()

	entry, err := k.getPoolEntry(poolID)
	if err != nil {
		return math.ZeroInt(), err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	pool := entry.pool

	if err := k.checkDeadline(deadlineMs); err != nil {
		return math.ZeroInt(), err
	}

	res, err := computeSwap(pool, amountIn, aToB)
	if err != nil {
		k.countSwap(poolID, aToB, "failed")
		return math.ZeroInt(), err
	}

	// Price-limit check against the realized price amountIn/amountOut,
	// scaled by PriceScale. Exact boundary equality passes.
	if maxPrice != nil {
		realized, err := SafeMulDiv(amountIn, types.PriceScale, res.amountOut)
		if err != nil {
			return math.ZeroInt(), err
		}
		if realized.GT(*maxPrice) {
			k.countSwap(poolID, aToB, "failed")
			return math.ZeroInt(), types.ErrPriceLimitExceeded.Wrapf(
				"realized price %s exceeds limit %s", realized, maxPrice)
		}
	}

	if res.amountOut.LT(minAmountOut) {
		k.countSwap(poolID, aToB, "failed")
		return math.ZeroInt(), types.ErrSlippageExceeded.Wrapf(
			"expected at least %s, got %s", minAmountOut, res.amountOut)
	}

	reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
	if !aToB {
		reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
	}
	newReserveIn := reserveIn.Add(amountIn)
	newReserveOut, err := CheckedSub(reserveOut, res.amountOut)
	if err != nil {
		return math.ZeroInt(), err
	}
	if !newReserveOut.IsPositive() {
		return math.ZeroInt(), types.ErrInvariantViolation.Wrap("swap would empty a reserve")
	}

	// Invariant check before committing anything: K (or D) must not
	// decrease across a swap. Fees retained in reserves make it strictly
	// increase for the constant-product curve; the stable solver is
	// allowed one unit of Newton rounding.
	switch pool.Kind {
	case types.PoolKindConstantProduct:
		oldK := reserveIn.Mul(reserveOut)
		newK := newReserveIn.Mul(newReserveOut)
		if newK.LT(oldK) {
			return math.ZeroInt(), types.ErrInvariantViolation.Wrapf(
				"constant product decreased: old_k=%s new_k=%s", oldK, newK)
		}
	case types.PoolKindStable:
		dAfter := GetD(newReserveIn, newReserveOut, pool.Amplification)
		if dAfter.LT(res.dBefore.Sub(math.OneInt())) {
			return math.ZeroInt(), types.ErrInvariantViolation.Wrapf(
				"stable invariant decreased: old_d=%s new_d=%s", res.dBefore, dAfter)
		}
	}

	// Commit. LP fees accrue against the accumulator of the input side;
	// protocol and creator fees are credited to their withdrawable
	// balances.
	if aToB {
		pool.ReserveA, pool.ReserveB = newReserveIn, newReserveOut
		pool.AccFeePerShareA = RecordFee(pool.AccFeePerShareA, res.lpFee, pool.TotalShares)
		pool.ProtocolFeesA = pool.ProtocolFeesA.Add(res.protocolFee)
		pool.CreatorFeesA = pool.CreatorFeesA.Add(res.creatorFee)
	} else {
		pool.ReserveB, pool.ReserveA = newReserveIn, newReserveOut
		pool.AccFeePerShareB = RecordFee(pool.AccFeePerShareB, res.lpFee, pool.TotalShares)
		pool.ProtocolFeesB = pool.ProtocolFeesB.Add(res.protocolFee)
		pool.CreatorFeesB = pool.CreatorFeesB.Add(res.creatorFee)
	}

	tokenIn, tokenOut := pool.TokenA, pool.TokenB
	if !aToB {
		tokenIn, tokenOut = pool.TokenB, pool.TokenA
	}
	k.logger.Info(types.EventTypeSwap,
		types.AttributeKeyPoolID, poolID,
		"trader", trader,
		types.AttributeKeyTokenIn, tokenIn,
		types.AttributeKeyTokenOut, tokenOut,
		types.AttributeKeyAmountIn, amountIn.String(),
		types.AttributeKeyAmountOut, res.amountOut.String(),
		types.AttributeKeyFee, res.fee.String(),
	)

	if k.metrics != nil {
		poolIDStr := fmt.Sprintf("%d", poolID)
		k.metrics.SwapsTotal.WithLabelValues(poolIDStr, swapDirection(aToB), "success").Inc()
		k.metrics.SwapVolume.WithLabelValues(poolIDStr, tokenIn).Add(floatAmount(amountIn))
		k.metrics.SwapFeesCollected.WithLabelValues(poolIDStr, tokenIn).Add(floatAmount(res.fee))
		k.metrics.SwapLatency.Observe(time.Since(start).Seconds())
	}

	return res.amountOut, nil
}

// GetQuoteAToB prices an A-to-B swap without executing it. For identical
// pool state the result equals the output of SwapAToB exactly.
func (k *Keeper) GetQuoteAToB(poolID uint64, amountIn math.Int) (math.Int, error) {
	return k.quote(poolID, amountIn, true)
}

// GetQuoteBToA prices a B-to-A swap without executing it.
func (k *Keeper) GetQuoteBToA(poolID uint64, amountIn math.Int) (math.Int, error) {
	return k.quote(poolID, amountIn, false)
}

// GetPriceImpact measures how far a prospective swap's realized price
// would deviate from the current spot price, in basis points, without
// executing anything. Includes the fee, since the trader pays it.
func (k *Keeper) GetPriceImpact(poolID uint64, amountIn math.Int, aToB bool) (uint64, error) {
	entry, err := k.getPoolEntry(poolID)
	if err != nil {
		return 0, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	pool := entry.pool

	res, err := computeSwap(pool, amountIn, aToB)
	if err != nil {
		return 0, err
	}

	reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
	if !aToB {
		reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
	}

	spotRate := math.LegacyNewDecFromInt(reserveOut).Quo(math.LegacyNewDecFromInt(reserveIn))
	realizedRate := math.LegacyNewDecFromInt(res.amountOut).Quo(math.LegacyNewDecFromInt(amountIn))
	if realizedRate.GTE(spotRate) {
		return 0, nil
	}

	impact := spotRate.Sub(realizedRate).Quo(spotRate).MulInt64(types.BpsDenominator).TruncateInt64()
	if impact > types.BpsDenominator {
		impact = types.BpsDenominator
	}
	return uint64(impact), nil
}

func (k *Keeper) quote(poolID uint64, amountIn math.Int, aToB bool) (math.Int, error) {
	entry, err := k.getPoolEntry(poolID)
	if err != nil {
		return math.ZeroInt(), err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	res, err := computeSwap(entry.pool, amountIn, aToB)
	if err != nil {
		return math.ZeroInt(), err
	}
	return res.amountOut, nil
}

func (k *Keeper) countSwap(poolID uint64, aToB bool, status string) {
	if k.metrics == nil {
		return
	}
	k.metrics.SwapsTotal.WithLabelValues(fmt.Sprintf("%d", poolID), swapDirection(aToB), status).Inc()
}

func swapDirection(aToB bool) string {
	if aToB {
		return "a_to_b"
	}
	return "b_to_a"
}

func floatAmount(amount math.Int) float64 {
	f, err := amount.ToLegacyDec().Float64()
	if err != nil {
		return 0
	}
	return f
}

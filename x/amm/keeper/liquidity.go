package keeper

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/paw-chain/ammcore/x/amm/types"
)

// liquidityMint is the computed outcome of a deposit before it is committed.
type liquidityMint struct {
	shares    math.Int
	totalMint math.Int // shares plus the genesis burn, if any
	usedA     math.Int
	usedB     math.Int
	refundA   math.Int
	refundB   math.Int
}

// computeDeposit prices a deposit against the current pool state without
// mutating it.
//
// Genesis deposit mints sqrt(a*b) total shares for the constant-product
// curve (the D invariant for stable pools), of which MinimumLiquidity is
// permanently burned. Subsequent constant-product deposits accept only the
// proportional amounts and refund the excess of the non-limiting side,
// which keeps the reserve ratio aligned with spot price and blocks donation
// attacks. Stable deposits accept both amounts in full and mint by the D
// delta.
func computeDeposit(pool *types.Pool, amountA, amountB math.Int) (liquidityMint, error) {
	var m liquidityMint
	m.refundA, m.refundB = math.ZeroInt(), math.ZeroInt()

	if amountA.IsNil() || amountB.IsNil() || !amountA.IsPositive() || !amountB.IsPositive() {
		return m, types.ErrInvalidInput.Wrap("liquidity amounts must be positive")
	}

	if !pool.Initialized() {
		if !pool.ReserveA.IsZero() || !pool.ReserveB.IsZero() {
			return m, types.ErrInvalidPoolState.Wrap("pool has reserves but zero shares")
		}

		var total math.Int
		switch pool.Kind {
		case types.PoolKindConstantProduct:
			total = Isqrt(amountA.Mul(amountB))
		case types.PoolKindStable:
			total = GetD(amountA, amountB, pool.Amplification)
		default:
			return m, types.ErrInvalidPoolState.Wrapf("unknown pool kind %d", pool.Kind)
		}

		if total.LTE(math.NewInt(types.MinimumLiquidity)) {
			return m, types.ErrInsufficientInitialLiquidity.Wrapf(
				"initial shares %s would not exceed the %d burned minimum", total, types.MinimumLiquidity)
		}
		m.totalMint = total
		m.shares = total.SubRaw(types.MinimumLiquidity)
		m.usedA, m.usedB = amountA, amountB
		return m, nil
	}

	if pool.ReserveA.IsZero() || pool.ReserveB.IsZero() {
		return m, types.ErrInvalidPoolState.Wrap("pool has shares but zero reserves")
	}

	switch pool.Kind {
	case types.PoolKindConstantProduct:
		optimalB, err := SafeMulDiv(amountA, pool.ReserveB, pool.ReserveA)
		if err != nil {
			return m, err
		}
		if optimalB.LTE(amountB) {
			m.usedA = amountA
			m.usedB = optimalB
		} else {
			optimalA, err := SafeMulDiv(amountB, pool.ReserveA, pool.ReserveB)
			if err != nil {
				return m, err
			}
			m.usedA = optimalA
			m.usedB = amountB
		}
		m.refundA = amountA.Sub(m.usedA)
		m.refundB = amountB.Sub(m.usedB)

		sharesByA, err := SafeMulDiv(m.usedA, pool.TotalShares, pool.ReserveA)
		if err != nil {
			return m, err
		}
		sharesByB, err := SafeMulDiv(m.usedB, pool.TotalShares, pool.ReserveB)
		if err != nil {
			return m, err
		}
		m.shares = math.MinInt(sharesByA, sharesByB)

	case types.PoolKindStable:
		d0 := GetD(pool.ReserveA, pool.ReserveB, pool.Amplification)
		d1 := GetD(pool.ReserveA.Add(amountA), pool.ReserveB.Add(amountB), pool.Amplification)
		if d1.LTE(d0) {
			return m, types.ErrInvalidInput.Wrap("deposit does not grow the pool invariant")
		}
		shares, err := SafeMulDiv(pool.TotalShares, d1.Sub(d0), d0)
		if err != nil {
			return m, err
		}
		m.shares = shares
		m.usedA, m.usedB = amountA, amountB

	default:
		return m, types.ErrInvalidPoolState.Wrapf("unknown pool kind %d", pool.Kind)
	}

	if m.shares.IsZero() {
		return m, types.ErrInsufficientLiquidity.Wrap("liquidity contribution too small")
	}
	m.totalMint = m.shares
	return m, nil
}

// AddLiquidity deposits paired assets and creates a new position. The
// returned refunds are the portions of the deposit the pool did not accept.
// Fails SlippageExceeded if the minted shares fall below minLiquidityOut;
// nothing is committed on failure.
func (k *Keeper) AddLiquidity(poolID uint64, owner string, amountA, amountB, minLiquidityOut math.Int, deadlineMs uint64) (types.Position, math.Int, math.Int, error) {
	zero := math.ZeroInt()
	if owner == "" {
		return types.Position{}, zero, zero, types.ErrInvalidInput.Wrap("owner cannot be empty")
	}

	entry, err := k.getPoolEntry(poolID)
	if err != nil {
		return types.Position{}, zero, zero, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	pool := entry.pool

	if err := k.checkDeadline(deadlineMs); err != nil {
		return types.Position{}, zero, zero, err
	}

	m, err := computeDeposit(pool, amountA, amountB)
	if err != nil {
		return types.Position{}, zero, zero, err
	}
	if m.shares.LT(minLiquidityOut) {
		return types.Position{}, zero, zero, types.ErrSlippageExceeded.Wrapf(
			"minted shares %s below minimum %s", m.shares, minLiquidityOut)
	}

	pool.ReserveA = pool.ReserveA.Add(m.usedA)
	pool.ReserveB = pool.ReserveB.Add(m.usedB)
	pool.TotalShares = pool.TotalShares.Add(m.totalMint)

	pos := types.NewPosition(poolID, owner, m.shares, m.usedA, m.usedB)
	pos.FeeDebtA = SettleFeeDebt(pos.Liquidity, pool.AccFeePerShareA)
	pos.FeeDebtB = SettleFeeDebt(pos.Liquidity, pool.AccFeePerShareB)
	k.refreshPositionCacheLocked(pool, pos)
	k.registerPosition(pos)

	k.logger.Info(types.EventTypeAddLiquidity,
		types.AttributeKeyPoolID, poolID,
		types.AttributeKeyPosition, pos.Id,
		types.AttributeKeyOwner, owner,
		types.AttributeKeyAmountA, m.usedA.String(),
		types.AttributeKeyAmountB, m.usedB.String(),
		types.AttributeKeyShares, m.shares.String(),
	)
	if k.metrics != nil {
		poolIDStr := fmt.Sprintf("%d", poolID)
		k.metrics.LiquidityAdded.WithLabelValues(poolIDStr, pool.TokenA).Add(floatAmount(m.usedA))
		k.metrics.LiquidityAdded.WithLabelValues(poolIDStr, pool.TokenB).Add(floatAmount(m.usedB))
	}

	return *pos, m.refundA, m.refundB, nil
}

// IncreaseLiquidity tops up an existing position. Pending fees are settled
// first and returned to the caller together with any ratio refund (payoutA,
// payoutB). The entry-price baseline grows by the accepted amounts and is
// never rescaled, so impermanent loss keeps reflecting the true weighted
// entry rather than a diluted average.
func (k *Keeper) IncreaseLiquidity(positionID, owner string, amountA, amountB, minLiquidityOut math.Int, deadlineMs uint64) (math.Int, math.Int, math.Int, error) {
	zero := math.ZeroInt()

	pos, err := k.getPosition(positionID)
	if err != nil {
		return zero, zero, zero, err
	}
	if pos.Owner != owner {
		return zero, zero, zero, types.ErrUnauthorized.Wrapf("position %s is not owned by %s", positionID, owner)
	}

	entry, err := k.getPoolEntry(pos.PoolId)
	if err != nil {
		return zero, zero, zero, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	pool := entry.pool

	if err := k.checkDeadline(deadlineMs); err != nil {
		return zero, zero, zero, err
	}
	if !k.positionLive(positionID) {
		return zero, zero, zero, types.ErrPositionNotFound.Wrapf("position %s not found", positionID)
	}

	m, err := computeDeposit(pool, amountA, amountB)
	if err != nil {
		return zero, zero, zero, err
	}
	if m.shares.LT(minLiquidityOut) {
		return zero, zero, zero, types.ErrSlippageExceeded.Wrapf(
			"minted shares %s below minimum %s", m.shares, minLiquidityOut)
	}

	pendingA := PendingFee(pos.Liquidity, pool.AccFeePerShareA, pos.FeeDebtA)
	pendingB := PendingFee(pos.Liquidity, pool.AccFeePerShareB, pos.FeeDebtB)

	pool.ReserveA = pool.ReserveA.Add(m.usedA)
	pool.ReserveB = pool.ReserveB.Add(m.usedB)
	pool.TotalShares = pool.TotalShares.Add(m.shares)

	pos.Liquidity = pos.Liquidity.Add(m.shares)
	pos.MinA = pos.MinA.Add(m.usedA)
	pos.MinB = pos.MinB.Add(m.usedB)
	pos.FeeDebtA = SettleFeeDebt(pos.Liquidity, pool.AccFeePerShareA)
	pos.FeeDebtB = SettleFeeDebt(pos.Liquidity, pool.AccFeePerShareB)
	k.refreshPositionCacheLocked(pool, pos)

	k.logger.Info(types.EventTypeIncreaseLiquidity,
		types.AttributeKeyPoolID, pool.Id,
		types.AttributeKeyPosition, pos.Id,
		types.AttributeKeyAmountA, m.usedA.String(),
		types.AttributeKeyAmountB, m.usedB.String(),
		types.AttributeKeyShares, m.shares.String(),
	)
	if k.metrics != nil {
		poolIDStr := fmt.Sprintf("%d", pool.Id)
		k.metrics.LiquidityAdded.WithLabelValues(poolIDStr, pool.TokenA).Add(floatAmount(m.usedA))
		k.metrics.LiquidityAdded.WithLabelValues(poolIDStr, pool.TokenB).Add(floatAmount(m.usedB))
	}

	return m.shares, m.refundA.Add(pendingA), m.refundB.Add(pendingB), nil
}

// RemoveLiquidityPartial burns part of a position's shares. Pending fees
// are settled into the payout alongside principal; the entry-price baseline
// shrinks proportionally. Fails InsufficientLiquidity if sharesToBurn
// exceeds the position and SlippageExceeded if either principal output is
// below its minimum.
func (k *Keeper) RemoveLiquidityPartial(positionID, owner string, sharesToBurn, minAOut, minBOut math.Int, deadlineMs uint64) (math.Int, math.Int, error) {
	return k.removeLiquidity(positionID, owner, sharesToBurn, minAOut, minBOut, deadlineMs)
}

// RemoveLiquidity burns all of a position's shares and destroys the
// position.
func (k *Keeper) RemoveLiquidity(positionID, owner string, minAOut, minBOut math.Int, deadlineMs uint64) (math.Int, math.Int, error) {
	return k.removeLiquidity(positionID, owner, math.Int{}, minAOut, minBOut, deadlineMs)
}

// removeLiquidity implements both partial and full removal. A nil
// sharesToBurn means "everything".
func (k *Keeper) removeLiquidity(positionID, owner string, sharesToBurn, minAOut, minBOut math.Int, deadlineMs uint64) (math.Int, math.Int, error) {
	zero := math.ZeroInt()

	pos, err := k.getPosition(positionID)
	if err != nil {
		return zero, zero, err
	}
	if pos.Owner != owner {
		return zero, zero, types.ErrUnauthorized.Wrapf("position %s is not owned by %s", positionID, owner)
	}

	entry, err := k.getPoolEntry(pos.PoolId)
	if err != nil {
		return zero, zero, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	pool := entry.pool

	if err := k.checkDeadline(deadlineMs); err != nil {
		return zero, zero, err
	}
	if !k.positionLive(positionID) {
		return zero, zero, types.ErrPositionNotFound.Wrapf("position %s not found", positionID)
	}

	full := sharesToBurn.IsNil()
	if full {
		sharesToBurn = pos.Liquidity
	}
	if !sharesToBurn.IsPositive() {
		return zero, zero, types.ErrInvalidInput.Wrap("shares to burn must be positive")
	}
	if sharesToBurn.GT(pos.Liquidity) {
		return zero, zero, types.ErrInsufficientLiquidity.Wrapf(
			"position has %s shares, requested %s", pos.Liquidity, sharesToBurn)
	}
	if pool.TotalShares.IsZero() || pool.ReserveA.IsZero() || pool.ReserveB.IsZero() {
		return zero, zero, types.ErrInvalidPoolState.Wrap("pool has no withdrawable reserves")
	}

	outA, err := SafeMulDiv(pool.ReserveA, sharesToBurn, pool.TotalShares)
	if err != nil {
		return zero, zero, err
	}
	outB, err := SafeMulDiv(pool.ReserveB, sharesToBurn, pool.TotalShares)
	if err != nil {
		return zero, zero, err
	}
	if !full && (outA.IsZero() || outB.IsZero()) {
		return zero, zero, types.ErrInsufficientLiquidity.Wrap("withdrawal amounts too small")
	}
	if outA.LT(minAOut) || outB.LT(minBOut) {
		return zero, zero, types.ErrSlippageExceeded.Wrapf(
			"withdrawal (%s, %s) below minimums (%s, %s)", outA, outB, minAOut, minBOut)
	}

	pendingA := PendingFee(pos.Liquidity, pool.AccFeePerShareA, pos.FeeDebtA)
	pendingB := PendingFee(pos.Liquidity, pool.AccFeePerShareB, pos.FeeDebtB)

	newReserveA, err := CheckedSub(pool.ReserveA, outA)
	if err != nil {
		return zero, zero, err
	}
	newReserveB, err := CheckedSub(pool.ReserveB, outB)
	if err != nil {
		return zero, zero, err
	}
	newTotalShares, err := CheckedSub(pool.TotalShares, sharesToBurn)
	if err != nil {
		return zero, zero, err
	}

	liquidityBefore := pos.Liquidity
	pool.ReserveA = newReserveA
	pool.ReserveB = newReserveB
	pool.TotalShares = newTotalShares
	pos.Liquidity = pos.Liquidity.Sub(sharesToBurn)

	if pos.Liquidity.IsZero() {
		k.destroyPosition(pos.Id)
		k.logger.Info(types.EventTypePositionDestroyed,
			types.AttributeKeyPoolID, pool.Id,
			types.AttributeKeyPosition, pos.Id,
		)
	} else {
		// Entry baseline shrinks in proportion to the burned share
		newMinA, err := SafeMulDiv(pos.MinA, pos.Liquidity, liquidityBefore)
		if err != nil {
			return zero, zero, err
		}
		newMinB, err := SafeMulDiv(pos.MinB, pos.Liquidity, liquidityBefore)
		if err != nil {
			return zero, zero, err
		}
		pos.MinA = newMinA
		pos.MinB = newMinB
		pos.FeeDebtA = SettleFeeDebt(pos.Liquidity, pool.AccFeePerShareA)
		pos.FeeDebtB = SettleFeeDebt(pos.Liquidity, pool.AccFeePerShareB)
		k.refreshPositionCacheLocked(pool, pos)
	}

	k.logger.Info(types.EventTypeRemoveLiquidity,
		types.AttributeKeyPoolID, pool.Id,
		types.AttributeKeyPosition, pos.Id,
		types.AttributeKeyAmountA, outA.String(),
		types.AttributeKeyAmountB, outB.String(),
		types.AttributeKeyShares, sharesToBurn.String(),
	)
	if k.metrics != nil {
		poolIDStr := fmt.Sprintf("%d", pool.Id)
		k.metrics.LiquidityRemoved.WithLabelValues(poolIDStr, pool.TokenA).Add(floatAmount(outA))
		k.metrics.LiquidityRemoved.WithLabelValues(poolIDStr, pool.TokenB).Add(floatAmount(outB))
	}

	return outA.Add(pendingA), outB.Add(pendingB), nil
}

// positionLive re-checks position existence under the pool lock; a
// concurrent full removal may have destroyed it between lookup and lock.
func (k *Keeper) positionLive(positionID string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, ok := k.positions[positionID]
	return ok
}

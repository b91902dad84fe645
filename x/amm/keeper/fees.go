package keeper

import (
	"fmt"

	"cosmossdk.io/math"

	"github.com/paw-chain/ammcore/x/amm/types"
)

// ClaimFees settles a position's pending LP fees and returns them. The fee
// debt snapshots are advanced to the current accumulators so an immediate
// second claim yields zero. Claiming with nothing pending is not an error.
func (k *Keeper) ClaimFees(positionID, owner string) (math.Int, math.Int, error) {
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

	if !k.positionLive(positionID) {
		return zero, zero, types.ErrPositionNotFound.Wrapf("position %s not found", positionID)
	}

	pendingA := PendingFee(pos.Liquidity, pool.AccFeePerShareA, pos.FeeDebtA)
	pendingB := PendingFee(pos.Liquidity, pool.AccFeePerShareB, pos.FeeDebtB)

	pos.FeeDebtA = SettleFeeDebt(pos.Liquidity, pool.AccFeePerShareA)
	pos.FeeDebtB = SettleFeeDebt(pos.Liquidity, pool.AccFeePerShareB)
	pos.CachedFeeA = math.ZeroInt()
	pos.CachedFeeB = math.ZeroInt()

	k.logger.Info(types.EventTypeFeesClaimed,
		types.AttributeKeyPoolID, pool.Id,
		types.AttributeKeyPosition, pos.Id,
		types.AttributeKeyAmountA, pendingA.String(),
		types.AttributeKeyAmountB, pendingB.String(),
	)
	if k.metrics != nil {
		poolIDStr := fmt.Sprintf("%d", pool.Id)
		k.metrics.FeesClaimed.WithLabelValues(poolIDStr, pool.TokenA).Add(floatAmount(pendingA))
		k.metrics.FeesClaimed.WithLabelValues(poolIDStr, pool.TokenB).Add(floatAmount(pendingB))
	}

	return pendingA, pendingB, nil
}

// AutoCompoundFees reinvests a position's pending fees as a fresh deposit
// into the same pool. Fails InsufficientFeesToCompound when the combined
// pending amount is below Params.MinCompoundFees or either side has nothing
// pending, and SlippageExceeded when the minted shares fall below
// minLiquidityIncrease. Returns the minted shares and any portion of the
// fees the deposit ratio refused, which is paid out as a claim.
func (k *Keeper) AutoCompoundFees(positionID, owner string, minLiquidityIncrease math.Int, deadlineMs uint64) (math.Int, math.Int, math.Int, error) {
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

	pendingA := PendingFee(pos.Liquidity, pool.AccFeePerShareA, pos.FeeDebtA)
	pendingB := PendingFee(pos.Liquidity, pool.AccFeePerShareB, pos.FeeDebtB)

	minFees := k.GetParams().MinCompoundFees
	if pendingA.Add(pendingB).LT(minFees) {
		return zero, zero, zero, types.ErrInsufficientFeesToCompound.Wrapf(
			"pending fees %s + %s below compound threshold %s", pendingA, pendingB, minFees)
	}
	if pendingA.IsZero() || pendingB.IsZero() {
		return zero, zero, zero, types.ErrInsufficientFeesToCompound.Wrap(
			"compounding requires pending fees on both sides")
	}

	m, err := computeDeposit(pool, pendingA, pendingB)
	if err != nil {
		return zero, zero, zero, err
	}
	if m.shares.LT(minLiquidityIncrease) {
		return zero, zero, zero, types.ErrSlippageExceeded.Wrapf(
			"compounded shares %s below minimum %s", m.shares, minLiquidityIncrease)
	}

	pool.ReserveA = pool.ReserveA.Add(m.usedA)
	pool.ReserveB = pool.ReserveB.Add(m.usedB)
	pool.TotalShares = pool.TotalShares.Add(m.shares)

	pos.Liquidity = pos.Liquidity.Add(m.shares)
	pos.MinA = pos.MinA.Add(m.usedA)
	pos.MinB = pos.MinB.Add(m.usedB)
	pos.FeeDebtA = SettleFeeDebt(pos.Liquidity, pool.AccFeePerShareA)
	pos.FeeDebtB = SettleFeeDebt(pos.Liquidity, pool.AccFeePerShareB)
	k.refreshPositionCacheLocked(pool, pos)

	k.logger.Info(types.EventTypeFeesCompounded,
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

	return m.shares, m.refundA, m.refundB, nil
}

// WithdrawProtocolFees drains a pool's accumulated protocol fee balances.
func (k *Keeper) WithdrawProtocolFees(poolID uint64, recipient string) (math.Int, math.Int, error) {
	zero := math.ZeroInt()
	if recipient == "" {
		return zero, zero, types.ErrInvalidInput.Wrap("recipient cannot be empty")
	}

	entry, err := k.getPoolEntry(poolID)
	if err != nil {
		return zero, zero, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	pool := entry.pool

	amountA, amountB := pool.ProtocolFeesA, pool.ProtocolFeesB
	pool.ProtocolFeesA = math.ZeroInt()
	pool.ProtocolFeesB = math.ZeroInt()

	k.logger.Info(types.EventTypeProtocolFeesDrawn,
		types.AttributeKeyPoolID, poolID,
		"recipient", recipient,
		types.AttributeKeyAmountA, amountA.String(),
		types.AttributeKeyAmountB, amountB.String(),
	)
	return amountA, amountB, nil
}

// WithdrawCreatorFees drains a pool's accumulated creator fee balances.
// Only the pool creator may withdraw them.
func (k *Keeper) WithdrawCreatorFees(poolID uint64, caller string) (math.Int, math.Int, error) {
	zero := math.ZeroInt()

	entry, err := k.getPoolEntry(poolID)
	if err != nil {
		return zero, zero, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	pool := entry.pool

	if caller != pool.Creator {
		return zero, zero, types.ErrUnauthorized.Wrapf(
			"creator fees of pool %d can only be withdrawn by %s", poolID, pool.Creator)
	}

	amountA, amountB := pool.CreatorFeesA, pool.CreatorFeesB
	pool.CreatorFeesA = math.ZeroInt()
	pool.CreatorFeesB = math.ZeroInt()

	k.logger.Info(types.EventTypeCreatorFeesDrawn,
		types.AttributeKeyPoolID, poolID,
		types.AttributeKeyOwner, caller,
		types.AttributeKeyAmountA, amountA.String(),
		types.AttributeKeyAmountB, amountB.String(),
	)
	return amountA, amountB, nil
}

package keeper

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/ammcore/x/amm/types"
)

// GetPosition returns a snapshot of a position.
func (k *Keeper) GetPosition(positionID string) (types.Position, error) {
	pos, err := k.getPosition(positionID)
	if err != nil {
		return types.Position{}, err
	}
	entry, err := k.getPoolEntry(pos.PoolId)
	if err != nil {
		return types.Position{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return *pos, nil
}

// ViewPositionValue returns the current withdrawable principal of a
// position: its proportional share of both reserves. A position with zero
// liquidity values to (0, 0) without touching the pool's arithmetic.
func (k *Keeper) ViewPositionValue(positionID string) (math.Int, math.Int, error) {
	zero := math.ZeroInt()

	pos, err := k.getPosition(positionID)
	if err != nil {
		return zero, zero, err
	}
	if pos.Liquidity.IsZero() {
		return zero, zero, nil
	}

	entry, err := k.getPoolEntry(pos.PoolId)
	if err != nil {
		return zero, zero, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	pool := entry.pool

	if pool.TotalShares.IsZero() {
		return zero, zero, nil
	}
	valueA, err := SafeMulDiv(pool.ReserveA, pos.Liquidity, pool.TotalShares)
	if err != nil {
		return zero, zero, err
	}
	valueB, err := SafeMulDiv(pool.ReserveB, pos.Liquidity, pool.TotalShares)
	if err != nil {
		return zero, zero, err
	}
	return valueA, valueB, nil
}

// ViewPositionFees returns the fees a position could claim right now,
// without settling anything.
func (k *Keeper) ViewPositionFees(positionID string) (math.Int, math.Int, error) {
	zero := math.ZeroInt()

	pos, err := k.getPosition(positionID)
	if err != nil {
		return zero, zero, err
	}
	if pos.Liquidity.IsZero() {
		return zero, zero, nil
	}

	entry, err := k.getPoolEntry(pos.PoolId)
	if err != nil {
		return zero, zero, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	pool := entry.pool

	pendingA := PendingFee(pos.Liquidity, pool.AccFeePerShareA, pos.FeeDebtA)
	pendingB := PendingFee(pos.Liquidity, pool.AccFeePerShareB, pos.FeeDebtB)
	return pendingA, pendingB, nil
}

// GetImpermanentLoss returns the position's current impermanent loss in
// basis points against its entry-price baseline. Zero when the position is
// at or above its hold value.
func (k *Keeper) GetImpermanentLoss(positionID string) (uint64, error) {
	pos, err := k.getPosition(positionID)
	if err != nil {
		return 0, err
	}
	if pos.Liquidity.IsZero() {
		return 0, nil
	}

	entry, err := k.getPoolEntry(pos.PoolId)
	if err != nil {
		return 0, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return impermanentLossBps(entry.pool, pos), nil
}

// RefreshPositionMetadata recomputes a position's cached value, fee and
// impermanent-loss snapshot and stamps the refresh time. This is the only
// way the cache moves outside liquidity mutations; swaps deliberately leave
// it untouched.
func (k *Keeper) RefreshPositionMetadata(positionID, owner string) (types.Position, error) {
	pos, err := k.getPosition(positionID)
	if err != nil {
		return types.Position{}, err
	}
	if pos.Owner != owner {
		return types.Position{}, types.ErrUnauthorized.Wrapf("position %s is not owned by %s", positionID, owner)
	}

	entry, err := k.getPoolEntry(pos.PoolId)
	if err != nil {
		return types.Position{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !k.positionLive(positionID) {
		return types.Position{}, types.ErrPositionNotFound.Wrapf("position %s not found", positionID)
	}

	k.refreshPositionCacheLocked(entry.pool, pos)

	k.logger.Debug(types.EventTypeMetadataRefreshed,
		types.AttributeKeyPoolID, pos.PoolId,
		types.AttributeKeyPosition, pos.Id,
	)
	return *pos, nil
}

// PositionStale reports whether a position's cached metadata is older than
// Params.StaleThresholdMs. Age exactly at the threshold is fresh.
func (k *Keeper) PositionStale(positionID string) (bool, error) {
	pos, err := k.getPosition(positionID)
	if err != nil {
		return false, err
	}
	entry, err := k.getPoolEntry(pos.PoolId)
	if err != nil {
		return false, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return pos.IsStale(k.clock.NowMs(), k.GetParams().StaleThresholdMs), nil
}

// TransferPosition moves ownership of a position. Only the current owner
// may transfer; liquidity, fee debts and the entry baseline move with the
// position unchanged.
func (k *Keeper) TransferPosition(positionID, from, to string) error {
	if to == "" {
		return types.ErrInvalidInput.Wrap("transfer recipient cannot be empty")
	}

	pos, err := k.getPosition(positionID)
	if err != nil {
		return err
	}

	entry, err := k.getPoolEntry(pos.PoolId)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !k.positionLive(positionID) {
		return types.ErrPositionNotFound.Wrapf("position %s not found", positionID)
	}
	if pos.Owner != from {
		return types.ErrUnauthorized.Wrapf("position %s is not owned by %s", positionID, from)
	}

	pos.Owner = to

	k.logger.Info(types.EventTypePositionTransfer,
		types.AttributeKeyPoolID, pos.PoolId,
		types.AttributeKeyPosition, pos.Id,
		"from", from,
		"to", to,
	)
	return nil
}

// refreshPositionCacheLocked syncs a position's cached snapshot from the
// live pool state. Caller holds the pool lock.
func (k *Keeper) refreshPositionCacheLocked(pool *types.Pool, pos *types.Position) {
	if pos.Liquidity.IsZero() || pool.TotalShares.IsZero() {
		pos.CachedValueA = math.ZeroInt()
		pos.CachedValueB = math.ZeroInt()
		pos.CachedFeeA = math.ZeroInt()
		pos.CachedFeeB = math.ZeroInt()
		pos.CachedIlBps = 0
		pos.LastMetadataUpdateMs = k.clock.NowMs()
		return
	}

	pos.CachedValueA = pool.ReserveA.Mul(pos.Liquidity).Quo(pool.TotalShares)
	pos.CachedValueB = pool.ReserveB.Mul(pos.Liquidity).Quo(pool.TotalShares)
	pos.CachedFeeA = PendingFee(pos.Liquidity, pool.AccFeePerShareA, pos.FeeDebtA)
	pos.CachedFeeB = PendingFee(pos.Liquidity, pool.AccFeePerShareB, pos.FeeDebtB)
	pos.CachedIlBps = impermanentLossBps(pool, pos)
	pos.LastMetadataUpdateMs = k.clock.NowMs()
}

// impermanentLossBps measures how far the position's current value sits
// below the value of simply holding its entry baseline, in basis points,
// valued at the current spot price. Caller holds the pool lock.
//
// With both values denominated in token B at price p = reserveB/reserveA:
// hold = minA*p + minB, current = valueA*p + valueB,
// loss = (hold - current) / hold. For a position entered at the initial
// ratio this reduces to the closed form 1 - 2*sqrt(r)/(1+r), with r the
// price ratio against entry.
func impermanentLossBps(pool *types.Pool, pos *types.Position) uint64 {
	if pos.Liquidity.IsZero() || pool.TotalShares.IsZero() {
		return 0
	}
	if pool.ReserveA.IsZero() || pool.ReserveB.IsZero() {
		return 0
	}
	if !pos.MinA.IsPositive() || !pos.MinB.IsPositive() {
		return 0
	}

	price := math.LegacyNewDecFromInt(pool.ReserveB).Quo(math.LegacyNewDecFromInt(pool.ReserveA))

	valueA := pool.ReserveA.Mul(pos.Liquidity).Quo(pool.TotalShares)
	valueB := pool.ReserveB.Mul(pos.Liquidity).Quo(pool.TotalShares)

	hold := math.LegacyNewDecFromInt(pos.MinA).Mul(price).Add(math.LegacyNewDecFromInt(pos.MinB))
	current := math.LegacyNewDecFromInt(valueA).Mul(price).Add(math.LegacyNewDecFromInt(valueB))

	if !hold.IsPositive() || current.GTE(hold) {
		return 0
	}

	lossBps := hold.Sub(current).Quo(hold).MulInt64(types.BpsDenominator).TruncateInt64()
	if lossBps < 0 {
		return 0
	}
	if lossBps > types.BpsDenominator {
		return uint64(types.BpsDenominator)
	}
	return uint64(lossBps)
}

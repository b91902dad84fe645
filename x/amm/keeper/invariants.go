package keeper

import (
	"sort"

	"cosmossdk.io/math"

	"github.com/paw-chain/ammcore/x/amm/types"
)

// AllInvariants sweeps every pool and verifies the engine's global
// accounting. Each pool is checked in its own critical section; the sweep
// as a whole is not atomic across pools, which is fine because pools are
// independent.
//
// Checked per pool: reserves strictly positive whenever shares exist (and
// vice versa), accumulators non-negative, and TotalShares equal to the sum
// of all position liquidity plus the burned genesis minimum.
func (k *Keeper) AllInvariants() error {
	for _, poolID := range k.poolIDs() {
		entry, err := k.getPoolEntry(poolID)
		if err != nil {
			// Pool removed between snapshot and check; nothing to verify.
			continue
		}
		entry.mu.Lock()
		err = k.checkPoolInvariantsLocked(entry.pool)
		entry.mu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

func (k *Keeper) checkPoolInvariantsLocked(pool *types.Pool) error {
	if err := pool.ValidateState(); err != nil {
		return types.ErrInvariantViolation.Wrapf("pool %d: %s", pool.Id, err)
	}
	if pool.ProtocolFeesA.IsNegative() || pool.ProtocolFeesB.IsNegative() ||
		pool.CreatorFeesA.IsNegative() || pool.CreatorFeesB.IsNegative() {
		return types.ErrInvariantViolation.Wrapf("pool %d: negative fee balance", pool.Id)
	}
	if !pool.Initialized() {
		return nil
	}

	expected := k.sumPositionLiquidity(pool.Id).AddRaw(types.MinimumLiquidity)
	if !pool.TotalShares.Equal(expected) {
		return types.ErrInvariantViolation.Wrapf(
			"pool %d: total shares %s != position liquidity + burned minimum %s",
			pool.Id, pool.TotalShares, expected)
	}
	return nil
}

// poolIDs snapshots the current pool IDs in ascending order.
func (k *Keeper) poolIDs() []uint64 {
	k.mu.RLock()
	ids := make([]uint64, 0, len(k.pools))
	for id := range k.pools {
		ids = append(ids, id)
	}
	k.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// sumPositionLiquidity totals the liquidity of all positions in one pool.
// Safe to call with a pool lock held: the lock order is always pool entry
// before keeper map.
func (k *Keeper) sumPositionLiquidity(poolID uint64) math.Int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	sum := math.ZeroInt()
	for _, pos := range k.positions {
		if pos.PoolId == poolID {
			sum = sum.Add(pos.Liquidity)
		}
	}
	return sum
}

package keeper

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/ammcore/x/amm/types"
)

// CreatePool registers a new empty pool for a token pair and fee tier.
// Tokens are ordered lexicographically so the (pair, fee tier, kind)
// combination is unique regardless of argument order. Returns
// ErrPoolAlreadyExists for a duplicate combination and ErrInvalidFeeConfig
// for an invalid fee tier. The pool starts with zero reserves and zero
// accumulators; the genesis deposit happens through AddLiquidity.
func (k *Keeper) CreatePool(creator string, kind types.PoolKind, tokenA, tokenB string, feeBps, protocolFeeBps, creatorFeeBps, amplification uint64) (types.Pool, error) {
	if tokenA == tokenB {
		return types.Pool{}, types.ErrInvalidTokenPair.Wrap("cannot create pool with identical tokens")
	}
	if tokenA == "" || tokenB == "" {
		return types.Pool{}, types.ErrInvalidInput.Wrap("token denoms cannot be empty")
	}
	if creator == "" {
		return types.Pool{}, types.ErrInvalidInput.Wrap("creator cannot be empty")
	}

	if err := types.ValidateFeeConfig(feeBps, protocolFeeBps, creatorFeeBps); err != nil {
		return types.Pool{}, err
	}

	switch kind {
	case types.PoolKindConstantProduct:
		if amplification != 0 {
			return types.Pool{}, types.ErrInvalidInput.Wrap("amplification is only valid for stable pools")
		}
	case types.PoolKindStable:
		if amplification < types.MinAmplification || amplification > types.MaxAmplification {
			return types.Pool{}, types.ErrInvalidInput.Wrapf(
				"amplification %d outside [%d, %d]",
				amplification, types.MinAmplification, types.MaxAmplification,
			)
		}
	default:
		return types.Pool{}, types.ErrInvalidInput.Wrapf("unknown pool kind %d", kind)
	}

	// Consistent token ordering
	if tokenA > tokenB {
		tokenA, tokenB = tokenB, tokenA
	}
	pairKey := types.PairKey(tokenA, tokenB, feeBps, kind)

	k.mu.Lock()
	defer k.mu.Unlock()

	if existing, ok := k.pairIndex[pairKey]; ok {
		return types.Pool{}, types.ErrPoolAlreadyExists.Wrapf(
			"pool %d already exists for %s/%s at %d bps", existing, tokenA, tokenB, feeBps)
	}
	if uint64(len(k.pools)) >= k.params.MaxPools {
		return types.Pool{}, types.ErrInvalidInput.Wrapf("maximum number of pools (%d) reached", k.params.MaxPools)
	}

	poolID := k.nextID
	k.nextID++

	pool := types.NewPool(poolID, kind, tokenA, tokenB, creator, feeBps, protocolFeeBps, creatorFeeBps, amplification)
	k.pools[poolID] = &poolEntry{pool: pool}
	k.pairIndex[pairKey] = poolID

	k.logger.Info(types.EventTypePoolCreated,
		types.AttributeKeyPoolID, poolID,
		types.AttributeKeyKind, kind.String(),
		"token_a", tokenA,
		"token_b", tokenB,
		"fee_bps", feeBps,
	)
	if k.metrics != nil {
		k.metrics.PoolsTotal.Inc()
	}

	return *pool, nil
}

// GetPool returns a snapshot of a pool's state.
func (k *Keeper) GetPool(poolID uint64) (types.Pool, error) {
	entry, err := k.getPoolEntry(poolID)
	if err != nil {
		return types.Pool{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return *entry.pool, nil
}

// GetPoolByPair looks a pool up by its token pair, fee tier and kind,
// order-independent.
func (k *Keeper) GetPoolByPair(tokenA, tokenB string, feeBps uint64, kind types.PoolKind) (types.Pool, error) {
	if tokenA > tokenB {
		tokenA, tokenB = tokenB, tokenA
	}
	k.mu.RLock()
	poolID, ok := k.pairIndex[types.PairKey(tokenA, tokenB, feeBps, kind)]
	k.mu.RUnlock()
	if !ok {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("no pool for %s/%s at %d bps", tokenA, tokenB, feeBps)
	}
	return k.GetPool(poolID)
}

// GetSpotPrice returns the instantaneous price of token A in units of
// token B for a pool.
func (k *Keeper) GetSpotPrice(poolID uint64) (math.LegacyDec, error) {
	entry, err := k.getPoolEntry(poolID)
	if err != nil {
		return math.LegacyZeroDec(), err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.pool.SpotPrice()
}

package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/ammcore/x/amm/types"
)

// Drives a zero-fee pool to a target price ratio and checks the measured
// impermanent loss against the closed form 1 - 2*sqrt(r)/(1+r):
// 2x -> ~572 bps, 5x -> ~2546 bps, 10x -> ~4250 bps.
func TestImpermanentLossMagnitudes(t *testing.T) {
	tests := []struct {
		name    string
		swapIn  int64 // B-side input moving a 1e12:1e12 pool to the target price
		minBps  uint64
		maxBps  uint64
	}{
		{"2x price move", 414_213_562_373, 555, 590},
		{"5x price move", 1_236_067_977_500, 2500, 2600},
		{"10x price move", 2_162_277_660_168, 4200, 4300},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			k, _ := newTestKeeper(t)
			pool, genesis := newSeededPool(t, k, 0, 0, 0, 1_000_000_000_000, 1_000_000_000_000)

			_, err := k.SwapBToA(pool.Id, "whale", math.NewInt(tc.swapIn), math.OneInt(), nil, farDeadline)
			require.NoError(t, err)

			il, err := k.GetImpermanentLoss(genesis.Id)
			require.NoError(t, err)
			require.GreaterOrEqual(t, il, tc.minBps, "impermanent loss too small")
			require.LessOrEqual(t, il, tc.maxBps, "impermanent loss too large")
		})
	}
}

func TestImpermanentLossZeroAtEntryPrice(t *testing.T) {
	k, _ := newTestKeeper(t)
	_, genesis := newSeededPool(t, k, 30, 0, 0, 1_000_000_000, 1_000_000_000)

	il, err := k.GetImpermanentLoss(genesis.Id)
	require.NoError(t, err)
	require.Zero(t, il, "no price move, no impermanent loss")
}

// Swaps never touch the cached snapshot; only an explicit refresh or a
// liquidity mutation moves it.
func TestMetadataCacheNotUpdatedBySwaps(t *testing.T) {
	k, _ := newTestKeeper(t)
	pool, genesis := newSeededPool(t, k, 30, 0, 0, 1_000_000_000, 1_000_000_000)

	snap, err := k.RefreshPositionMetadata(genesis.Id, "genesis-lp")
	require.NoError(t, err)
	require.True(t, snap.CachedFeeA.IsZero())

	_, err = k.SwapAToB(pool.Id, "trader", math.NewInt(10_000_000), math.OneInt(), nil, farDeadline)
	require.NoError(t, err)

	stale, err := k.GetPosition(genesis.Id)
	require.NoError(t, err)
	require.Equal(t, snap.CachedValueA, stale.CachedValueA, "swap must not move the cache")
	require.True(t, stale.CachedFeeA.IsZero(), "pending fees exist but the cache lags until refresh")

	fresh, err := k.RefreshPositionMetadata(genesis.Id, "genesis-lp")
	require.NoError(t, err)
	require.True(t, fresh.CachedFeeA.IsPositive())
	require.NotEqual(t, snap.CachedValueA, fresh.CachedValueA)

	_, err = k.RefreshPositionMetadata(genesis.Id, "mallory")
	require.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestPositionStaleness(t *testing.T) {
	k, clock := newTestKeeper(t)
	_, genesis := newSeededPool(t, k, 30, 0, 0, 1_000_000_000, 1_000_000_000)

	stale, err := k.PositionStale(genesis.Id)
	require.NoError(t, err)
	require.False(t, stale)

	clock.advance(types.DefaultParams().StaleThresholdMs)
	stale, err = k.PositionStale(genesis.Id)
	require.NoError(t, err)
	require.False(t, stale, "age exactly at the threshold is fresh")

	clock.advance(1)
	stale, err = k.PositionStale(genesis.Id)
	require.NoError(t, err)
	require.True(t, stale)

	_, err = k.RefreshPositionMetadata(genesis.Id, "genesis-lp")
	require.NoError(t, err)
	stale, err = k.PositionStale(genesis.Id)
	require.NoError(t, err)
	require.False(t, stale, "refresh resets the staleness clock")
}

func TestTransferPosition(t *testing.T) {
	k, _ := newTestKeeper(t)
	_, genesis := newSeededPool(t, k, 30, 0, 0, 1_000_000_000, 1_000_000_000)

	require.ErrorIs(t, k.TransferPosition(genesis.Id, "mallory", "mallory"), types.ErrUnauthorized)
	require.ErrorIs(t, k.TransferPosition(genesis.Id, "genesis-lp", ""), types.ErrInvalidInput)
	require.ErrorIs(t, k.TransferPosition("no-such-position", "a", "b"), types.ErrPositionNotFound)

	require.NoError(t, k.TransferPosition(genesis.Id, "genesis-lp", "bob"))

	pos, err := k.GetPosition(genesis.Id)
	require.NoError(t, err)
	require.Equal(t, "bob", pos.Owner)
	require.Equal(t, genesis.Liquidity, pos.Liquidity, "stake moves with the position")

	// The old owner lost all rights; the new owner gained them
	_, _, err = k.ClaimFees(genesis.Id, "genesis-lp")
	require.ErrorIs(t, err, types.ErrUnauthorized)
	_, _, err = k.RemoveLiquidity(genesis.Id, "bob", math.ZeroInt(), math.ZeroInt(), farDeadline)
	require.NoError(t, err)
}

package keeper_test

import (
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/ammcore/x/amm/keeper"
	"github.com/paw-chain/ammcore/x/amm/types"
)

// fakeClock is a manually advanced clock for deadline and staleness tests.
type fakeClock struct {
	now uint64
}

func (c *fakeClock) NowMs() uint64 { return c.now }

func (c *fakeClock) advance(ms uint64) { c.now += ms }

// farDeadline never expires within a test.
const farDeadline = uint64(1) << 60

func newTestKeeper(t *testing.T) (*keeper.Keeper, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: 1_000_000}
	return keeper.NewKeeper(clock, log.NewNopLogger(), types.DefaultParams()), clock
}

// newSeededPool creates a constant-product pool and funds it with a genesis
// position.
func newSeededPool(t *testing.T, k *keeper.Keeper, feeBps, protocolFeeBps, creatorFeeBps uint64, reserveA, reserveB int64) (types.Pool, types.Position) {
	t.Helper()

	pool, err := k.CreatePool("creator", types.PoolKindConstantProduct, "uatom", "upaw", feeBps, protocolFeeBps, creatorFeeBps, 0)
	require.NoError(t, err)

	pos, refundA, refundB, err := k.AddLiquidity(pool.Id, "genesis-lp", math.NewInt(reserveA), math.NewInt(reserveB), math.ZeroInt(), farDeadline)
	require.NoError(t, err)
	require.True(t, refundA.IsZero())
	require.True(t, refundB.IsZero())

	pool, err = k.GetPool(pool.Id)
	require.NoError(t, err)
	return pool, pos
}

func TestSetParams(t *testing.T) {
	k, _ := newTestKeeper(t)

	params := types.DefaultParams()
	params.MaxPools = 1
	require.NoError(t, k.SetParams(params))
	require.Equal(t, uint64(1), k.GetParams().MaxPools)

	params.MaxPools = 0
	require.ErrorIs(t, k.SetParams(params), types.ErrInvalidInput)
}

func TestDeadlineEnforcement(t *testing.T) {
	k, clock := newTestKeeper(t)
	pool, _ := newSeededPool(t, k, 30, 0, 0, 1_000_000_000, 1_000_000_000)

	// Deadline exactly at the current time still passes
	_, err := k.SwapAToB(pool.Id, "trader", math.NewInt(1000), math.OneInt(), nil, clock.now)
	require.NoError(t, err)

	_, err = k.SwapAToB(pool.Id, "trader", math.NewInt(1000), math.OneInt(), nil, clock.now-1)
	require.ErrorIs(t, err, types.ErrDeadlineExpired)

	clock.advance(10_000)
	_, _, _, err = k.AddLiquidity(pool.Id, "lp", math.NewInt(1000), math.NewInt(1000), math.ZeroInt(), clock.now-1)
	require.ErrorIs(t, err, types.ErrDeadlineExpired)
}

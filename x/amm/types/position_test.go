package types

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestNewPosition(t *testing.T) {
	pos := NewPosition(7, "alice", math.NewInt(500), math.NewInt(1000), math.NewInt(2000))

	require.NotEmpty(t, pos.Id)
	require.Equal(t, uint64(7), pos.PoolId)
	require.Equal(t, "alice", pos.Owner)
	require.Equal(t, math.NewInt(500), pos.Liquidity)
	require.Equal(t, math.NewInt(1000), pos.MinA)
	require.Equal(t, math.NewInt(2000), pos.MinB)
	require.True(t, pos.FeeDebtA.IsZero())
	require.True(t, pos.FeeDebtB.IsZero())

	other := NewPosition(7, "alice", math.NewInt(500), math.NewInt(1000), math.NewInt(2000))
	require.NotEqual(t, pos.Id, other.Id, "position identity must be unique")
}

func TestPositionStalenessBoundary(t *testing.T) {
	const threshold = 300_000

	pos := NewPosition(1, "alice", math.NewInt(1), math.NewInt(1), math.NewInt(1))
	pos.LastMetadataUpdateMs = 1_000_000

	require.False(t, pos.IsStale(1_000_000, threshold), "zero age")
	require.False(t, pos.IsStale(1_299_999, threshold), "just under threshold")
	require.False(t, pos.IsStale(1_300_000, threshold), "age exactly at threshold is fresh")
	require.True(t, pos.IsStale(1_300_001, threshold), "one ms past threshold is stale")
	require.False(t, pos.IsStale(999_999, threshold), "clock behind last refresh")
}

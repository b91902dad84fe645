package types

import (
	"cosmossdk.io/math"

	"github.com/google/uuid"
)

// Position records one LP's stake in a pool. Positions are value objects
// with a unique identity and a single current owner; ownership transfer is
// an explicit first-class operation, not an ambient permission check.
// Positions never mutate pool state themselves.
type Position struct {
	Id     string
	PoolId uint64
	Owner  string

	// Liquidity is this position's share of the pool's TotalShares.
	Liquidity math.Int

	// Fee-debt snapshots: Liquidity * AccFeePerShare at last settlement,
	// scaled by FeePrecision. Pending fee = earned-to-date minus debt.
	FeeDebtA math.Int
	FeeDebtB math.Int

	// Entry-price baseline for impermanent-loss computation: cumulative
	// deposited amounts, shrunk proportionally on partial withdrawal and
	// grown by actual deposits on top-up (never rescaled on top-up).
	MinA math.Int
	MinB math.Int

	// Cached display snapshot. Explicitly NOT updated by swaps; only a
	// metadata refresh or a liquidity-mutating operation syncs it.
	CachedValueA         math.Int
	CachedValueB         math.Int
	CachedFeeA           math.Int
	CachedFeeB           math.Int
	CachedIlBps          uint64
	LastMetadataUpdateMs uint64
}

// NewPosition creates a position for a fresh deposit.
func NewPosition(poolID uint64, owner string, liquidity, depositA, depositB math.Int) *Position {
	return &Position{
		Id:           uuid.NewString(),
		PoolId:       poolID,
		Owner:        owner,
		Liquidity:    liquidity,
		FeeDebtA:     math.ZeroInt(),
		FeeDebtB:     math.ZeroInt(),
		MinA:         depositA,
		MinB:         depositB,
		CachedValueA: math.ZeroInt(),
		CachedValueB: math.ZeroInt(),
		CachedFeeA:   math.ZeroInt(),
		CachedFeeB:   math.ZeroInt(),
	}
}

// IsStale reports whether the cached metadata is older than the threshold.
// Age exactly equal to the threshold is not stale.
func (p *Position) IsStale(nowMs, thresholdMs uint64) bool {
	if nowMs <= p.LastMetadataUpdateMs {
		return false
	}
	return nowMs-p.LastMetadataUpdateMs > thresholdMs
}

package types

import (
	"cosmossdk.io/math"
)

// Params holds engine-level configuration shared by all pools.
// Per-pool fee tiers live on the Pool itself.
type Params struct {
	// MaxPools bounds the number of pools the engine will track
	MaxPools uint64

	// MinCompoundFees is the minimum combined pending fee amount required
	// before AutoCompoundFees will run. Prevents wasteful dust compounding.
	MinCompoundFees math.Int

	// StaleThresholdMs is the age after which cached position metadata is
	// reported stale. Age exactly equal to the threshold is NOT stale.
	StaleThresholdMs uint64
}

// DefaultParams returns a default set of parameters
func DefaultParams() Params {
	return Params{
		MaxPools:         10000,
		MinCompoundFees:  math.NewInt(1000),
		StaleThresholdMs: 300_000, // 5 minutes
	}
}

// Validate validates the set of params
func (p Params) Validate() error {
	if p.MaxPools == 0 {
		return ErrInvalidInput.Wrap("max pools must be positive")
	}
	if p.MinCompoundFees.IsNil() || p.MinCompoundFees.IsNegative() {
		return ErrInvalidInput.Wrap("min compound fees must be non-negative")
	}
	if p.StaleThresholdMs == 0 {
		return ErrInvalidInput.Wrap("stale threshold must be positive")
	}
	return nil
}

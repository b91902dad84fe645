package types

import (
	"cosmossdk.io/math"
)

// PoolKind selects the pricing curve for a pool.
type PoolKind int32

const (
	// PoolKindConstantProduct prices with x*y=k
	PoolKindConstantProduct PoolKind = 0
	// PoolKindStable prices with the amplified StableSwap invariant D
	PoolKindStable PoolKind = 1
)

func (k PoolKind) String() string {
	switch k {
	case PoolKindConstantProduct:
		return "constant_product"
	case PoolKindStable:
		return "stable"
	default:
		return "unknown"
	}
}

// Pool is the shared, mutable state of one liquidity pool. One instance
// exists per (ordered asset pair, fee tier, kind) combination. All fields
// are mutated only under the engine's per-pool lock; no operation may
// observe a partially updated pool.
type Pool struct {
	Id      uint64
	Kind    PoolKind
	TokenA  string
	TokenB  string
	Creator string

	// Tradable balances. Both strictly positive after any completed
	// operation except at construction with zero liquidity.
	ReserveA math.Int
	ReserveB math.Int

	// Sum of all outstanding LP shares, including the permanently burned
	// MinimumLiquidity from genesis.
	TotalShares math.Int

	// Fee configuration in basis points.
	// ProtocolFeeBps + CreatorFeeBps <= FeeBps, CreatorFeeBps <= MaxCreatorFeeBps.
	FeeBps         uint64
	ProtocolFeeBps uint64
	CreatorFeeBps  uint64

	// Amplification is the stable-swap curvature parameter. Zero for
	// constant-product pools.
	Amplification uint64

	// Monotonically non-decreasing accumulated-LP-fee-per-share counters,
	// scaled by FeePrecision. Fees collected on A-side inputs accrue to
	// AccFeePerShareA, B-side to AccFeePerShareB.
	AccFeePerShareA math.Int
	AccFeePerShareB math.Int

	// Fees collected but not yet withdrawn.
	ProtocolFeesA math.Int
	ProtocolFeesB math.Int
	CreatorFeesA  math.Int
	CreatorFeesB  math.Int
}

// NewPool returns a pool with zero reserves and accumulators. Fee config
// must already be validated.
func NewPool(id uint64, kind PoolKind, tokenA, tokenB, creator string, feeBps, protocolFeeBps, creatorFeeBps, amplification uint64) *Pool {
	return &Pool{
		Id:              id,
		Kind:            kind,
		TokenA:          tokenA,
		TokenB:          tokenB,
		Creator:         creator,
		ReserveA:        math.ZeroInt(),
		ReserveB:        math.ZeroInt(),
		TotalShares:     math.ZeroInt(),
		FeeBps:          feeBps,
		ProtocolFeeBps:  protocolFeeBps,
		CreatorFeeBps:   creatorFeeBps,
		Amplification:   amplification,
		AccFeePerShareA: math.ZeroInt(),
		AccFeePerShareB: math.ZeroInt(),
		ProtocolFeesA:   math.ZeroInt(),
		ProtocolFeesB:   math.ZeroInt(),
		CreatorFeesA:    math.ZeroInt(),
		CreatorFeesB:    math.ZeroInt(),
	}
}

// ValidateFeeConfig checks a fee tier combination at pool creation.
func ValidateFeeConfig(feeBps, protocolFeeBps, creatorFeeBps uint64) error {
	if feeBps > uint64(BpsDenominator) {
		return ErrInvalidFeeConfig.Wrapf("fee %d bps exceeds 100%%", feeBps)
	}
	if protocolFeeBps+creatorFeeBps > feeBps {
		return ErrInvalidFeeConfig.Wrapf(
			"protocol fee %d bps + creator fee %d bps exceeds total fee %d bps",
			protocolFeeBps, creatorFeeBps, feeBps,
		)
	}
	if creatorFeeBps > MaxCreatorFeeBps {
		return ErrInvalidFeeConfig.Wrapf("creator fee %d bps exceeds cap %d bps", creatorFeeBps, MaxCreatorFeeBps)
	}
	return nil
}

// Initialized reports whether the pool has received its genesis deposit.
func (p *Pool) Initialized() bool {
	return !p.TotalShares.IsZero()
}

// ValidateState checks internal consistency. A pool with shares must have
// strictly positive reserves on both sides and vice versa.
func (p *Pool) ValidateState() error {
	if p.ReserveA.IsNegative() || p.ReserveB.IsNegative() {
		return ErrInvalidPoolState.Wrap("negative reserve")
	}
	if p.TotalShares.IsNegative() {
		return ErrInvalidPoolState.Wrap("negative total shares")
	}
	hasReserves := !p.ReserveA.IsZero() || !p.ReserveB.IsZero()
	if p.TotalShares.IsZero() && hasReserves {
		return ErrInvalidPoolState.Wrap("pool has reserves but zero shares")
	}
	if !p.TotalShares.IsZero() && (p.ReserveA.IsZero() || p.ReserveB.IsZero()) {
		return ErrInvalidPoolState.Wrap("pool has shares but zero reserves")
	}
	if p.AccFeePerShareA.IsNegative() || p.AccFeePerShareB.IsNegative() {
		return ErrInvalidPoolState.Wrap("negative fee accumulator")
	}
	return nil
}

// SpotPrice returns the instantaneous price of token A in units of token B
// (reserveB / reserveA) as a decimal.
func (p *Pool) SpotPrice() (math.LegacyDec, error) {
	if p.ReserveA.IsZero() || p.ReserveB.IsZero() {
		return math.LegacyZeroDec(), ErrInsufficientLiquidity.Wrap("pool reserves must be positive")
	}
	return math.LegacyNewDecFromInt(p.ReserveB).Quo(math.LegacyNewDecFromInt(p.ReserveA)), nil
}

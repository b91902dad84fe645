package types

import (
	"fmt"

	"cosmossdk.io/math"
)

const (
	// ModuleName defines the module name and error codespace
	ModuleName = "amm"

	// MinimumLiquidity is permanently burned on pool genesis. The first
	// depositor never receives these shares, which makes manipulating the
	// initial share price economically irrational (Uniswap V2 pattern).
	MinimumLiquidity int64 = 1000

	// BpsDenominator is the basis point denominator (1 bps = 0.01%)
	BpsDenominator int64 = 10000

	// MaxCreatorFeeBps caps the creator fee at 5%
	MaxCreatorFeeBps uint64 = 500

	// MaxStableIterations bounds the Newton iterations in stable-swap solvers
	MaxStableIterations = 256

	// MinAmplification and MaxAmplification bound the stable-swap curvature
	MinAmplification uint64 = 1
	MaxAmplification uint64 = 1_000_000
)

var (
	// FeePrecision scales the per-share fee accumulators (1e12). Chosen so
	// per-share fractions stay representable without loss for realistic
	// reserve sizes.
	FeePrecision = math.NewInt(1_000_000_000_000)

	// PriceScale scales realized swap prices for price-limit checks (1e9)
	PriceScale = math.NewInt(1_000_000_000)
)

// PairKey builds the registry index key for a pool. Tokens must already be
// in lexicographic order.
func PairKey(tokenA, tokenB string, feeBps uint64, kind PoolKind) string {
	return fmt.Sprintf("%s/%s/%d/%d", tokenA, tokenB, feeBps, kind)
}

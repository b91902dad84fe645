package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/paw-chain/ammcore/x/amm/types"
)

// Overflow-safe arithmetic for the AMM engine. Every subtraction that could
// underflow is guarded explicitly: wraparound would let a pool spend
// reserves it does not have, so an unguarded subtraction is a correctness
// bug, not just a panic-avoidance nicety.

// maxInt256 bounds results to the math.Int range (< 2^256)
var maxInt256 = new(big.Int).Exp(big.NewInt(2), big.NewInt(256), nil)

// Isqrt computes the integer square root via Newton's method, seeded at
// y/2+1. Returns 0 for y=0 and 1 for y in {1,2,3}. Terminates in O(log y)
// iterations.
func Isqrt(y math.Int) math.Int {
	if y.IsNil() || y.IsZero() {
		return math.ZeroInt()
	}
	if y.LTE(math.NewInt(3)) {
		return math.OneInt()
	}
	z := y
	x := y.QuoRaw(2).AddRaw(1)
	for x.LT(z) {
		z = x
		x = y.Quo(x).Add(x).QuoRaw(2)
	}
	return z
}

// SafeMulDiv computes floor(a * b / c) with a wide intermediate so the
// product cannot overflow before the division. Fails on zero denominator.
func SafeMulDiv(a, b, c math.Int) (math.Int, error) {
	if c.IsZero() {
		return math.Int{}, types.ErrDivisionByZero.Wrap("mul-div denominator is zero")
	}

	intermediate := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if intermediate.CmpAbs(maxInt256) >= 0 {
		return math.Int{}, types.ErrOverflow.Wrapf("mul-div intermediate %s * %s out of range", a, b)
	}

	result := new(big.Int).Quo(intermediate, c.BigInt())
	return math.NewIntFromBigInt(result), nil
}

// CheckedSub subtracts b from a, failing instead of going negative.
func CheckedSub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, types.ErrUnderflow.Wrapf("cannot subtract %s from %s", b, a)
	}
	return a.Sub(b), nil
}

// BpsOf computes floor(amount * bps / 10000).
func BpsOf(amount math.Int, bps uint64) math.Int {
	// bps <= 10000 is validated at pool creation, so the intermediate
	// cannot leave the math.Int range for any in-range amount.
	return amount.MulRaw(int64(bps)).QuoRaw(types.BpsDenominator)
}

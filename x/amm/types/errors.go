package types

import (
	"cosmossdk.io/errors"
)

// AMM module sentinel errors. Every failure condition maps to exactly one
// registered error so automated callers can tell, e.g., "price moved against
// you" apart from "deadline passed" with errors.Is.
var (
	ErrInvalidFeeConfig             = errors.Register(ModuleName, 1, "invalid fee configuration")
	ErrInvalidInput                 = errors.Register(ModuleName, 2, "invalid input")
	ErrInvalidTokenPair             = errors.Register(ModuleName, 3, "invalid token pair")
	ErrPoolNotFound                 = errors.Register(ModuleName, 4, "pool not found")
	ErrPoolAlreadyExists            = errors.Register(ModuleName, 5, "pool already exists")
	ErrPositionNotFound             = errors.Register(ModuleName, 6, "position not found")
	ErrDeadlineExpired              = errors.Register(ModuleName, 7, "deadline expired")
	ErrSlippageExceeded             = errors.Register(ModuleName, 8, "slippage exceeded maximum")
	ErrPriceLimitExceeded           = errors.Register(ModuleName, 9, "price limit exceeded")
	ErrInsufficientLiquidity        = errors.Register(ModuleName, 10, "insufficient liquidity")
	ErrInsufficientInitialLiquidity = errors.Register(ModuleName, 11, "insufficient initial liquidity")
	ErrInsufficientFeesToCompound   = errors.Register(ModuleName, 12, "insufficient fees to compound")
	ErrDivisionByZero               = errors.Register(ModuleName, 13, "division by zero")
	ErrOverflow                     = errors.Register(ModuleName, 14, "arithmetic overflow")
	ErrUnderflow                    = errors.Register(ModuleName, 15, "arithmetic underflow")
	ErrInvalidPoolState             = errors.Register(ModuleName, 16, "invalid pool state")
	ErrInvariantViolation           = errors.Register(ModuleName, 17, "invariant violation")
	ErrUnauthorized                 = errors.Register(ModuleName, 18, "unauthorized")
)

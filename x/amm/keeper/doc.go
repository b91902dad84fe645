// Package keeper implements the AMM pool accounting engine.
//
// The engine owns all pool and position state in memory and exposes the
// full lifecycle: pool creation, liquidity provision, swaps, fee
// distribution, and position analytics.
//
// # Core Functionality
//
// Liquidity Pools: Constant-product (x * y = k) and amplified stable-swap
// pools with dual-token reserves. The genesis deposit permanently burns
// MinimumLiquidity shares; later deposits mint proportionally.
//
// Token Swaps: Fee-on-input pricing shared byte-for-byte between quotes and
// executed swaps, with deadline, slippage and realized-price-limit guards.
// Every swap asserts the curve invariant (K or D) did not decrease before
// committing.
//
// Fee Distribution: O(1) reward-debt accounting. Two per-pool accumulators
// plus one debt snapshot pair per position distribute LP fees to any number
// of providers without iterating them. Protocol and creator fee cuts accrue
// to withdrawable per-pool balances.
//
// Position Ledger: Positions are transferable value objects with a UUID
// identity, an entry-price baseline for impermanent-loss measurement, and a
// cached analytics snapshot that only moves on explicit refresh or
// liquidity mutation.
//
// # Concurrency
//
// The Keeper guards its maps with an RWMutex and every pool with its own
// mutex. Each public operation is one critical section over exactly one
// pool; distinct pools proceed fully concurrently. The lock order is pool
// entry before keeper maps.
//
// # Usage
//
// Creating a pool and seeding it:
//
//	pool, err := k.CreatePool(creator, types.PoolKindConstantProduct, "uatom", "upaw", 30, 5, 0, 0)
//	pos, refundA, refundB, err := k.AddLiquidity(pool.Id, owner, amountA, amountB, minShares, deadline)
//
// Swapping:
//
//	out, err := k.SwapAToB(pool.Id, trader, amountIn, minOut, nil, deadline)
package keeper

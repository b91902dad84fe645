package keeper

import (
	"sync"

	"cosmossdk.io/log"

	"github.com/paw-chain/ammcore/x/amm/types"
)

// poolEntry wraps a pool with its single-writer lock. Every public
// operation on a pool is one critical section under this mutex; distinct
// pools are fully independent and proceed concurrently.
type poolEntry struct {
	mu   sync.Mutex
	pool *types.Pool
}

// Keeper is the in-memory AMM engine. It owns all pool and position state
// and serializes mutations per pool. The registry role (unique pool IDs,
// rejection of duplicate pair/fee-tier/kind combinations) is folded in.
type Keeper struct {
	mu        sync.RWMutex
	pools     map[uint64]*poolEntry
	pairIndex map[string]uint64
	positions map[string]*types.Position
	nextID    uint64

	params  types.Params
	clock   types.Clock
	logger  log.Logger
	metrics *Metrics
}

// Option configures a Keeper.
type Option func(*Keeper)

// WithMetrics attaches Prometheus metrics to the keeper.
func WithMetrics(m *Metrics) Option {
	return func(k *Keeper) { k.metrics = m }
}

// NewKeeper creates an engine with no pools.
func NewKeeper(clock types.Clock, logger log.Logger, params types.Params, opts ...Option) *Keeper {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	k := &Keeper{
		pools:     make(map[uint64]*poolEntry),
		pairIndex: make(map[string]uint64),
		positions: make(map[string]*types.Position),
		nextID:    1,
		params:    params,
		clock:     clock,
		logger:    logger.With("module", types.ModuleName),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// GetParams returns the engine parameters.
func (k *Keeper) GetParams() types.Params {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.params
}

// SetParams replaces the engine parameters.
func (k *Keeper) SetParams(params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.params = params
	return nil
}

// getPoolEntry fetches a pool entry without locking it. Callers lock
// entry.mu before touching the pool.
func (k *Keeper) getPoolEntry(poolID uint64) (*poolEntry, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	entry, ok := k.pools[poolID]
	if !ok {
		return nil, types.ErrPoolNotFound.Wrapf("pool %d not found", poolID)
	}
	return entry, nil
}

// getPosition fetches a position by ID.
func (k *Keeper) getPosition(positionID string) (*types.Position, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	pos, ok := k.positions[positionID]
	if !ok {
		return nil, types.ErrPositionNotFound.Wrapf("position %s not found", positionID)
	}
	return pos, nil
}

// registerPosition adds a position to the ledger.
func (k *Keeper) registerPosition(pos *types.Position) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.positions[pos.Id] = pos
}

// destroyPosition removes a fully withdrawn position from the ledger.
func (k *Keeper) destroyPosition(positionID string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.positions, positionID)
}

// checkDeadline fails with ErrDeadlineExpired if the injected clock has
// passed the caller's deadline. There is no blocking wait: a call either
// proceeds or fails immediately.
func (k *Keeper) checkDeadline(deadlineMs uint64) error {
	now := k.clock.NowMs()
	if now > deadlineMs {
		return types.ErrDeadlineExpired.Wrapf("now %d ms > deadline %d ms", now, deadlineMs)
	}
	return nil
}

// TotalPools returns the number of pools tracked by the engine.
func (k *Keeper) TotalPools() uint64 {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return uint64(len(k.pools))
}

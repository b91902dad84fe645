package types

import "time"

// Clock supplies the current timestamp for deadline and staleness checks.
// All time comparisons in the engine go through this single source so hosts
// can inject their own notion of time.
type Clock interface {
	NowMs() uint64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) NowMs() uint64 {
	return uint64(time.Now().UnixMilli())
}

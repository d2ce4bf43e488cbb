// Package height abstracts the hosting ledger's block-height clock.
// Record timestamps (created-at, completed-at) are ledger heights, not
// wall-clock times.
package height

import (
	"context"
	"sync/atomic"
	"time"
)

// Source supplies the current ledger height. Heights are monotonically
// non-decreasing across calls.
type Source interface {
	Current(ctx context.Context) (uint64, error)
}

// Local is a process-local Source standing in for the hosting ledger.
// Each call observes a strictly increasing height, mimicking block
// progression between operations.
type Local struct {
	n atomic.Uint64
}

// NewLocal creates a Local seeded at start.
func NewLocal(start uint64) *Local {
	l := &Local{}
	l.n.Store(start)
	return l
}

// NewLocalFromClock creates a Local seeded from the wall clock, so heights
// stay monotonic across process restarts.
func NewLocalFromClock() *Local {
	return NewLocal(uint64(time.Now().Unix()))
}

// Current returns the next height.
func (l *Local) Current(ctx context.Context) (uint64, error) {
	return l.n.Add(1), nil
}

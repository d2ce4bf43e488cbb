// Package treasury abstracts the hosting ledger's value-transfer primitive.
// The marketplace never moves real funds itself; it asks the treasury to
// collect from or pay out to an account's external holding and records the
// returned transfer reference.
package treasury

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Transferer moves value between an account's external holding and the
// marketplace. Both methods return an opaque transfer reference on success.
type Transferer interface {
	// Collect pulls amount from the account's external holding.
	Collect(ctx context.Context, account string, amount uint64) (string, error)
	// Payout pushes amount back to the account's external holding.
	Payout(ctx context.Context, account string, amount uint64) (string, error)
}

// ErrTransferRejected is returned by Local when a transfer is refused.
var ErrTransferRejected = errors.New("transfer rejected")

// Movement records a transfer executed by Local.
type Movement struct {
	Ref     string
	Account string
	Amount  uint64
	Inbound bool
}

// Local is an in-process Transferer for development and tests. It approves
// every transfer unless a rejection is armed, and mints a uuid reference
// per movement.
type Local struct {
	mu        sync.Mutex
	movements []Movement

	// RejectNext makes the next transfer fail with ErrTransferRejected.
	RejectNext bool
}

// NewLocal creates an empty Local treasury.
func NewLocal() *Local {
	return &Local{}
}

func (l *Local) Collect(ctx context.Context, account string, amount uint64) (string, error) {
	return l.record(account, amount, true)
}

func (l *Local) Payout(ctx context.Context, account string, amount uint64) (string, error) {
	return l.record(account, amount, false)
}

// Movements returns a copy of all executed transfers.
func (l *Local) Movements() []Movement {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Movement, len(l.movements))
	copy(out, l.movements)
	return out
}

func (l *Local) record(account string, amount uint64, inbound bool) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.RejectNext {
		l.RejectNext = false
		return "", ErrTransferRejected
	}

	m := Movement{
		Ref:     uuid.NewString(),
		Account: account,
		Amount:  amount,
		Inbound: inbound,
	}
	l.movements = append(l.movements, m)
	return m.Ref, nil
}

package balance

import (
	"context"

	"github.com/averine/datamart/internal/domain/audit"
)

// PlatformAccount accrues platform fees deducted on escrow release.
const PlatformAccount = "platform"

// Repository provides persistence for internal balances.
type Repository interface {
	// Get returns the account balance, zero for unknown accounts.
	Get(ctx context.Context, account string) (uint64, error)
	// Add credits the account, creating the row if absent.
	Add(ctx context.Context, account string, amount uint64) error
	// Subtract debits the account; the store rejects any debit that
	// would take the balance negative.
	Subtract(ctx context.Context, account string, amount uint64) error
}

// AuditRepository appends audit entries for balance operations.
type AuditRepository interface {
	Append(ctx context.Context, entry *audit.Entry) error
}

// Store is the transactional view used by the balance service.
type Store interface {
	Balances() Repository
	Audit() AuditRepository

	// RunInTx executes fn against a Store bound to a single transaction.
	RunInTx(ctx context.Context, fn func(Store) error) error
}

package dataset

import (
	"context"

	"github.com/averine/datamart/internal/domain/audit"
)

// Repository provides persistence for datasets.
type Repository interface {
	// Create inserts the dataset and assigns the next sequential id.
	Create(ctx context.Context, ds *Dataset) error
	Get(ctx context.Context, id uint64) (*Dataset, error)
	Update(ctx context.Context, ds *Dataset) error
	IncrementAccessCount(ctx context.Context, id uint64) error
	List(ctx context.Context, opts ListOptions) ([]Dataset, error)
}

// AuditRepository appends audit entries for dataset operations.
type AuditRepository interface {
	Append(ctx context.Context, entry *audit.Entry) error
}

// Store is the transactional view used by the dataset service.
type Store interface {
	Datasets() Repository
	Audit() AuditRepository

	// RunInTx executes fn against a Store bound to a single transaction.
	RunInTx(ctx context.Context, fn func(Store) error) error
}

package job

import (
	"context"

	"github.com/averine/datamart/internal/domain/audit"
	"github.com/averine/datamart/internal/domain/dataset"
)

// Repository provides persistence for training jobs.
type Repository interface {
	// Create inserts the job with its ordered dataset references and
	// assigns the next sequential id.
	Create(ctx context.Context, j *TrainingJob) error
	Get(ctx context.Context, id uint64) (*TrainingJob, error)
	Update(ctx context.Context, j *TrainingJob) error
	List(ctx context.Context, opts ListOptions) ([]TrainingJob, error)
}

// DatasetRepository provides the dataset lookups the job ledger needs.
type DatasetRepository interface {
	Get(ctx context.Context, id uint64) (*dataset.Dataset, error)
	IncrementAccessCount(ctx context.Context, id uint64) error
}

// BalanceRepository moves escrow funds for job transitions.
type BalanceRepository interface {
	Get(ctx context.Context, account string) (uint64, error)
	Add(ctx context.Context, account string, amount uint64) error
	Subtract(ctx context.Context, account string, amount uint64) error
}

// AuditRepository appends audit entries for job operations.
type AuditRepository interface {
	Append(ctx context.Context, entry *audit.Entry) error
}

// Store is the transactional view used by the job service.
type Store interface {
	Jobs() Repository
	Datasets() DatasetRepository
	Balances() BalanceRepository
	Audit() AuditRepository

	// RunInTx executes fn against a Store bound to a single transaction.
	RunInTx(ctx context.Context, fn func(Store) error) error
}

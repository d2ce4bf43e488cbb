package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/averine/datamart/internal/domain/balance"
	"github.com/averine/datamart/internal/domain/dataset"
	"github.com/averine/datamart/internal/domain/job"
)

// querier is the subset of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// runInTx executes fn inside a single transaction, rolling back on error.
// If q is already a transaction the function runs on it directly, so
// nested RunInTx calls share one commit.
func runInTx(ctx context.Context, db *DB, q querier, fn func(tx querier) error) error {
	if _, ok := q.(*sql.Tx); ok {
		return fn(q)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DatasetStore implements dataset.Store for SQLite.
type DatasetStore struct {
	db *DB
	q  querier
}

// NewDatasetStore creates a dataset store over the database.
func NewDatasetStore(db *DB) *DatasetStore {
	return &DatasetStore{db: db, q: db.DB}
}

func (s *DatasetStore) Datasets() dataset.Repository {
	return NewDatasetRepository(s.q)
}

func (s *DatasetStore) Audit() dataset.AuditRepository {
	return NewAuditRepository(s.q)
}

func (s *DatasetStore) RunInTx(ctx context.Context, fn func(dataset.Store) error) error {
	return runInTx(ctx, s.db, s.q, func(tx querier) error {
		return fn(&DatasetStore{db: s.db, q: tx})
	})
}

// JobStore implements job.Store for SQLite.
type JobStore struct {
	db *DB
	q  querier
}

// NewJobStore creates a job store over the database.
func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db, q: db.DB}
}

func (s *JobStore) Jobs() job.Repository {
	return NewJobRepository(s.q)
}

func (s *JobStore) Datasets() job.DatasetRepository {
	return NewDatasetRepository(s.q)
}

func (s *JobStore) Balances() job.BalanceRepository {
	return NewBalanceRepository(s.q)
}

func (s *JobStore) Audit() job.AuditRepository {
	return NewAuditRepository(s.q)
}

func (s *JobStore) RunInTx(ctx context.Context, fn func(job.Store) error) error {
	return runInTx(ctx, s.db, s.q, func(tx querier) error {
		return fn(&JobStore{db: s.db, q: tx})
	})
}

// BalanceStore implements balance.Store for SQLite.
type BalanceStore struct {
	db *DB
	q  querier
}

// NewBalanceStore creates a balance store over the database.
func NewBalanceStore(db *DB) *BalanceStore {
	return &BalanceStore{db: db, q: db.DB}
}

func (s *BalanceStore) Balances() balance.Repository {
	return NewBalanceRepository(s.q)
}

func (s *BalanceStore) Audit() balance.AuditRepository {
	return NewAuditRepository(s.q)
}

func (s *BalanceStore) RunInTx(ctx context.Context, fn func(balance.Store) error) error {
	return runInTx(ctx, s.db, s.q, func(tx querier) error {
		return fn(&BalanceStore{db: s.db, q: tx})
	})
}

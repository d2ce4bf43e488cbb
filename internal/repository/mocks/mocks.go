package mocks

import (
	"context"

	"github.com/averine/datamart/internal/domain/audit"
	"github.com/averine/datamart/internal/domain/balance"
	"github.com/averine/datamart/internal/domain/dataset"
	"github.com/averine/datamart/internal/domain/job"
	"github.com/stretchr/testify/mock"
)

// DatasetRepository is a mock for dataset.Repository.
type DatasetRepository struct {
	mock.Mock
}

func (m *DatasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	args := m.Called(ctx, ds)
	return args.Error(0)
}

func (m *DatasetRepository) Get(ctx context.Context, id uint64) (*dataset.Dataset, error) {
	args := m.Called(ctx, id)
	if ds, ok := args.Get(0).(*dataset.Dataset); ok {
		return ds, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DatasetRepository) Update(ctx context.Context, ds *dataset.Dataset) error {
	args := m.Called(ctx, ds)
	return args.Error(0)
}

func (m *DatasetRepository) IncrementAccessCount(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DatasetRepository) List(ctx context.Context, opts dataset.ListOptions) ([]dataset.Dataset, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]dataset.Dataset); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// JobRepository is a mock for job.Repository.
type JobRepository struct {
	mock.Mock
}

func (m *JobRepository) Create(ctx context.Context, j *job.TrainingJob) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *JobRepository) Get(ctx context.Context, id uint64) (*job.TrainingJob, error) {
	args := m.Called(ctx, id)
	if j, ok := args.Get(0).(*job.TrainingJob); ok {
		return j, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *JobRepository) Update(ctx context.Context, j *job.TrainingJob) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *JobRepository) List(ctx context.Context, opts job.ListOptions) ([]job.TrainingJob, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]job.TrainingJob); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// BalanceRepository is a mock for balance.Repository.
type BalanceRepository struct {
	mock.Mock
}

func (m *BalanceRepository) Get(ctx context.Context, account string) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *BalanceRepository) Add(ctx context.Context, account string, amount uint64) error {
	args := m.Called(ctx, account, amount)
	return args.Error(0)
}

func (m *BalanceRepository) Subtract(ctx context.Context, account string, amount uint64) error {
	args := m.Called(ctx, account, amount)
	return args.Error(0)
}

// AuditRepository is a mock for audit.Repository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, opts audit.ListOptions) ([]audit.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]audit.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Transferer is a mock for treasury.Transferer.
type Transferer struct {
	mock.Mock
}

func (m *Transferer) Collect(ctx context.Context, account string, amount uint64) (string, error) {
	args := m.Called(ctx, account, amount)
	return args.String(0), args.Error(1)
}

func (m *Transferer) Payout(ctx context.Context, account string, amount uint64) (string, error) {
	args := m.Called(ctx, account, amount)
	return args.String(0), args.Error(1)
}

// DatasetStore is a passthrough dataset.Store over mock repositories;
// RunInTx invokes fn directly with no transaction.
type DatasetStore struct {
	DatasetsRepo *DatasetRepository
	AuditRepo    *AuditRepository
}

func NewDatasetStore() *DatasetStore {
	return &DatasetStore{
		DatasetsRepo: &DatasetRepository{},
		AuditRepo:    &AuditRepository{},
	}
}

func (s *DatasetStore) Datasets() dataset.Repository   { return s.DatasetsRepo }
func (s *DatasetStore) Audit() dataset.AuditRepository { return s.AuditRepo }
func (s *DatasetStore) RunInTx(ctx context.Context, fn func(dataset.Store) error) error {
	return fn(s)
}

// JobStore is a passthrough job.Store over mock repositories.
type JobStore struct {
	JobsRepo     *JobRepository
	DatasetsRepo *DatasetRepository
	BalancesRepo *BalanceRepository
	AuditRepo    *AuditRepository
}

func NewJobStore() *JobStore {
	return &JobStore{
		JobsRepo:     &JobRepository{},
		DatasetsRepo: &DatasetRepository{},
		BalancesRepo: &BalanceRepository{},
		AuditRepo:    &AuditRepository{},
	}
}

func (s *JobStore) Jobs() job.Repository            { return s.JobsRepo }
func (s *JobStore) Datasets() job.DatasetRepository { return s.DatasetsRepo }
func (s *JobStore) Balances() job.BalanceRepository { return s.BalancesRepo }
func (s *JobStore) Audit() job.AuditRepository      { return s.AuditRepo }
func (s *JobStore) RunInTx(ctx context.Context, fn func(job.Store) error) error {
	return fn(s)
}

// BalanceStore is a passthrough balance.Store over mock repositories.
type BalanceStore struct {
	BalancesRepo *BalanceRepository
	AuditRepo    *AuditRepository
}

func NewBalanceStore() *BalanceStore {
	return &BalanceStore{
		BalancesRepo: &BalanceRepository{},
		AuditRepo:    &AuditRepository{},
	}
}

func (s *BalanceStore) Balances() balance.Repository   { return s.BalancesRepo }
func (s *BalanceStore) Audit() balance.AuditRepository { return s.AuditRepo }
func (s *BalanceStore) RunInTx(ctx context.Context, fn func(balance.Store) error) error {
	return fn(s)
}

package integration_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/averine/datamart/internal/domain/audit"
	"github.com/averine/datamart/internal/domain/balance"
	"github.com/averine/datamart/internal/domain/dataset"
	"github.com/averine/datamart/internal/domain/job"
	"github.com/averine/datamart/internal/height"
	"github.com/averine/datamart/internal/sqlite"
	"github.com/averine/datamart/internal/treasury"
	"github.com/averine/datamart/internal/validation"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db       *sqlite.DB
	treasury *treasury.Local

	datasetSvc *dataset.Service
	jobSvc     *job.Service
	balanceSvc *balance.Service
	auditSvc   *audit.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	heights := height.NewLocal(0)
	validate := validation.New()
	transfer := treasury.NewLocal()

	return &testEnv{
		db:         db,
		treasury:   transfer,
		datasetSvc: dataset.NewService(sqlite.NewDatasetStore(db), heights, validate, nil, nil),
		jobSvc:     job.NewService(sqlite.NewJobStore(db), heights, validate, nil, nil),
		balanceSvc: balance.NewService(sqlite.NewBalanceStore(db), transfer, heights, nil, nil),
		auditSvc:   audit.NewService(sqlite.NewAuditRepository(db.DB), nil),
	}
}

func TestIntegration_MarketplaceWorkflow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	ds, err := env.datasetSvc.Register(ctx, "alice", dataset.RegisterRequest{
		Name:        "climate readings",
		MetadataURL: "https://example.org/meta.json",
		Category:    "weather",
		PricePerUse: 20,
	})
	require.NoError(t, err)
	require.True(t, ds.Active)

	require.NoError(t, env.balanceSvc.Deposit(ctx, "carol", 100))

	j, err := env.jobSvc.Create(ctx, "carol", job.CreateRequest{
		Name:       "train classifier",
		DatasetIDs: []uint64{ds.ID},
	})
	require.NoError(t, err)
	require.Equal(t, job.StatusPending, j.Status)
	require.Equal(t, uint64(20), j.TotalCost)

	got, err := env.balanceSvc.Get(ctx, "carol")
	require.NoError(t, err)
	require.Equal(t, uint64(80), got)

	j, err = env.jobSvc.Accept(ctx, "pat", j.ID)
	require.NoError(t, err)
	require.Equal(t, job.StatusProcessing, j.Status)

	j, err = env.jobSvc.Complete(ctx, "pat", j.ID, "https://example.org/model.bin")
	require.NoError(t, err)
	require.Equal(t, job.StatusCompleted, j.Status)
	require.NotNil(t, j.CompletedAt)

	// Fee on 20 rounds down to 0, so the owner receives the full price.
	ownerBalance, err := env.balanceSvc.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(20), ownerBalance)

	ds, err = env.datasetSvc.Get(ctx, ds.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(1), ds.AccessCount)

	// Completion is terminal.
	_, err = env.jobSvc.Complete(ctx, "pat", j.ID, "https://example.org/model.bin")
	require.ErrorIs(t, err, job.ErrInvalidStatus)

	entries, err := env.auditSvc.Recent(ctx, audit.ListOptions{JobID: &j.ID})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, audit.TypeJobCompleted, entries[0].EventType)
	require.Equal(t, audit.TypeJobCreated, entries[2].EventType)
}

func TestIntegration_EscrowFeeSplit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	ds, err := env.datasetSvc.Register(ctx, "alice", dataset.RegisterRequest{
		Name:        "labelled images",
		PricePerUse: 100,
	})
	require.NoError(t, err)

	require.NoError(t, env.balanceSvc.Deposit(ctx, "carol", 100))
	j, err := env.jobSvc.Create(ctx, "carol", job.CreateRequest{
		Name:       "train detector",
		DatasetIDs: []uint64{ds.ID},
	})
	require.NoError(t, err)
	_, err = env.jobSvc.Accept(ctx, "pat", j.ID)
	require.NoError(t, err)
	_, err = env.jobSvc.Complete(ctx, "pat", j.ID, "https://example.org/model.bin")
	require.NoError(t, err)

	ownerBalance, err := env.balanceSvc.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(97), ownerBalance)

	platformBalance, err := env.balanceSvc.Get(ctx, balance.PlatformAccount)
	require.NoError(t, err)
	require.Equal(t, uint64(3), platformBalance)

	creatorBalance, err := env.balanceSvc.Get(ctx, "carol")
	require.NoError(t, err)
	require.Zero(t, creatorBalance)
}

func TestIntegration_DuplicateReferencesChargedPerOccurrence(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	ds, err := env.datasetSvc.Register(ctx, "alice", dataset.RegisterRequest{
		Name:        "sensor traces",
		PricePerUse: 20,
	})
	require.NoError(t, err)

	require.NoError(t, env.balanceSvc.Deposit(ctx, "carol", 100))
	j, err := env.jobSvc.Create(ctx, "carol", job.CreateRequest{
		Name:       "two epochs",
		DatasetIDs: []uint64{ds.ID, ds.ID},
	})
	require.NoError(t, err)
	require.Equal(t, uint64(40), j.TotalCost)

	_, err = env.jobSvc.Accept(ctx, "pat", j.ID)
	require.NoError(t, err)
	_, err = env.jobSvc.Complete(ctx, "pat", j.ID, "https://example.org/model.bin")
	require.NoError(t, err)

	ds, err = env.datasetSvc.Get(ctx, ds.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(2), ds.AccessCount)

	ownerBalance, err := env.balanceSvc.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(40), ownerBalance)
}

func TestIntegration_CancelRefundsEscrow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	ds, err := env.datasetSvc.Register(ctx, "alice", dataset.RegisterRequest{
		Name:        "transit logs",
		PricePerUse: 30,
	})
	require.NoError(t, err)

	require.NoError(t, env.balanceSvc.Deposit(ctx, "carol", 50))
	j, err := env.jobSvc.Create(ctx, "carol", job.CreateRequest{
		Name:       "aborted run",
		DatasetIDs: []uint64{ds.ID},
	})
	require.NoError(t, err)

	got, err := env.balanceSvc.Get(ctx, "carol")
	require.NoError(t, err)
	require.Equal(t, uint64(20), got)

	j, err = env.jobSvc.Cancel(ctx, "carol", j.ID)
	require.NoError(t, err)
	require.Equal(t, job.StatusFailed, j.Status)

	got, err = env.balanceSvc.Get(ctx, "carol")
	require.NoError(t, err)
	require.Equal(t, uint64(50), got)

	// A cancelled job never touches the dataset.
	ds, err = env.datasetSvc.Get(ctx, ds.ID)
	require.NoError(t, err)
	require.Zero(t, ds.AccessCount)

	_, err = env.jobSvc.Accept(ctx, "pat", j.ID)
	require.ErrorIs(t, err, job.ErrInvalidStatus)
}

func TestIntegration_PriceSnapshotAtCreation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	ds, err := env.datasetSvc.Register(ctx, "alice", dataset.RegisterRequest{
		Name:        "tick data",
		PricePerUse: 50,
	})
	require.NoError(t, err)

	require.NoError(t, env.balanceSvc.Deposit(ctx, "carol", 50))
	j, err := env.jobSvc.Create(ctx, "carol", job.CreateRequest{
		Name:       "backtest",
		DatasetIDs: []uint64{ds.ID},
	})
	require.NoError(t, err)

	// A price change after creation must not change what the escrow pays
	// out; the job carries the price it was charged at.
	_, err = env.datasetSvc.Update(ctx, "alice", ds.ID, dataset.UpdateRequest{
		Name:        "tick data",
		PricePerUse: 10,
		Active:      true,
	})
	require.NoError(t, err)

	_, err = env.jobSvc.Accept(ctx, "pat", j.ID)
	require.NoError(t, err)
	_, err = env.jobSvc.Complete(ctx, "pat", j.ID, "https://example.org/model.bin")
	require.NoError(t, err)

	ownerBalance, err := env.balanceSvc.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(49), ownerBalance)

	platformBalance, err := env.balanceSvc.Get(ctx, balance.PlatformAccount)
	require.NoError(t, err)
	require.Equal(t, uint64(1), platformBalance)
}

func TestIntegration_InactiveDatasetBlocksCreation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	ds, err := env.datasetSvc.Register(ctx, "alice", dataset.RegisterRequest{
		Name:        "retired corpus",
		PricePerUse: 10,
	})
	require.NoError(t, err)
	_, err = env.datasetSvc.Update(ctx, "alice", ds.ID, dataset.UpdateRequest{
		Name:   "retired corpus",
		Active: false,
	})
	require.NoError(t, err)

	require.NoError(t, env.balanceSvc.Deposit(ctx, "carol", 100))
	_, err = env.jobSvc.Create(ctx, "carol", job.CreateRequest{
		Name:       "stale run",
		DatasetIDs: []uint64{ds.ID},
	})
	require.ErrorIs(t, err, job.ErrDatasetNotFound)

	// Nothing was escrowed.
	got, err := env.balanceSvc.Get(ctx, "carol")
	require.NoError(t, err)
	require.Equal(t, uint64(100), got)
}

func TestIntegration_DepositWithdraw(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.balanceSvc.Deposit(ctx, "alice", 100))
	require.NoError(t, env.balanceSvc.Withdraw(ctx, "alice", 60))

	got, err := env.balanceSvc.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(40), got)

	require.ErrorIs(t, env.balanceSvc.Withdraw(ctx, "alice", 41), balance.ErrInsufficientFunds)

	// A rejected payout leaves the balance untouched.
	env.treasury.RejectNext = true
	require.ErrorIs(t, env.balanceSvc.Withdraw(ctx, "alice", 40), balance.ErrPaymentFailed)
	got, err = env.balanceSvc.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(40), got)

	moves := env.treasury.Movements()
	require.Len(t, moves, 2)
	require.True(t, moves[0].Inbound)
	require.False(t, moves[1].Inbound)
}

func TestIntegration_InsufficientFundsBlocksJob(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	ds, err := env.datasetSvc.Register(ctx, "alice", dataset.RegisterRequest{
		Name:        "premium corpus",
		PricePerUse: 500,
	})
	require.NoError(t, err)

	require.NoError(t, env.balanceSvc.Deposit(ctx, "carol", 100))
	_, err = env.jobSvc.Create(ctx, "carol", job.CreateRequest{
		Name:       "too expensive",
		DatasetIDs: []uint64{ds.ID},
	})
	require.ErrorIs(t, err, balance.ErrInsufficientFunds)

	got, err := env.balanceSvc.Get(ctx, "carol")
	require.NoError(t, err)
	require.Equal(t, uint64(100), got)
}

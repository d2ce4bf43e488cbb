package balance_test

import (
	"context"
	"testing"

	"github.com/averine/datamart/internal/domain/balance"
	"github.com/averine/datamart/internal/height"
	"github.com/averine/datamart/internal/repository/mocks"
	"github.com/averine/datamart/internal/treasury"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(store balance.Store, transfer treasury.Transferer) *balance.Service {
	return balance.NewService(store, transfer, height.NewLocal(0), nil, nil)
}

func TestDepositCollectsThenCredits(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewBalanceStore()
	transfer := &mocks.Transferer{}
	transfer.On("Collect", mock.Anything, "alice", uint64(100)).Return("ref-1", nil)
	store.BalancesRepo.On("Add", mock.Anything, "alice", uint64(100)).Return(nil)
	store.AuditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := newService(store, transfer)
	require.NoError(t, svc.Deposit(ctx, "alice", 100))
	transfer.AssertExpectations(t)
	store.BalancesRepo.AssertExpectations(t)
}

func TestDepositRejectedCollect(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewBalanceStore()
	transfer := &mocks.Transferer{}
	transfer.On("Collect", mock.Anything, "alice", uint64(100)).
		Return("", treasury.ErrTransferRejected)

	svc := newService(store, transfer)
	require.ErrorIs(t, svc.Deposit(ctx, "alice", 100), balance.ErrPaymentFailed)
	store.BalancesRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestDepositZeroAmount(t *testing.T) {
	svc := newService(mocks.NewBalanceStore(), &mocks.Transferer{})
	require.ErrorIs(t, svc.Deposit(context.Background(), "alice", 0), balance.ErrInvalidAmount)
}

func TestWithdrawDebitsThenPaysOut(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewBalanceStore()
	transfer := &mocks.Transferer{}
	store.BalancesRepo.On("Get", mock.Anything, "alice").Return(uint64(150), nil)
	store.BalancesRepo.On("Subtract", mock.Anything, "alice", uint64(60)).Return(nil)
	transfer.On("Payout", mock.Anything, "alice", uint64(60)).Return("ref-2", nil)
	store.AuditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := newService(store, transfer)
	require.NoError(t, svc.Withdraw(ctx, "alice", 60))
	transfer.AssertExpectations(t)
	store.BalancesRepo.AssertExpectations(t)
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewBalanceStore()
	transfer := &mocks.Transferer{}
	store.BalancesRepo.On("Get", mock.Anything, "alice").Return(uint64(59), nil)

	svc := newService(store, transfer)
	require.ErrorIs(t, svc.Withdraw(ctx, "alice", 60), balance.ErrInsufficientFunds)
	store.BalancesRepo.AssertNotCalled(t, "Subtract", mock.Anything, mock.Anything, mock.Anything)
	transfer.AssertNotCalled(t, "Payout", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawRejectedPayoutAbortsDebit(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewBalanceStore()
	transfer := &mocks.Transferer{}
	store.BalancesRepo.On("Get", mock.Anything, "alice").Return(uint64(150), nil)
	store.BalancesRepo.On("Subtract", mock.Anything, "alice", uint64(60)).Return(nil)
	transfer.On("Payout", mock.Anything, "alice", uint64(60)).
		Return("", treasury.ErrTransferRejected)

	svc := newService(store, transfer)
	require.ErrorIs(t, svc.Withdraw(ctx, "alice", 60), balance.ErrPaymentFailed)
	// The erroring fn propagates through RunInTx, so the real store rolls
	// the debit back. sqlite store tests cover the rollback itself.
	store.AuditRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestGetUnknownAccountIsZero(t *testing.T) {
	store := mocks.NewBalanceStore()
	store.BalancesRepo.On("Get", mock.Anything, "nobody").Return(uint64(0), nil)

	svc := newService(store, &mocks.Transferer{})
	amount, err := svc.Get(context.Background(), "nobody")
	require.NoError(t, err)
	require.Zero(t, amount)
}

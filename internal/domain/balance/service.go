package balance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/averine/datamart/internal/domain/audit"
	"github.com/averine/datamart/internal/height"
	"github.com/averine/datamart/internal/metrics"
	"github.com/averine/datamart/internal/treasury"
)

// Service handles deposits, withdrawals and balance lookups. Job escrow
// debits and credits go through the job service, not here.
type Service struct {
	store    Store
	transfer treasury.Transferer
	heights  height.Source
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService creates a new balance service.
func NewService(
	store Store,
	transfer treasury.Transferer,
	heights height.Source,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:    store,
		transfer: transfer,
		heights:  heights,
		metrics:  m,
		logger:   logger,
	}
}

// Get returns the internal balance for an account, zero if unknown.
func (s *Service) Get(ctx context.Context, account string) (uint64, error) {
	amount, err := s.store.Balances().Get(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("getting balance: %w", err)
	}
	return amount, nil
}

// Deposit collects amount from the caller's external holding and credits
// the internal balance.
func (s *Service) Deposit(ctx context.Context, caller string, amount uint64) error {
	if caller == "" || amount == 0 {
		return ErrInvalidAmount
	}

	ref, err := s.transfer.Collect(ctx, caller, amount)
	if err != nil {
		s.metrics.ObserveOp("balance.deposit", err)
		return ErrPaymentFailed
	}

	h, err := s.heights.Current(ctx)
	if err != nil {
		return fmt.Errorf("reading height: %w", err)
	}

	err = s.store.RunInTx(ctx, func(st Store) error {
		if err := st.Balances().Add(ctx, caller, amount); err != nil {
			return fmt.Errorf("crediting balance: %w", err)
		}
		return st.Audit().Append(ctx, &audit.Entry{
			Account:   caller,
			EventType: audit.TypeFundsDeposited,
			Summary:   fmt.Sprintf("deposited %d units", amount),
			Details:   fmt.Sprintf(`{"transfer_ref":%q}`, ref),
			Height:    h,
		})
	})
	s.metrics.ObserveOp("balance.deposit", err)
	return err
}

// Withdraw debits the internal balance and pays amount back to the caller's
// external holding. A rejected payout rolls the debit back.
func (s *Service) Withdraw(ctx context.Context, caller string, amount uint64) error {
	if caller == "" || amount == 0 {
		return ErrInvalidAmount
	}

	h, err := s.heights.Current(ctx)
	if err != nil {
		return fmt.Errorf("reading height: %w", err)
	}

	err = s.store.RunInTx(ctx, func(st Store) error {
		current, err := st.Balances().Get(ctx, caller)
		if err != nil {
			return fmt.Errorf("getting balance: %w", err)
		}
		if current < amount {
			return ErrInsufficientFunds
		}
		if err := st.Balances().Subtract(ctx, caller, amount); err != nil {
			return fmt.Errorf("debiting balance: %w", err)
		}

		// The payout runs inside the transaction window so a rejection
		// aborts the debit with it.
		ref, err := s.transfer.Payout(ctx, caller, amount)
		if err != nil {
			return ErrPaymentFailed
		}

		return st.Audit().Append(ctx, &audit.Entry{
			Account:   caller,
			EventType: audit.TypeFundsWithdrawn,
			Summary:   fmt.Sprintf("withdrew %d units", amount),
			Details:   fmt.Sprintf(`{"transfer_ref":%q}`, ref),
			Height:    h,
		})
	})
	s.metrics.ObserveOp("balance.withdraw", err)
	return err
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/averine/datamart/internal/repository"
)

// BalanceRepository implements internal balance persistence for SQLite
type BalanceRepository struct {
	q querier
}

// NewBalanceRepository creates a new BalanceRepository. The querier may be
// a *DB or a transaction.
func NewBalanceRepository(q querier) *BalanceRepository {
	return &BalanceRepository{q: q}
}

// Get returns the balance for an account, zero if the account has no row.
func (r *BalanceRepository) Get(ctx context.Context, account string) (uint64, error) {
	query := `SELECT amount FROM balances WHERE account = ?`

	var amount uint64
	err := r.q.QueryRowContext(ctx, query, account).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return amount, nil
}

// Add credits the account, creating the row if absent.
func (r *BalanceRepository) Add(ctx context.Context, account string, amount uint64) error {
	query := `
		INSERT INTO balances (account, amount)
		VALUES (?, ?)
		ON CONFLICT(account) DO UPDATE SET amount = amount + excluded.amount
	`

	if _, err := r.q.ExecContext(ctx, query, account, amount); err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}

	return nil
}

// Subtract debits the account. The guarded WHERE clause keeps the balance
// from ever going negative; a rejected debit surfaces as ErrConflict.
func (r *BalanceRepository) Subtract(ctx context.Context, account string, amount uint64) error {
	query := `
		UPDATE balances
		SET amount = amount - ?
		WHERE account = ? AND amount >= ?
	`

	result, err := r.q.ExecContext(ctx, query, amount, account, amount)
	if err != nil {
		if isCheckViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to debit balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrConflict
	}

	return nil
}

package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/averine/datamart/internal/domain/audit"
)

// AuditRepository implements audit log persistence for SQLite
type AuditRepository struct {
	q querier
}

// NewAuditRepository creates a new AuditRepository. The querier may be a
// *DB or a transaction.
func NewAuditRepository(q querier) *AuditRepository {
	return &AuditRepository{q: q}
}

// Append inserts an audit entry
func (r *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	query := `
		INSERT INTO audit_log (account, dataset_id, job_id, event_type, summary, details, height)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.q.ExecContext(ctx, query,
		entry.Account,
		entry.DatasetID,
		entry.JobID,
		entry.EventType,
		entry.Summary,
		entry.Details,
		entry.Height,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read audit entry id: %w", err)
	}
	entry.ID = id

	return nil
}

// List returns audit entries matching the given options, newest first
func (r *AuditRepository) List(ctx context.Context, opts audit.ListOptions) ([]audit.Entry, error) {
	query := `
		SELECT id, account, dataset_id, job_id, event_type, summary, COALESCE(details, ''), height, created_at
		FROM audit_log
	`

	var args []interface{}
	var conditions []string

	if opts.Account != "" {
		conditions = append(conditions, "account = ?")
		args = append(args, opts.Account)
	}
	if opts.DatasetID != nil {
		conditions = append(conditions, "dataset_id = ?")
		args = append(args, *opts.DatasetID)
	}
	if opts.JobID != nil {
		conditions = append(conditions, "job_id = ?")
		args = append(args, *opts.JobID)
	}
	if opts.EventType != nil {
		conditions = append(conditions, "event_type = ?")
		args = append(args, *opts.EventType)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var entry audit.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.Account,
			&entry.DatasetID,
			&entry.JobID,
			&entry.EventType,
			&entry.Summary,
			&entry.Details,
			&entry.Height,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return entries, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/averine/datamart/internal/domain/dataset"
	"github.com/averine/datamart/internal/repository"
)

// DatasetRepository implements dataset persistence for SQLite
type DatasetRepository struct {
	q querier
}

// NewDatasetRepository creates a new DatasetRepository. The querier may be
// a *DB or a transaction.
func NewDatasetRepository(q querier) *DatasetRepository {
	return &DatasetRepository{q: q}
}

// Create inserts a dataset and assigns the next sequential id.
func (r *DatasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	query := `
		INSERT INTO datasets (owner, name, metadata_url, category, price_per_use, access_count, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.q.ExecContext(ctx, query,
		ds.Owner,
		ds.Name,
		ds.MetadataURL,
		ds.Category,
		ds.PricePerUse,
		ds.AccessCount,
		ds.Active,
		ds.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read dataset id: %w", err)
	}
	ds.ID = uint64(id)

	return nil
}

// Get retrieves a dataset by id
func (r *DatasetRepository) Get(ctx context.Context, id uint64) (*dataset.Dataset, error) {
	query := `
		SELECT id, owner, name, metadata_url, category, price_per_use, access_count, active, created_at
		FROM datasets
		WHERE id = ?
	`

	var ds dataset.Dataset
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&ds.ID,
		&ds.Owner,
		&ds.Name,
		&ds.MetadataURL,
		&ds.Category,
		&ds.PricePerUse,
		&ds.AccessCount,
		&ds.Active,
		&ds.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	return &ds, nil
}

// Update replaces a dataset's mutable fields. Id, owner, creation height
// and access count stay as stored.
func (r *DatasetRepository) Update(ctx context.Context, ds *dataset.Dataset) error {
	query := `
		UPDATE datasets
		SET name = ?, metadata_url = ?, category = ?, price_per_use = ?, active = ?
		WHERE id = ?
	`

	result, err := r.q.ExecContext(ctx, query,
		ds.Name,
		ds.MetadataURL,
		ds.Category,
		ds.PricePerUse,
		ds.Active,
		ds.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update dataset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// IncrementAccessCount bumps the access counter by one.
func (r *DatasetRepository) IncrementAccessCount(ctx context.Context, id uint64) error {
	query := `UPDATE datasets SET access_count = access_count + 1 WHERE id = ?`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment access count: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns datasets matching the given options
func (r *DatasetRepository) List(ctx context.Context, opts dataset.ListOptions) ([]dataset.Dataset, error) {
	query := `
		SELECT id, owner, name, metadata_url, category, price_per_use, access_count, active, created_at
		FROM datasets
	`

	var args []interface{}
	var conditions []string

	if opts.Owner != "" {
		conditions = append(conditions, "owner = ?")
		args = append(args, opts.Owner)
	}
	if opts.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, opts.Category)
	}
	if opts.ActiveOnly {
		conditions = append(conditions, "active = 1")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id ASC"

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
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []dataset.Dataset
	for rows.Next() {
		var ds dataset.Dataset
		err := rows.Scan(
			&ds.ID,
			&ds.Owner,
			&ds.Name,
			&ds.MetadataURL,
			&ds.Category,
			&ds.PricePerUse,
			&ds.AccessCount,
			&ds.Active,
			&ds.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, ds)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dataset rows: %w", err)
	}

	return datasets, nil
}

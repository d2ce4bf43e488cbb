package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/averine/datamart/internal/domain/job"
	"github.com/averine/datamart/internal/repository"
)

// JobRepository implements training job persistence for SQLite
type JobRepository struct {
	q querier
}

// NewJobRepository creates a new JobRepository. The querier may be a *DB
// or a transaction.
func NewJobRepository(q querier) *JobRepository {
	return &JobRepository{q: q}
}

// Create inserts a job with its ordered dataset references and assigns the
// next sequential id.
func (r *JobRepository) Create(ctx context.Context, j *job.TrainingJob) error {
	query := `
		INSERT INTO training_jobs (creator, name, provider, status, result_url, total_cost, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.q.ExecContext(ctx, query,
		j.Creator,
		j.Name,
		j.Provider,
		j.Status,
		j.ResultURL,
		j.TotalCost,
		j.CreatedAt,
		j.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read job id: %w", err)
	}
	j.ID = uint64(id)

	refQuery := `
		INSERT INTO job_datasets (job_id, position, dataset_id, unit_price)
		VALUES (?, ?, ?, ?)
	`
	for pos, ref := range j.Datasets {
		if _, err := r.q.ExecContext(ctx, refQuery, j.ID, pos, ref.DatasetID, ref.UnitPrice); err != nil {
			if isForeignKeyViolation(err) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to store dataset reference: %w", err)
		}
	}

	return nil
}

// Get retrieves a job by id, including its ordered dataset references
func (r *JobRepository) Get(ctx context.Context, id uint64) (*job.TrainingJob, error) {
	query := `
		SELECT id, creator, name, provider, status, result_url, total_cost, created_at, completed_at
		FROM training_jobs
		WHERE id = ?
	`

	var j job.TrainingJob
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&j.ID,
		&j.Creator,
		&j.Name,
		&j.Provider,
		&j.Status,
		&j.ResultURL,
		&j.TotalCost,
		&j.CreatedAt,
		&j.CompletedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	refs, err := r.getRefs(ctx, j.ID)
	if err != nil {
		return nil, err
	}
	j.Datasets = refs

	return &j, nil
}

// Update replaces a job's mutable fields. The dataset reference list is
// fixed at creation and never rewritten.
func (r *JobRepository) Update(ctx context.Context, j *job.TrainingJob) error {
	query := `
		UPDATE training_jobs
		SET provider = ?, status = ?, result_url = ?, completed_at = ?
		WHERE id = ?
	`

	result, err := r.q.ExecContext(ctx, query,
		j.Provider,
		j.Status,
		j.ResultURL,
		j.CompletedAt,
		j.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
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

// List returns jobs matching the given options
func (r *JobRepository) List(ctx context.Context, opts job.ListOptions) ([]job.TrainingJob, error) {
	query := `
		SELECT id, creator, name, provider, status, result_url, total_cost, created_at, completed_at
		FROM training_jobs
	`

	var args []interface{}
	var conditions []string

	if opts.Creator != "" {
		conditions = append(conditions, "creator = ?")
		args = append(args, opts.Creator)
	}
	if opts.Provider != "" {
		conditions = append(conditions, "provider = ?")
		args = append(args, opts.Provider)
	}
	if len(opts.Statuses) > 0 {
		placeholders := make([]string, len(opts.Statuses))
		for i, status := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
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
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []job.TrainingJob
	for rows.Next() {
		var j job.TrainingJob
		err := rows.Scan(
			&j.ID,
			&j.Creator,
			&j.Name,
			&j.Provider,
			&j.Status,
			&j.ResultURL,
			&j.TotalCost,
			&j.CreatedAt,
			&j.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	for i := range jobs {
		refs, err := r.getRefs(ctx, jobs[i].ID)
		if err != nil {
			return nil, err
		}
		jobs[i].Datasets = refs
	}

	return jobs, nil
}

func (r *JobRepository) getRefs(ctx context.Context, jobID uint64) ([]job.DatasetRef, error) {
	query := `
		SELECT dataset_id, unit_price
		FROM job_datasets
		WHERE job_id = ?
		ORDER BY position ASC
	`

	rows, err := r.q.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset references: %w", err)
	}
	defer rows.Close()

	var refs []job.DatasetRef
	for rows.Next() {
		var ref job.DatasetRef
		if err := rows.Scan(&ref.DatasetID, &ref.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan dataset reference: %w", err)
		}
		refs = append(refs, ref)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dataset reference rows: %w", err)
	}

	return refs, nil
}

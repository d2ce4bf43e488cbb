package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the marketplace schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Datasets table. AUTOINCREMENT keeps ids sequential and never reused.
CREATE TABLE datasets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    owner TEXT NOT NULL,
    name TEXT NOT NULL,
    metadata_url TEXT NOT NULL,
    category TEXT NOT NULL,
    price_per_use INTEGER NOT NULL,
    access_count INTEGER NOT NULL DEFAULT 0,
    active INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL
);
CREATE INDEX idx_datasets_owner ON datasets(owner);
CREATE INDEX idx_datasets_category ON datasets(category);
CREATE INDEX idx_datasets_active ON datasets(active);

-- Training jobs table
CREATE TABLE training_jobs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    creator TEXT NOT NULL,
    name TEXT NOT NULL,
    provider TEXT,
    status TEXT NOT NULL CHECK(status IN ('PENDING', 'PROCESSING', 'COMPLETED', 'FAILED')),
    result_url TEXT,
    total_cost INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    completed_at INTEGER
);
CREATE INDEX idx_jobs_creator ON training_jobs(creator);
CREATE INDEX idx_jobs_provider ON training_jobs(provider);
CREATE INDEX idx_jobs_status ON training_jobs(status);

-- Ordered dataset references per job, with the price captured at creation.
-- Duplicate dataset ids are distinct entries at distinct positions.
CREATE TABLE job_datasets (
    job_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    dataset_id INTEGER NOT NULL,
    unit_price INTEGER NOT NULL,
    PRIMARY KEY (job_id, position),
    FOREIGN KEY (job_id) REFERENCES training_jobs(id),
    FOREIGN KEY (dataset_id) REFERENCES datasets(id)
);
CREATE INDEX idx_job_datasets_dataset ON job_datasets(dataset_id);

-- Internal balances. The CHECK backs the no-negative-balance invariant.
CREATE TABLE balances (
    account TEXT PRIMARY KEY,
    amount INTEGER NOT NULL DEFAULT 0 CHECK(amount >= 0)
);

-- Audit log
CREATE TABLE audit_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account TEXT NOT NULL,
    dataset_id INTEGER,
    job_id INTEGER,
    event_type TEXT NOT NULL,
    summary TEXT NOT NULL,
    details TEXT,
    height INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX idx_audit_account ON audit_log(account);
CREATE INDEX idx_audit_job ON audit_log(job_id);
CREATE INDEX idx_audit_dataset ON audit_log(dataset_id);
CREATE INDEX idx_audit_created_at ON audit_log(created_at);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

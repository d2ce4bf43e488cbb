package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service handles audit log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new audit service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an entry, stamping the wall-clock time if missing.
func (s *Service) Record(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.EventType == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// Recent lists audit entries with filtering.
func (s *Service) Recent(ctx context.Context, opts ListOptions) ([]Entry, error) {
	return s.repo.List(ctx, opts)
}

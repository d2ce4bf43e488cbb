package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/averine/datamart/internal/domain/audit"
	"github.com/averine/datamart/internal/height"
	"github.com/averine/datamart/internal/metrics"
	"github.com/averine/datamart/internal/repository"
	"github.com/go-playground/validator/v10"
)

// Service handles dataset registry operations.
type Service struct {
	store    Store
	heights  height.Source
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService creates a new dataset service.
func NewService(
	store Store,
	heights height.Source,
	validate *validator.Validate,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:    store,
		heights:  heights,
		validate: validate,
		metrics:  m,
		logger:   logger,
	}
}

// RegisterRequest describes a dataset registration.
type RegisterRequest struct {
	Name        string `validate:"required,nonblank,max=100"`
	MetadataURL string `validate:"max=256"`
	Category    string `validate:"max=50"`
	PricePerUse uint64
}

// UpdateRequest describes an update to a dataset's mutable fields.
type UpdateRequest struct {
	Name        string `validate:"required,nonblank,max=100"`
	MetadataURL string `validate:"max=256"`
	Category    string `validate:"max=50"`
	PricePerUse uint64
	Active      bool
}

// Register stores a new active dataset owned by the caller.
func (s *Service) Register(ctx context.Context, caller string, req RegisterRequest) (*Dataset, error) {
	if caller == "" {
		return nil, ErrInvalidInput
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, ErrInvalidInput
	}

	h, err := s.heights.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading height: %w", err)
	}

	ds := &Dataset{
		Owner:       caller,
		Name:        req.Name,
		MetadataURL: req.MetadataURL,
		Category:    req.Category,
		PricePerUse: req.PricePerUse,
		AccessCount: 0,
		Active:      true,
		CreatedAt:   h,
	}

	err = s.store.RunInTx(ctx, func(st Store) error {
		if err := st.Datasets().Create(ctx, ds); err != nil {
			return fmt.Errorf("creating dataset: %w", err)
		}
		return st.Audit().Append(ctx, &audit.Entry{
			Account:   caller,
			DatasetID: &ds.ID,
			EventType: audit.TypeDatasetRegistered,
			Summary:   fmt.Sprintf("registered dataset %q", ds.Name),
			Height:    h,
		})
	})
	s.metrics.ObserveOp("dataset.register", err)
	if err != nil {
		return nil, err
	}

	return ds, nil
}

// Update replaces a dataset's mutable fields. Only the owner may update;
// id, owner, creation height and access count are preserved.
func (s *Service) Update(ctx context.Context, caller string, id uint64, req UpdateRequest) (*Dataset, error) {
	if caller == "" {
		return nil, ErrInvalidInput
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, ErrInvalidInput
	}

	h, err := s.heights.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading height: %w", err)
	}

	var updated *Dataset
	err = s.store.RunInTx(ctx, func(st Store) error {
		current, err := st.Datasets().Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading dataset: %w", err)
		}
		if current.Owner != caller {
			return ErrNotOwner
		}

		next := *current
		next.Name = req.Name
		next.MetadataURL = req.MetadataURL
		next.Category = req.Category
		next.PricePerUse = req.PricePerUse
		next.Active = req.Active

		if err := st.Datasets().Update(ctx, &next); err != nil {
			return fmt.Errorf("updating dataset: %w", err)
		}
		updated = &next

		return st.Audit().Append(ctx, &audit.Entry{
			Account:   caller,
			DatasetID: &next.ID,
			EventType: audit.TypeDatasetUpdated,
			Summary:   fmt.Sprintf("updated dataset %d", next.ID),
			Height:    h,
		})
	})
	s.metrics.ObserveOp("dataset.update", err)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Get returns a dataset by id.
func (s *Service) Get(ctx context.Context, id uint64) (*Dataset, error) {
	ds, err := s.store.Datasets().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting dataset: %w", err)
	}
	return ds, nil
}

// List returns datasets matching the options.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Dataset, error) {
	return s.store.Datasets().List(ctx, opts)
}

package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/averine/datamart/internal/domain/audit"
	"github.com/averine/datamart/internal/domain/balance"
	"github.com/averine/datamart/internal/height"
	"github.com/averine/datamart/internal/metrics"
	"github.com/averine/datamart/internal/repository"
	"github.com/go-playground/validator/v10"
)

// Service handles training job lifecycle and the escrow transfers tied to
// it.
type Service struct {
	store    Store
	heights  height.Source
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService creates a new job service.
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

// CreateRequest describes a training job creation.
type CreateRequest struct {
	Name       string `validate:"required,nonblank,max=100"`
	DatasetIDs []uint64
}

// Create validates every referenced dataset, computes the job cost as a
// running sum over the list (duplicates charged per occurrence), debits the
// creator's balance into escrow and stores the job as PENDING, all in one
// transaction.
func (s *Service) Create(ctx context.Context, caller string, req CreateRequest) (*TrainingJob, error) {
	if caller == "" {
		return nil, ErrInvalidInput
	}
	if len(req.DatasetIDs) > MaxDatasetRefs {
		return nil, ErrTooManyDatasets
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, ErrInvalidInput
	}

	h, err := s.heights.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading height: %w", err)
	}

	var created *TrainingJob
	err = s.store.RunInTx(ctx, func(st Store) error {
		// Every entry must resolve to an existing, active dataset. The
		// check is a pure conjunction over the list, so any failing
		// entry fails the whole call before funds move.
		refs := make([]DatasetRef, 0, len(req.DatasetIDs))
		var total uint64
		for _, id := range req.DatasetIDs {
			ds, err := st.Datasets().Get(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrDatasetNotFound
				}
				return fmt.Errorf("loading dataset %d: %w", id, err)
			}
			if !ds.Active {
				return ErrDatasetNotFound
			}
			refs = append(refs, DatasetRef{DatasetID: id, UnitPrice: ds.PricePerUse})
			total += ds.PricePerUse
		}

		current, err := st.Balances().Get(ctx, caller)
		if err != nil {
			return fmt.Errorf("getting balance: %w", err)
		}
		if current < total {
			return balance.ErrInsufficientFunds
		}
		if total > 0 {
			if err := st.Balances().Subtract(ctx, caller, total); err != nil {
				return fmt.Errorf("escrowing funds: %w", err)
			}
		}

		j := &TrainingJob{
			Creator:   caller,
			Name:      req.Name,
			Datasets:  refs,
			Status:    StatusPending,
			TotalCost: total,
			CreatedAt: h,
		}
		if err := st.Jobs().Create(ctx, j); err != nil {
			return fmt.Errorf("creating job: %w", err)
		}
		created = j

		return st.Audit().Append(ctx, &audit.Entry{
			Account:   caller,
			JobID:     &j.ID,
			EventType: audit.TypeJobCreated,
			Summary:   fmt.Sprintf("created job %q for %d units", j.Name, total),
			Height:    h,
		})
	})
	s.metrics.ObserveOp("job.create", err)
	if err != nil {
		return nil, err
	}

	s.metrics.AddEscrow(float64(created.TotalCost))
	s.metrics.ObserveJobStatus(string(StatusPending))
	return created, nil
}

// Accept assigns the caller as computation provider and moves the job to
// PROCESSING. Funds were already escrowed at creation, so no balance moves.
func (s *Service) Accept(ctx context.Context, caller string, jobID uint64) (*TrainingJob, error) {
	if caller == "" {
		return nil, ErrInvalidInput
	}

	h, err := s.heights.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading height: %w", err)
	}

	var accepted *TrainingJob
	err = s.store.RunInTx(ctx, func(st Store) error {
		j, err := s.load(ctx, st, jobID)
		if err != nil {
			return err
		}
		if !ValidTransition(j.Status, StatusProcessing) {
			return ErrInvalidStatus
		}

		j.Provider = &caller
		j.Status = StatusProcessing
		if err := st.Jobs().Update(ctx, j); err != nil {
			return fmt.Errorf("updating job: %w", err)
		}
		accepted = j

		return st.Audit().Append(ctx, &audit.Entry{
			Account:   caller,
			JobID:     &j.ID,
			EventType: audit.TypeJobAccepted,
			Summary:   fmt.Sprintf("accepted job %d", j.ID),
			Height:    h,
		})
	})
	s.metrics.ObserveOp("job.accept", err)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveJobStatus(string(StatusProcessing))
	return accepted, nil
}

// Complete marks a PROCESSING job COMPLETED, records the result URL,
// increments each referenced dataset's access count once per occurrence
// and releases the escrowed funds to the dataset owners, minus the
// platform fee.
func (s *Service) Complete(ctx context.Context, caller string, jobID uint64, resultURL string) (*TrainingJob, error) {
	if caller == "" {
		return nil, ErrInvalidInput
	}
	if err := s.validate.Var(resultURL, fmt.Sprintf("required,max=%d", MaxResultURLLen)); err != nil {
		return nil, ErrInvalidInput
	}

	h, err := s.heights.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading height: %w", err)
	}

	var completed *TrainingJob
	err = s.store.RunInTx(ctx, func(st Store) error {
		j, err := s.load(ctx, st, jobID)
		if err != nil {
			return err
		}
		if j.Provider == nil || *j.Provider != caller {
			return ErrNotProvider
		}
		if !ValidTransition(j.Status, StatusCompleted) {
			return ErrInvalidStatus
		}

		j.Status = StatusCompleted
		j.ResultURL = &resultURL
		j.CompletedAt = &h
		if err := st.Jobs().Update(ctx, j); err != nil {
			return fmt.Errorf("updating job: %w", err)
		}

		if err := s.release(ctx, st, j); err != nil {
			return err
		}
		completed = j

		return st.Audit().Append(ctx, &audit.Entry{
			Account:   caller,
			JobID:     &j.ID,
			EventType: audit.TypeJobCompleted,
			Summary:   fmt.Sprintf("completed job %d", j.ID),
			Height:    h,
		})
	})
	s.metrics.ObserveOp("job.complete", err)
	if err != nil {
		return nil, err
	}

	s.metrics.AddEscrow(-float64(completed.TotalCost))
	s.metrics.ObserveJobStatus(string(StatusCompleted))
	return completed, nil
}

// Cancel moves a PENDING job to FAILED and refunds the full escrowed cost
// to the creator. Only the creator may cancel, and only before a provider
// accepts.
func (s *Service) Cancel(ctx context.Context, caller string, jobID uint64) (*TrainingJob, error) {
	if caller == "" {
		return nil, ErrInvalidInput
	}

	h, err := s.heights.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading height: %w", err)
	}

	var cancelled *TrainingJob
	err = s.store.RunInTx(ctx, func(st Store) error {
		j, err := s.load(ctx, st, jobID)
		if err != nil {
			return err
		}
		if j.Creator != caller {
			return ErrNotCreator
		}
		if !ValidTransition(j.Status, StatusFailed) {
			return ErrInvalidStatus
		}

		j.Status = StatusFailed
		if err := st.Jobs().Update(ctx, j); err != nil {
			return fmt.Errorf("updating job: %w", err)
		}
		if j.TotalCost > 0 {
			if err := st.Balances().Add(ctx, j.Creator, j.TotalCost); err != nil {
				return fmt.Errorf("refunding escrow: %w", err)
			}
		}
		cancelled = j

		return st.Audit().Append(ctx, &audit.Entry{
			Account:   caller,
			JobID:     &j.ID,
			EventType: audit.TypeJobCancelled,
			Summary:   fmt.Sprintf("cancelled job %d, refunded %d units", j.ID, j.TotalCost),
			Height:    h,
		})
	})
	s.metrics.ObserveOp("job.cancel", err)
	if err != nil {
		return nil, err
	}

	s.metrics.AddEscrow(-float64(cancelled.TotalCost))
	s.metrics.ObserveJobStatus(string(StatusFailed))
	return cancelled, nil
}

// Get returns a job by id.
func (s *Service) Get(ctx context.Context, id uint64) (*TrainingJob, error) {
	j, err := s.store.Jobs().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return j, nil
}

// List returns jobs matching the options.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]TrainingJob, error) {
	return s.store.Jobs().List(ctx, opts)
}

// PlatformFeePercent returns the fee percentage applied on escrow release.
func (s *Service) PlatformFeePercent() uint64 {
	return PlatformFeePercent
}

// release disburses the escrowed cost: for each dataset occurrence the
// owner receives the snapshot price minus the platform fee, the platform
// account receives the fee, and the access count is bumped. Summed over
// occurrences this pays out exactly TotalCost.
func (s *Service) release(ctx context.Context, st Store, j *TrainingJob) error {
	var feeTotal uint64
	for _, ref := range j.Datasets {
		ds, err := st.Datasets().Get(ctx, ref.DatasetID)
		if err != nil {
			return fmt.Errorf("loading dataset %d: %w", ref.DatasetID, err)
		}
		if err := st.Datasets().IncrementAccessCount(ctx, ref.DatasetID); err != nil {
			return fmt.Errorf("incrementing access count: %w", err)
		}

		fee := PlatformFee(ref.UnitPrice)
		if share := ref.UnitPrice - fee; share > 0 {
			if err := st.Balances().Add(ctx, ds.Owner, share); err != nil {
				return fmt.Errorf("crediting dataset owner: %w", err)
			}
		}
		feeTotal += fee
	}

	if feeTotal > 0 {
		if err := st.Balances().Add(ctx, balance.PlatformAccount, feeTotal); err != nil {
			return fmt.Errorf("crediting platform fee: %w", err)
		}
	}
	return nil
}

func (s *Service) load(ctx context.Context, st Store, id uint64) (*TrainingJob, error) {
	j, err := st.Jobs().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading job: %w", err)
	}
	return j, nil
}

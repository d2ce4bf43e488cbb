package job

import "errors"

var (
	// ErrNotFound indicates the job doesn't exist.
	ErrNotFound = errors.New("training job not found")
	// ErrDatasetNotFound indicates a referenced dataset is missing or inactive.
	ErrDatasetNotFound = errors.New("referenced dataset not found or inactive")
	// ErrTooManyDatasets indicates the dataset list exceeds the cap.
	ErrTooManyDatasets = errors.New("too many dataset references")
	// ErrInvalidStatus indicates the operation is not allowed from the
	// job's current status.
	ErrInvalidStatus = errors.New("operation not allowed in current job status")
	// ErrNotProvider indicates the caller is not the assigned provider.
	ErrNotProvider = errors.New("caller is not the assigned computation provider")
	// ErrNotCreator indicates the caller did not create the job.
	ErrNotCreator = errors.New("caller is not the job creator")
	// ErrInvalidInput indicates invalid job input.
	ErrInvalidInput = errors.New("invalid job input")
)

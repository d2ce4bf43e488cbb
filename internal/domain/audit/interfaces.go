package audit

import "context"

// Repository provides persistence operations for audit entries.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
}

// ListOptions provides filtering options for listing audit entries.
type ListOptions struct {
	Account   string
	DatasetID *uint64
	JobID     *uint64
	EventType *EventType
	Limit     int
	Offset    int
}

package audit

import "time"

// EventType represents the kind of marketplace event being recorded
type EventType string

const (
	TypeDatasetRegistered EventType = "dataset_registered"
	TypeDatasetUpdated    EventType = "dataset_updated"
	TypeJobCreated        EventType = "job_created"
	TypeJobAccepted       EventType = "job_accepted"
	TypeJobCompleted      EventType = "job_completed"
	TypeJobCancelled      EventType = "job_cancelled"
	TypeFundsDeposited    EventType = "funds_deposited"
	TypeFundsWithdrawn    EventType = "funds_withdrawn"
)

// Entry represents an event in the marketplace audit log
type Entry struct {
	ID        int64     `json:"id"`
	Account   string    `json:"account"`
	DatasetID *uint64   `json:"dataset_id,omitempty"`
	JobID     *uint64   `json:"job_id,omitempty"`
	EventType EventType `json:"type"`
	Summary   string    `json:"summary"`
	Details   string    `json:"details,omitempty"`
	Height    uint64    `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}

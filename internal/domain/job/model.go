package job

// Status represents the lifecycle state of a training job
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

const (
	// MaxDatasetRefs caps how many dataset references a job may carry.
	MaxDatasetRefs = 20
	// MaxNameLen bounds the job name.
	MaxNameLen = 100
	// MaxResultURLLen bounds the completion result URL.
	MaxResultURLLen = 256

	// PlatformFeePercent is deducted from each dataset payout on escrow
	// release and credited to the platform account.
	PlatformFeePercent = 3
)

// DatasetRef is one entry of a job's dataset list. UnitPrice is the
// dataset's price captured at job creation; escrow release disburses from
// this snapshot even if the listing price changed since.
type DatasetRef struct {
	DatasetID uint64 `json:"dataset_id"`
	UnitPrice uint64 `json:"unit_price"`
}

// TrainingJob represents a job on the marketplace ledger
type TrainingJob struct {
	ID          uint64       `json:"id"`
	Creator     string       `json:"creator"`
	Name        string       `json:"name"`
	Datasets    []DatasetRef `json:"datasets"`
	Provider    *string      `json:"provider,omitempty"`
	Status      Status       `json:"status"`
	ResultURL   *string      `json:"result_url,omitempty"`
	TotalCost   uint64       `json:"total_cost"`
	CreatedAt   uint64       `json:"created_at"`
	CompletedAt *uint64      `json:"completed_at,omitempty"`
}

// DatasetIDs returns the referenced dataset ids in list order, duplicates
// included.
func (j *TrainingJob) DatasetIDs() []uint64 {
	ids := make([]uint64, len(j.Datasets))
	for i, ref := range j.Datasets {
		ids[i] = ref.DatasetID
	}
	return ids
}

// PlatformFee returns the fee retained from a single dataset payout.
func PlatformFee(price uint64) uint64 {
	return price * PlatformFeePercent / 100
}

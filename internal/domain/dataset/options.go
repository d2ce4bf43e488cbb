package dataset

// ListOptions provides filtering options for listing datasets.
type ListOptions struct {
	Owner      string
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

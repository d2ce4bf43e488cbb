package job

// ListOptions provides filtering options for listing jobs.
type ListOptions struct {
	Creator  string
	Provider string
	Statuses []Status
	Limit    int
	Offset   int
}

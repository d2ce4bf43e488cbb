package job

// ValidTransition reports whether a job may move from one status to
// another. Transitions are one-directional: PENDING jobs can be accepted
// (PROCESSING) or cancelled (FAILED); PROCESSING jobs can only complete.
// Completed and failed jobs are terminal.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted
	case StatusCompleted, StatusFailed:
		return false
	}
	return false
}

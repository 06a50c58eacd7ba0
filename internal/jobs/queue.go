package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueExpiry(attemptID int64) error
}

package jobs

import (
	"github.com/vytor/escaperoom/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	expiryPool *worker.Pool
	expirer    worker.AttemptExpirer
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(expiryPool *worker.Pool, expirer worker.AttemptExpirer) JobQueue {
	return &WorkerQueue{
		expiryPool: expiryPool,
		expirer:    expirer,
	}
}

func (q *WorkerQueue) EnqueueExpiry(attemptID int64) error {
	return q.expiryPool.Submit(&worker.ExpireAttemptJob{
		Expirer:   q.expirer,
		AttemptID: attemptID,
	})
}

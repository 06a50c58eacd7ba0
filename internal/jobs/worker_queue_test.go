package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/escaperoom/internal/models"
	"github.com/vytor/escaperoom/internal/worker"
)

type expirerFunc func(ctx context.Context, id int64) (*models.CompletionResult, error)

func (f expirerFunc) ExpireAttempt(ctx context.Context, id int64) (*models.CompletionResult, error) {
	return f(ctx, id)
}

func TestWorkerQueue_EnqueueExpiry(t *testing.T) {
	pool := worker.NewPool(1, 2)
	pool.Start(context.Background())
	defer pool.Stop()

	expired := make(chan int64, 1)
	q := NewWorkerQueue(pool, expirerFunc(func(_ context.Context, id int64) (*models.CompletionResult, error) {
		expired <- id
		return &models.CompletionResult{AttemptID: id, Status: models.AttemptExpired}, nil
	}))

	require.NoError(t, q.EnqueueExpiry(42))

	select {
	case id := <-expired:
		assert.Equal(t, int64(42), id)
	case <-time.After(2 * time.Second):
		t.Fatal("expiry job did not run")
	}
}

func TestWorkerQueue_StoppedPool(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Stop()

	q := NewWorkerQueue(pool, expirerFunc(func(context.Context, int64) (*models.CompletionResult, error) {
		return nil, nil
	}))
	assert.ErrorIs(t, q.EnqueueExpiry(1), worker.ErrPoolStopped)
}

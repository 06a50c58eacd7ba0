package jobs

import (
	"context"
	"time"

	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
	"github.com/vytor/escaperoom/internal/repository"
)

// DefaultSweepInterval is how often active attempts are checked when no
// interval is configured.
const DefaultSweepInterval = 30 * time.Second

// PuzzleLookup resolves a puzzle's time limit.
type PuzzleLookup interface {
	Get(id int) (models.Puzzle, bool)
}

// ExpirySweeper periodically finds active attempts that ran past their
// puzzle's time limit and queues them for expiry.
type ExpirySweeper struct {
	attempts repository.AttemptRepository
	puzzles  PuzzleLookup
	queue    JobQueue
	interval time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// NewExpirySweeper creates a sweeper. A non-positive interval uses DefaultSweepInterval.
func NewExpirySweeper(attempts repository.AttemptRepository, puzzles PuzzleLookup, queue JobQueue, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &ExpirySweeper{
		attempts: attempts,
		puzzles:  puzzles,
		queue:    queue,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger.Default().WithPrefix("expiry-sweeper"),
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *ExpirySweeper) Run(ctx context.Context) {
	s.log.Info("starting expiry sweeper every %v", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.log.Error("sweep failed: %v", err)
			}
		}
	}
}

// Sweep queues every overdue attempt once and returns how many were queued.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	active, err := s.attempts.List(ctx, models.AttemptFilter{Status: models.AttemptActive})
	if err != nil {
		return 0, err
	}

	now := s.now()
	queued := 0
	for _, a := range active {
		p, ok := s.puzzles.Get(a.PuzzleID)
		if !ok || !p.HasTimeLimit() {
			continue
		}
		if a.Elapsed(now) < time.Duration(*p.TimeLimitSeconds)*time.Second {
			continue
		}
		if err := s.queue.EnqueueExpiry(a.ID); err != nil {
			s.log.Warn("could not queue expiry for attempt %d: %v", a.ID, err)
			continue
		}
		queued++
	}

	if queued > 0 {
		s.log.Debug("queued %d of %d active attempts for expiry", queued, len(active))
	}
	return queued, nil
}

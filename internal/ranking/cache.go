package ranking

import (
	"sync"
	"time"

	"github.com/vytor/escaperoom/internal/models"
)

// DefaultTTL is how long a computed leaderboard is reused.
const DefaultTTL = 5 * time.Minute

// Cache holds the last full leaderboard. Its zero value is not usable; use
// NewCache.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries []models.RankingEntry
	builtAt time.Time
	valid   bool
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached leaderboard while it is fresh.
func (c *Cache) Get() ([]models.RankingEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || c.now().Sub(c.builtAt) >= c.ttl {
		return nil, false
	}
	return c.entries, true
}

func (c *Cache) Set(entries []models.RankingEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	c.builtAt = c.now()
	c.valid = true
}

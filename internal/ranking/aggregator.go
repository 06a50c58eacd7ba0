// Package ranking builds the cross-player leaderboard.
package ranking

import (
	"context"
	"sort"

	"golang.org/x/sync/singleflight"

	"github.com/vytor/escaperoom/internal/errors"
	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
)

// ProfileLister supplies every stored profile.
type ProfileLister interface {
	List(ctx context.Context) ([]*models.PlayerProfile, error)
}

type Aggregator struct {
	profiles ProfileLister
	cache    *Cache
	group    singleflight.Group
}

func NewAggregator(profiles ProfileLister, cache *Cache) *Aggregator {
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	return &Aggregator{profiles: profiles, cache: cache}
}

// GetLeaderboard returns the top topN entries, or all of them when topN <= 0.
// forceRefresh bypasses the cache. Concurrent recomputations share one read
// of the profile store.
func (a *Aggregator) GetLeaderboard(ctx context.Context, topN int, forceRefresh bool) ([]models.RankingEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("ranking")
	log.Debug("getting leaderboard: top=%d, force=%t", topN, forceRefresh)

	entries, err := a.entries(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	if topN > 0 && topN < len(entries) {
		entries = entries[:topN]
	}
	out := make([]models.RankingEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// GetRank returns one player's entry along with the number of ranked players.
// Players without a completed puzzle are not ranked.
func (a *Aggregator) GetRank(ctx context.Context, playerID string) (*models.PlayerRank, error) {
	log := logger.FromContext(ctx).WithPrefix("ranking")
	log.Debug("getting rank: player_id=%s", playerID)

	entries, err := a.entries(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.PlayerID != playerID {
			continue
		}
		return &models.PlayerRank{
			RankingEntry: e,
			TotalPlayers: len(entries),
			Percentile:   float64(e.Rank) / float64(len(entries)) * 100,
		}, nil
	}
	return nil, errors.NewNotFoundError("ranked player", playerID)
}

func (a *Aggregator) entries(ctx context.Context, force bool) ([]models.RankingEntry, error) {
	if !force {
		if cached, ok := a.cache.Get(); ok {
			return cached, nil
		}
	}

	// The refresh is shared, so one caller going away must not fail the rest.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := a.group.Do("leaderboard", func() (interface{}, error) {
		profiles, err := a.profiles.List(loadCtx)
		if err != nil {
			return nil, err
		}
		entries := Build(profiles)
		a.cache.Set(entries)
		return entries, nil
	})
	if err != nil {
		logger.FromContext(ctx).Error("failed to build leaderboard: %v", err)
		return nil, errors.NewPersistenceError(err)
	}
	if shared {
		logger.FromContext(ctx).Debug("leaderboard refresh shared with a concurrent caller")
	}
	return v.([]models.RankingEntry), nil
}

// Build ranks every profile with at least one completed puzzle: most points
// first, then lower average completion time, then player id.
func Build(profiles []*models.PlayerProfile) []models.RankingEntry {
	entries := make([]models.RankingEntry, 0, len(profiles))
	for _, p := range profiles {
		if len(p.CompletedPuzzleIDs) == 0 {
			continue
		}
		entries = append(entries, models.RankingEntry{
			PlayerID:                 p.PlayerID,
			Points:                   p.TotalPoints,
			CompletedCount:           len(p.CompletedPuzzleIDs),
			AvgCompletionTimeSeconds: p.AverageCompletionTime(),
			AchievementCount:         len(p.UnlockedAchievementIDs),
			TimePlayedSeconds:        p.TimePlayedSeconds,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.AvgCompletionTimeSeconds != b.AvgCompletionTimeSeconds {
			return a.AvgCompletionTimeSeconds < b.AvgCompletionTimeSeconds
		}
		return a.PlayerID < b.PlayerID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

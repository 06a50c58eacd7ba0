package services

import (
	"context"
	"math"
	"sort"

	"github.com/vytor/escaperoom/internal/errors"
	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
)

// DefaultRecommendationLimit is used when the caller asks for zero or fewer.
const DefaultRecommendationLimit = 3

func (s *progressService) GetStatistics(ctx context.Context, playerID string) (*models.PlayerStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting statistics: player_id=%s", playerID)

	profile, err := s.loadProfile(ctx, playerID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.attempts.List(ctx, models.AttemptFilter{PlayerID: playerID})
	if err != nil {
		log.Error("failed to load attempt ledger: %v", err)
		return nil, errors.NewPersistenceError(err)
	}

	return ComputeStats(profile, ledger, s.catalog), nil
}

// ComputeStats derives the dashboard numbers from a profile and its attempt
// ledger. Active attempts are not counted until they end.
func ComputeStats(profile *models.PlayerProfile, ledger []models.Attempt, catalog PuzzleCatalog) *models.PlayerStats {
	stats := &models.PlayerStats{
		TotalPuzzlesAttempted: len(profile.ViewedPuzzleIDs),
		TotalPuzzlesCompleted: len(profile.CompletedPuzzleIDs),
		AvgCompletionTime:     profile.AverageCompletionTime(),
		TimePlayedSeconds:     profile.TimePlayedSeconds,
		AchievementsUnlocked:  len(profile.UnlockedAchievementIDs),
		TotalPoints:           profile.TotalPoints,
		CurrentStreak:         profile.CurrentStreak,
		HighestStreak:         profile.HighestStreak,
		Categories:            []models.CategoryProgress{},
	}

	if stats.TotalPuzzlesAttempted > 0 {
		stats.CompletionRate = float64(stats.TotalPuzzlesCompleted) / float64(stats.TotalPuzzlesAttempted)
	}

	if stats.TotalPuzzlesCompleted > 0 {
		total := 0
		for id := range profile.CompletedPuzzleIDs {
			n, ok := profile.AttemptsByPuzzle[id]
			if !ok || n < 1 {
				n = 1
			}
			total += n
		}
		stats.AvgAttempts = float64(total) / float64(stats.TotalPuzzlesCompleted)
	}

	first := true
	for _, t := range profile.BestCompletionTimeByPuzzle {
		if first || t < stats.FastestCompletion {
			stats.FastestCompletion = t
			first = false
		}
	}

	for _, a := range ledger {
		if !a.Status.Terminal() {
			continue
		}
		stats.TotalAttempts++
		if a.Status == models.AttemptSucceeded {
			stats.SuccessfulAttempts++
		}
	}
	if stats.TotalAttempts > 0 {
		stats.Accuracy = int(math.Round(float64(stats.SuccessfulAttempts) / float64(stats.TotalAttempts) * 100))
	}

	for _, category := range catalog.Categories() {
		ids := catalog.CategoryPuzzleIDs(category)
		cp := models.CategoryProgress{Category: category, Total: len(ids)}
		for _, id := range ids {
			if profile.HasCompleted(id) {
				cp.Completed++
			}
		}
		if cp.Total > 0 {
			cp.Percentage = int(math.Round(float64(cp.Completed) / float64(cp.Total) * 100))
		}
		stats.Categories = append(stats.Categories, cp)
	}

	return stats
}

func (s *progressService) RecommendPuzzles(ctx context.Context, playerID string, limit int) ([]models.Puzzle, error) {
	logger.FromContext(ctx).Debug("recommending puzzles: player_id=%s, limit=%d", playerID, limit)

	profile, err := s.loadProfile(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return Recommend(profile, s.catalog, limit), nil
}

// Recommend suggests puzzles the player has not completed. Puzzles from
// categories the player started but left unfinished come first, then
// puzzles never opened. Both groups go from easiest to hardest.
func Recommend(profile *models.PlayerProfile, catalog PuzzleCatalog, limit int) []models.Puzzle {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	unfinished := make(map[string]struct{})
	for id := range profile.ViewedPuzzleIDs {
		if profile.HasCompleted(id) {
			continue
		}
		if p, ok := catalog.Get(id); ok {
			unfinished[p.Category] = struct{}{}
		}
	}

	var inProgress, unseen []models.Puzzle
	for _, p := range catalog.All() {
		if profile.HasCompleted(p.ID) {
			continue
		}
		if _, ok := unfinished[p.Category]; ok {
			inProgress = append(inProgress, p)
			continue
		}
		if !profile.HasViewed(p.ID) {
			unseen = append(unseen, p)
		}
	}
	sortByDifficulty(inProgress)
	sortByDifficulty(unseen)

	out := make([]models.Puzzle, 0, limit)
	for _, group := range [][]models.Puzzle{inProgress, unseen} {
		for _, p := range group {
			if len(out) == limit {
				return out
			}
			out = append(out, p)
		}
	}
	return out
}

func sortByDifficulty(puzzles []models.Puzzle) {
	sort.SliceStable(puzzles, func(i, j int) bool {
		if puzzles[i].Difficulty.Order() != puzzles[j].Difficulty.Order() {
			return puzzles[i].Difficulty.Order() < puzzles[j].Difficulty.Order()
		}
		return puzzles[i].ID < puzzles[j].ID
	})
}

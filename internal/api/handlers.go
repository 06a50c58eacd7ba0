package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
	"github.com/vytor/escaperoom/internal/services"
)

// Leaderboard is the read side of the ranking aggregator.
type Leaderboard interface {
	GetLeaderboard(ctx context.Context, topN int, forceRefresh bool) ([]models.RankingEntry, error)
	GetRank(ctx context.Context, playerID string) (*models.PlayerRank, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

type Server struct {
	Progress       services.ProgressService
	Accounts       services.AccountService
	Ranking        Leaderboard
	Catalog        services.PuzzleCatalog
	Health         HealthChecker
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type puzzleSummary struct {
	ID                int               `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	LearningObjective string            `json:"learning_objective,omitempty"`
	Category          string            `json:"category"`
	Difficulty        models.Difficulty `json:"difficulty"`
	BasePoints        int               `json:"base_points"`
	TimeLimitSeconds  *int              `json:"time_limit_seconds,omitempty"`
	MaxAttempts       *int              `json:"max_attempts,omitempty"`
	HintCount         int               `json:"hint_count"`
}

func summarize(p models.Puzzle) puzzleSummary {
	return puzzleSummary{
		ID:                p.ID,
		Title:             p.Title,
		Description:       p.Description,
		LearningObjective: p.LearningObjective,
		Category:          p.Category,
		Difficulty:        p.Difficulty,
		BasePoints:        p.BasePoints,
		TimeLimitSeconds:  p.TimeLimitSeconds,
		MaxAttempts:       p.MaxAttempts,
		HintCount:         len(p.Hints),
	}
}

func summarizeAll(puzzles []models.Puzzle) []puzzleSummary {
	out := make([]puzzleSummary, 0, len(puzzles))
	for _, p := range puzzles {
		out = append(out, summarize(p))
	}
	return out
}

type achievementView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PointsBonus int    `json:"points_bonus"`
	Requirement string `json:"requirement"`
}

func (s *Server) handlePuzzles(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debug("listing puzzles")
	writeJSON(w, http.StatusOK, summarizeAll(s.Catalog.All()))
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debug("listing achievements")

	defs := s.Catalog.Achievements()
	out := make([]achievementView, 0, len(defs))
	for _, a := range defs {
		out = append(out, achievementView{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			PointsBonus: a.PointsBonus,
			Requirement: a.Rule.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/escaperoom/internal/logger"
)

const defaultLeaderboardSize = 10

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger.FromContext(ctx).Debug("getting stats")

	stats, err := s.Progress.GetStatistics(ctx, playerFromContext(ctx))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	puzzles, err := s.Progress.RecommendPuzzles(ctx, playerFromContext(ctx), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarizeAll(puzzles))
}

// handleLeaderboard serves the top players. top=0 returns everyone and
// refresh=true bypasses the cache.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	top, err := intQuery(r, "top", defaultLeaderboardSize)
	if err != nil {
		handleError(w, r, err)
		return
	}
	refresh, err := boolQuery(r, "refresh")
	if err != nil {
		handleError(w, r, err)
		return
	}

	entries, err := s.Ranking.GetLeaderboard(ctx, top, refresh)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePlayerRank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rank, err := s.Ranking.GetRank(ctx, chi.URLParam(r, "playerID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rank)
}

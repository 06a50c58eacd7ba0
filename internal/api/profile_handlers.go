package api

import (
	"net/http"

	"github.com/vytor/escaperoom/internal/logger"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger.FromContext(ctx).Debug("getting profile")

	profile, err := s.Progress.GetProfile(ctx, playerFromContext(ctx))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.View())
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attempts, err := s.Progress.ListAttempts(ctx, playerFromContext(ctx))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (s *Server) handleEvaluateAchievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	unlocked, err := s.Progress.EvaluateAchievements(ctx, playerFromContext(ctx))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unlocked": unlocked})
}

type sessionTimeRequest struct {
	Seconds float64 `json:"seconds"`
}

func (s *Server) handleSessionTime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sessionTimeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.Progress.RecordSessionTime(ctx, playerFromContext(ctx), req.Seconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.View())
}

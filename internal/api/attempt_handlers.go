package api

import (
	"net/http"

	"github.com/vytor/escaperoom/internal/errors"
	"github.com/vytor/escaperoom/internal/logger"
)

type startAttemptRequest struct {
	PuzzleID int `json:"puzzle_id"`
}

type hintRequest struct {
	HintIndex *int `json:"hint_index"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type completeRequest struct {
	Succeeded *bool `json:"succeeded"`
}

func (s *Server) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req startAttemptRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.PuzzleID <= 0 {
		handleError(w, r, errors.NewValidationError("puzzle_id", "must be a positive integer"))
		return
	}

	attempt, err := s.Progress.StartAttempt(ctx, playerFromContext(ctx), req.PuzzleID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

func (s *Server) handleUseHint(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedAttempt(w, r)
	if !ok {
		return
	}

	var req hintRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.HintIndex == nil {
		handleError(w, r, errors.NewValidationError("hint_index", "is required"))
		return
	}

	hint, err := s.Progress.UseHint(r.Context(), id, *req.HintIndex)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hint_index": *req.HintIndex,
		"hint":       hint.Text,
		"deduction":  hint.PointDeduction,
	})
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedAttempt(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.Progress.SubmitAnswer(r.Context(), id, req.Answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompleteAttempt(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedAttempt(w, r)
	if !ok {
		return
	}

	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Succeeded == nil {
		handleError(w, r, errors.NewValidationError("succeeded", "is required"))
		return
	}

	res, err := s.Progress.CompleteAttempt(r.Context(), id, *req.Succeeded)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExpireAttempt(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ownedAttempt(w, r)
	if !ok {
		return
	}

	res, err := s.Progress.ExpireAttempt(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ownedAttempt parses the attempt id and checks it belongs to the caller.
// Someone else's attempt is reported as not found.
func (s *Server) ownedAttempt(w http.ResponseWriter, r *http.Request) (int64, bool) {
	ctx := r.Context()

	id, err := attemptIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return 0, false
	}

	attempt, err := s.Progress.GetAttempt(ctx, id)
	if err != nil {
		handleError(w, r, err)
		return 0, false
	}
	if attempt.PlayerID != playerFromContext(ctx) {
		logger.FromContext(ctx).Warn("attempt %d belongs to another player", id)
		handleError(w, r, errors.NewNotFoundError("attempt", id))
		return 0, false
	}
	return id, true
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

const defaultRequestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	origins := s.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	timeout := s.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", playerHeader, "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(timeout))

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/puzzles", s.handlePuzzles)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/leaderboard/{playerID}", s.handlePlayerRank)

		r.Group(func(r chi.Router) {
			r.Use(playerMiddleware)

			r.Get("/me", s.handleProfile)
			r.Get("/me/stats", s.handleStats)
			r.Get("/me/recommendations", s.handleRecommendations)
			r.Get("/me/attempts", s.handleListAttempts)
			r.Post("/me/achievements/evaluate", s.handleEvaluateAchievements)
			r.Post("/me/session-time", s.handleSessionTime)

			r.Post("/attempts", s.handleStartAttempt)
			r.Post("/attempts/{id}/hints", s.handleUseHint)
			r.Post("/attempts/{id}/answer", s.handleSubmitAnswer)
			r.Post("/attempts/{id}/complete", s.handleCompleteAttempt)
			r.Post("/attempts/{id}/expire", s.handleExpireAttempt)
		})
	})

	return r
}

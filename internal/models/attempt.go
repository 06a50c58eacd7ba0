package models

import "time"

type AttemptStatus string

const (
	AttemptActive    AttemptStatus = "active"
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
	AttemptExpired   AttemptStatus = "expired"
)

// Terminal reports whether the status can no longer change.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptSucceeded || s == AttemptFailed || s == AttemptExpired
}

type Attempt struct {
	ID             int64         `json:"id"`
	PuzzleID       int           `json:"puzzle_id"`
	PlayerID       string        `json:"player_id"`
	AttemptNumber  int           `json:"attempt_number"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        *time.Time    `json:"end_time"`
	HintsUsed      int           `json:"hints_used"`
	Status         AttemptStatus `json:"status"`
	PointsEarned   int           `json:"points_earned"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
}

// Elapsed returns the time spent on the attempt as of now, or the recorded
// duration once it has ended.
func (a Attempt) Elapsed(now time.Time) time.Duration {
	if a.EndTime != nil {
		return a.EndTime.Sub(a.StartTime)
	}
	return now.Sub(a.StartTime)
}

type AttemptFilter struct {
	PlayerID string
	PuzzleID int
	Status   AttemptStatus
	Limit    int
	Offset   int
}

// CompletionResult is what the tracker hands back once an attempt ends.
type CompletionResult struct {
	AttemptID        int64         `json:"attempt_id"`
	PuzzleID         int           `json:"puzzle_id"`
	Status           AttemptStatus `json:"status"`
	PointsEarned     int           `json:"points_earned"`
	ElapsedSeconds   float64       `json:"elapsed_seconds"`
	HintsUsed        int           `json:"hints_used"`
	TotalPoints      int           `json:"total_points"`
	CurrentStreak    int           `json:"current_streak"`
	NewAchievements  []Achievement `json:"new_achievements"`
	AchievementBonus int           `json:"achievement_bonus"`
}

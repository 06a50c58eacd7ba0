package models

import (
	"sort"
	"time"
)

type PlayerProfile struct {
	PlayerID                   string              `json:"player_id"`
	CompletedPuzzleIDs         map[int]struct{}    `json:"-"`
	ViewedPuzzleIDs            map[int]struct{}    `json:"-"` // superset of CompletedPuzzleIDs
	BestCompletionTimeByPuzzle map[int]float64     `json:"best_completion_times"`
	AttemptsByPuzzle           map[int]int         `json:"attempts_by_puzzle"`
	TotalPoints                int                 `json:"total_points"`
	CurrentStreak              int                 `json:"current_streak"`
	HighestStreak              int                 `json:"highest_streak"`
	UnlockedAchievementIDs     map[string]struct{} `json:"-"`
	TimePlayedSeconds          float64             `json:"time_played_seconds"`
	CreatedAt                  time.Time           `json:"created_at"`
	UpdatedAt                  time.Time           `json:"updated_at"`
}

// NewPlayerProfile returns the empty state a player starts with.
func NewPlayerProfile(playerID string) *PlayerProfile {
	return &PlayerProfile{
		PlayerID:                   playerID,
		CompletedPuzzleIDs:         make(map[int]struct{}),
		ViewedPuzzleIDs:            make(map[int]struct{}),
		BestCompletionTimeByPuzzle: make(map[int]float64),
		AttemptsByPuzzle:           make(map[int]int),
		UnlockedAchievementIDs:     make(map[string]struct{}),
	}
}

// Clone returns a deep copy so a mutation can be discarded if persisting it fails.
func (p *PlayerProfile) Clone() *PlayerProfile {
	c := *p
	c.CompletedPuzzleIDs = make(map[int]struct{}, len(p.CompletedPuzzleIDs))
	for id := range p.CompletedPuzzleIDs {
		c.CompletedPuzzleIDs[id] = struct{}{}
	}
	c.ViewedPuzzleIDs = make(map[int]struct{}, len(p.ViewedPuzzleIDs))
	for id := range p.ViewedPuzzleIDs {
		c.ViewedPuzzleIDs[id] = struct{}{}
	}
	c.BestCompletionTimeByPuzzle = make(map[int]float64, len(p.BestCompletionTimeByPuzzle))
	for id, t := range p.BestCompletionTimeByPuzzle {
		c.BestCompletionTimeByPuzzle[id] = t
	}
	c.AttemptsByPuzzle = make(map[int]int, len(p.AttemptsByPuzzle))
	for id, n := range p.AttemptsByPuzzle {
		c.AttemptsByPuzzle[id] = n
	}
	c.UnlockedAchievementIDs = make(map[string]struct{}, len(p.UnlockedAchievementIDs))
	for id := range p.UnlockedAchievementIDs {
		c.UnlockedAchievementIDs[id] = struct{}{}
	}
	return &c
}

func (p *PlayerProfile) MarkViewed(puzzleID int) {
	p.ViewedPuzzleIDs[puzzleID] = struct{}{}
}

// MarkCompleted records a success and keeps the fastest time seen so far.
// Completed puzzles are always viewed as well.
func (p *PlayerProfile) MarkCompleted(puzzleID int, elapsedSeconds float64) {
	p.CompletedPuzzleIDs[puzzleID] = struct{}{}
	p.ViewedPuzzleIDs[puzzleID] = struct{}{}
	if best, ok := p.BestCompletionTimeByPuzzle[puzzleID]; !ok || elapsedSeconds < best {
		p.BestCompletionTimeByPuzzle[puzzleID] = elapsedSeconds
	}
}

func (p *PlayerProfile) HasCompleted(puzzleID int) bool {
	_, ok := p.CompletedPuzzleIDs[puzzleID]
	return ok
}

func (p *PlayerProfile) HasViewed(puzzleID int) bool {
	_, ok := p.ViewedPuzzleIDs[puzzleID]
	return ok
}

func (p *PlayerProfile) HasAchievement(id string) bool {
	_, ok := p.UnlockedAchievementIDs[id]
	return ok
}

// RecordSuccess bumps the streak and keeps highest >= current.
func (p *PlayerProfile) RecordSuccess(points int) {
	p.TotalPoints += points
	p.CurrentStreak++
	if p.CurrentStreak > p.HighestStreak {
		p.HighestStreak = p.CurrentStreak
	}
}

func (p *PlayerProfile) RecordFailure() {
	p.CurrentStreak = 0
}

// AverageCompletionTime is the mean of the best times, 0 when there are none.
func (p *PlayerProfile) AverageCompletionTime() float64 {
	if len(p.BestCompletionTimeByPuzzle) == 0 {
		return 0
	}
	var sum float64
	for _, t := range p.BestCompletionTimeByPuzzle {
		sum += t
	}
	return sum / float64(len(p.BestCompletionTimeByPuzzle))
}

func (p *PlayerProfile) CompletedIDs() []int { return sortedInts(p.CompletedPuzzleIDs) }

func (p *PlayerProfile) ViewedIDs() []int { return sortedInts(p.ViewedPuzzleIDs) }

func (p *PlayerProfile) AchievementIDs() []string {
	ids := make([]string, 0, len(p.UnlockedAchievementIDs))
	for id := range p.UnlockedAchievementIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedInts(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ProfileView is the JSON shape of a profile, with sets flattened to sorted lists.
type ProfileView struct {
	PlayerID               string          `json:"player_id"`
	CompletedPuzzleIDs     []int           `json:"completed_puzzle_ids"`
	ViewedPuzzleIDs        []int           `json:"viewed_puzzle_ids"`
	BestCompletionTimes    map[int]float64 `json:"best_completion_times"`
	AttemptsByPuzzle       map[int]int     `json:"attempts_by_puzzle"`
	TotalPoints            int             `json:"total_points"`
	CurrentStreak          int             `json:"current_streak"`
	HighestStreak          int             `json:"highest_streak"`
	UnlockedAchievementIDs []string        `json:"unlocked_achievement_ids"`
	TimePlayedSeconds      float64         `json:"time_played_seconds"`
}

func (p *PlayerProfile) View() ProfileView {
	return ProfileView{
		PlayerID:               p.PlayerID,
		CompletedPuzzleIDs:     p.CompletedIDs(),
		ViewedPuzzleIDs:        p.ViewedIDs(),
		BestCompletionTimes:    p.BestCompletionTimeByPuzzle,
		AttemptsByPuzzle:       p.AttemptsByPuzzle,
		TotalPoints:            p.TotalPoints,
		CurrentStreak:          p.CurrentStreak,
		HighestStreak:          p.HighestStreak,
		UnlockedAchievementIDs: p.AchievementIDs(),
		TimePlayedSeconds:      p.TimePlayedSeconds,
	}
}

type CategoryProgress struct {
	Category   string `json:"category"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

type PlayerStats struct {
	TotalPuzzlesAttempted int                `json:"total_puzzles_attempted"`
	TotalPuzzlesCompleted int                `json:"total_puzzles_completed"`
	CompletionRate        float64            `json:"completion_rate"`
	AvgAttempts           float64            `json:"avg_attempts"`
	AvgCompletionTime     float64            `json:"avg_completion_time"`
	FastestCompletion     float64            `json:"fastest_completion"`
	TimePlayedSeconds     float64            `json:"time_played_seconds"`
	AchievementsUnlocked  int                `json:"achievements_unlocked"`
	TotalPoints           int                `json:"total_points"`
	CurrentStreak         int                `json:"current_streak"`
	HighestStreak         int                `json:"highest_streak"`
	TotalAttempts         int                `json:"total_attempts"`
	SuccessfulAttempts    int                `json:"successful_attempts"`
	Accuracy              int                `json:"accuracy"` // percent
	Categories            []CategoryProgress `json:"categories"`
}

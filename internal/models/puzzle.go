package models

import "strings"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Order sorts difficulties from easiest to hardest.
func (d Difficulty) Order() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 4
	}
}

// TutorialCategory is the category whose puzzles make up the tutorial.
const TutorialCategory = "Tutorial"

type Hint struct {
	Text           string `json:"text"`
	PointDeduction int    `json:"point_deduction"`
}

type Puzzle struct {
	ID                int        `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	LearningObjective string     `json:"learning_objective,omitempty"`
	Category          string     `json:"category"`
	Difficulty        Difficulty `json:"difficulty"`
	BasePoints        int        `json:"base_points"`
	TimeLimitSeconds  *int       `json:"time_limit_seconds,omitempty"` // nil = unlimited
	MaxAttempts       *int       `json:"max_attempts,omitempty"`       // nil = unlimited
	Hints             []Hint     `json:"-"`
	Answer            string     `json:"-"`
	AlternateAnswers  []string   `json:"-"`
}

// HasTimeLimit reports whether the puzzle is timed.
func (p Puzzle) HasTimeLimit() bool {
	return p.TimeLimitSeconds != nil && *p.TimeLimitSeconds > 0
}

// NormalizeAnswer is the canonical form answers are compared in.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckAnswer compares a submitted answer against the accepted answer set.
func (p Puzzle) CheckAnswer(answer string) bool {
	given := NormalizeAnswer(answer)
	if given == "" {
		return false
	}
	if given == NormalizeAnswer(p.Answer) {
		return true
	}
	for _, alt := range p.AlternateAnswers {
		if given == NormalizeAnswer(alt) {
			return true
		}
	}
	return false
}

package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vytor/escaperoom/internal/logger"
	"github.com/vytor/escaperoom/internal/models"
)

// catalogFile is the on-disk YAML layout.
type catalogFile struct {
	Puzzles      []puzzleFile      `yaml:"puzzles"`
	Achievements []achievementFile `yaml:"achievements"`
}

type puzzleFile struct {
	ID                int        `yaml:"id"`
	Title             string     `yaml:"title"`
	Description       string     `yaml:"description"`
	LearningObjective string     `yaml:"learning_objective"`
	Category          string     `yaml:"category"`
	Difficulty        string     `yaml:"difficulty"`
	BasePoints        int        `yaml:"base_points"`
	TimeLimitSeconds  *int       `yaml:"time_limit_seconds"`
	MaxAttempts       *int       `yaml:"max_attempts"`
	Hints             []hintFile `yaml:"hints"`
	Answer            string     `yaml:"answer"`
	AlternateAnswers  []string   `yaml:"alternate_answers"`
}

type hintFile struct {
	Text      string `yaml:"text"`
	Deduction int    `yaml:"deduction"`
}

type achievementFile struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	PointsBonus int    `yaml:"points_bonus"`
	Rule        string `yaml:"rule"`
}

// LoadFromFile reads and validates a catalog YAML file.
func LoadFromFile(path string) (*Catalog, error) {
	log := logger.Default().WithPrefix("catalog")
	log.Info("loading catalog from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		log.Error("invalid catalog %s: %v", path, err)
		return nil, err
	}

	log.Info("catalog loaded: %d puzzles, %d achievements", c.Len(), len(c.achievements))
	return c, nil
}

// Parse builds a Catalog from YAML. Achievement rules are parsed here, so a
// malformed rule fails the load instead of surfacing during play.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	puzzles := make([]models.Puzzle, 0, len(f.Puzzles))
	for _, pf := range f.Puzzles {
		puzzles = append(puzzles, pf.toModel())
	}

	achievements := make([]models.Achievement, 0, len(f.Achievements))
	for _, af := range f.Achievements {
		rule, err := models.ParseRule(af.Rule)
		if err != nil {
			return nil, fmt.Errorf("achievement %q: %w", af.ID, err)
		}
		achievements = append(achievements, models.Achievement{
			ID:          af.ID,
			Title:       af.Title,
			Description: af.Description,
			PointsBonus: af.PointsBonus,
			Rule:        rule,
		})
	}

	return New(puzzles, achievements)
}

func (pf puzzleFile) toModel() models.Puzzle {
	hints := make([]models.Hint, 0, len(pf.Hints))
	for _, h := range pf.Hints {
		hints = append(hints, models.Hint{Text: h.Text, PointDeduction: h.Deduction})
	}
	return models.Puzzle{
		ID:                pf.ID,
		Title:             pf.Title,
		Description:       pf.Description,
		LearningObjective: pf.LearningObjective,
		Category:          strings.TrimSpace(pf.Category),
		Difficulty:        parseDifficulty(pf.Difficulty),
		BasePoints:        pf.BasePoints,
		TimeLimitSeconds:  pf.TimeLimitSeconds,
		MaxAttempts:       pf.MaxAttempts,
		Hints:             hints,
		Answer:            pf.Answer,
		AlternateAnswers:  pf.AlternateAnswers,
	}
}

// parseDifficulty accepts any casing; unknown values are left for validation.
func parseDifficulty(s string) models.Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return models.DifficultyEasy
	case "medium":
		return models.DifficultyMedium
	case "hard":
		return models.DifficultyHard
	default:
		return models.Difficulty(s)
	}
}

// Package catalog holds the read-only puzzle and achievement definitions the
// engine scores against.
package catalog

import (
	"fmt"
	"sort"

	"github.com/vytor/escaperoom/internal/models"
)

// Catalog is immutable once built and safe for concurrent readers.
type Catalog struct {
	puzzles      map[int]models.Puzzle
	ordered      []int
	byCategory   map[string][]int
	achievements []models.Achievement
}

// New validates puzzles and achievements and indexes them.
func New(puzzles []models.Puzzle, achievements []models.Achievement) (*Catalog, error) {
	c := &Catalog{
		puzzles:    make(map[int]models.Puzzle, len(puzzles)),
		byCategory: make(map[string][]int),
	}

	for _, p := range puzzles {
		if err := validatePuzzle(p); err != nil {
			return nil, err
		}
		if _, dup := c.puzzles[p.ID]; dup {
			return nil, fmt.Errorf("duplicate puzzle id %d", p.ID)
		}
		c.puzzles[p.ID] = p
		c.ordered = append(c.ordered, p.ID)
		c.byCategory[p.Category] = append(c.byCategory[p.Category], p.ID)
	}
	sort.Ints(c.ordered)
	for _, ids := range c.byCategory {
		sort.Ints(ids)
	}

	seen := make(map[string]bool, len(achievements))
	for _, a := range achievements {
		if a.ID == "" {
			return nil, fmt.Errorf("achievement id is required")
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("duplicate achievement id %q", a.ID)
		}
		if a.Rule == nil {
			return nil, fmt.Errorf("achievement %q has no rule", a.ID)
		}
		if a.PointsBonus < 0 {
			return nil, fmt.Errorf("achievement %q: points_bonus must not be negative", a.ID)
		}
		seen[a.ID] = true
	}
	c.achievements = append([]models.Achievement(nil), achievements...)

	return c, nil
}

func validatePuzzle(p models.Puzzle) error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("puzzle id must be positive, got %d", p.ID)
	case p.Category == "":
		return fmt.Errorf("puzzle %d: category is required", p.ID)
	case !p.Difficulty.Valid():
		return fmt.Errorf("puzzle %d: unknown difficulty %q", p.ID, p.Difficulty)
	case p.BasePoints < 0:
		return fmt.Errorf("puzzle %d: base_points must not be negative", p.ID)
	case p.TimeLimitSeconds != nil && *p.TimeLimitSeconds <= 0:
		return fmt.Errorf("puzzle %d: time_limit_seconds must be positive", p.ID)
	case p.MaxAttempts != nil && *p.MaxAttempts <= 0:
		return fmt.Errorf("puzzle %d: max_attempts must be positive", p.ID)
	case models.NormalizeAnswer(p.Answer) == "":
		return fmt.Errorf("puzzle %d: answer is required", p.ID)
	}
	for i, h := range p.Hints {
		if h.PointDeduction < 0 {
			return fmt.Errorf("puzzle %d: hint %d deduction must not be negative", p.ID, i)
		}
	}
	return nil
}

// Get returns the puzzle with the given id.
func (c *Catalog) Get(id int) (models.Puzzle, bool) {
	p, ok := c.puzzles[id]
	return p, ok
}

// All returns every puzzle ordered by id.
func (c *Catalog) All() []models.Puzzle {
	out := make([]models.Puzzle, 0, len(c.ordered))
	for _, id := range c.ordered {
		out = append(out, c.puzzles[id])
	}
	return out
}

func (c *Catalog) Len() int { return len(c.ordered) }

// Categories returns the category names in alphabetical order.
func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.byCategory))
	for name := range c.byCategory {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CategoryPuzzleIDs returns the ids of the puzzles in category, nil if none.
func (c *Catalog) CategoryPuzzleIDs(category string) []int {
	ids := c.byCategory[category]
	if len(ids) == 0 {
		return nil
	}
	return append([]int(nil), ids...)
}

// Has reports whether id is a puzzle in the catalog.
func (c *Catalog) Has(id int) bool {
	_, ok := c.puzzles[id]
	return ok
}

func (c *Catalog) Achievements() []models.Achievement {
	return append([]models.Achievement(nil), c.achievements...)
}

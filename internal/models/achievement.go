package models

import (
	"fmt"
	"strconv"
	"strings"
)

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PointsBonus int    `json:"points_bonus"`
	Rule        Rule   `json:"-"`
}

// Rule is the closed set of unlock conditions. Only the types in this file
// implement it.
type Rule interface {
	isRule()
	String() string
}

type TutorialCompleted struct{}

type CategoryCount struct {
	Category string
	Count    int
}

type NoHintsCount struct {
	Count int
}

type FastestUnder struct {
	Seconds float64
}

type HalfCatalogCompleted struct{}

type FullCatalogCompleted struct{}

type FirstCompletion struct{}

func (TutorialCompleted) isRule()    {}
func (CategoryCount) isRule()        {}
func (NoHintsCount) isRule()         {}
func (FastestUnder) isRule()         {}
func (HalfCatalogCompleted) isRule() {}
func (FullCatalogCompleted) isRule() {}
func (FirstCompletion) isRule()      {}

func (TutorialCompleted) String() string { return "tutorial_completed" }
func (r CategoryCount) String() string   { return fmt.Sprintf("category:%s:%d", r.Category, r.Count) }
func (r NoHintsCount) String() string    { return fmt.Sprintf("no_hints:%d", r.Count) }
func (r FastestUnder) String() string {
	return "time:" + strconv.FormatFloat(r.Seconds, 'f', -1, 64)
}
func (HalfCatalogCompleted) String() string { return "half_catalog" }
func (FullCatalogCompleted) String() string { return "full_catalog" }
func (FirstCompletion) String() string      { return "first_completion" }

// ParseRule turns a requirement string such as "category:Cryptography:3"
// into its Rule. Unknown tags and malformed arguments are errors.
func ParseRule(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	tag, rest, _ := strings.Cut(s, ":")
	switch tag {
	case "tutorial_completed":
		if rest != "" {
			return nil, fmt.Errorf("rule %q takes no arguments", s)
		}
		return TutorialCompleted{}, nil
	case "half_catalog":
		if rest != "" {
			return nil, fmt.Errorf("rule %q takes no arguments", s)
		}
		return HalfCatalogCompleted{}, nil
	case "full_catalog":
		if rest != "" {
			return nil, fmt.Errorf("rule %q takes no arguments", s)
		}
		return FullCatalogCompleted{}, nil
	case "first_completion":
		if rest != "" {
			return nil, fmt.Errorf("rule %q takes no arguments", s)
		}
		return FirstCompletion{}, nil
	case "category":
		// Category names may contain spaces but not colons; the count is last.
		idx := strings.LastIndex(rest, ":")
		if idx <= 0 {
			return nil, fmt.Errorf("rule %q: want category:<name>:<count>", s)
		}
		name := strings.TrimSpace(rest[:idx])
		count, err := positiveInt(rest[idx+1:])
		if err != nil || name == "" {
			return nil, fmt.Errorf("rule %q: want category:<name>:<count>", s)
		}
		return CategoryCount{Category: name, Count: count}, nil
	case "no_hints":
		count, err := positiveInt(rest)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", s, err)
		}
		return NoHintsCount{Count: count}, nil
	case "time":
		secs, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("rule %q: want time:<seconds> with seconds > 0", s)
		}
		return FastestUnder{Seconds: secs}, nil
	default:
		return nil, fmt.Errorf("unknown achievement rule %q", s)
	}
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("count must be positive, got %d", n)
	}
	return n, nil
}

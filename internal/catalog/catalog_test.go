package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/escaperoom/internal/catalog"
	"github.com/vytor/escaperoom/internal/models"
)

const sampleYAML = `
puzzles:
  - id: 2
    title: Caesar Cipher
    category: Cryptography
    difficulty: easy
    base_points: 100
    time_limit_seconds: 60
    hints:
      - text: shift back by three
        deduction: 20
    answer: Caesar cipher is basic
  - id: 1
    title: Welcome
    category: Tutorial
    difficulty: Easy
    base_points: 50
    max_attempts: 2
    answer: open
    alternate_answers: ["opened"]
achievements:
  - id: cryptographer
    title: Cryptographer
    points_bonus: 100
    rule: "category:Cryptography:1"
  - id: first_steps
    title: First Steps
    points_bonus: 10
    rule: first_completion
`

func TestParse(t *testing.T) {
	c, err := catalog.Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].ID, "puzzles are ordered by id")

	p, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, models.DifficultyEasy, p.Difficulty)
	require.NotNil(t, p.TimeLimitSeconds)
	assert.Equal(t, 60, *p.TimeLimitSeconds)
	require.Len(t, p.Hints, 1)
	assert.Equal(t, 20, p.Hints[0].PointDeduction)
	assert.True(t, p.CheckAnswer("caesar cipher is basic"))

	tutorial, ok := c.Get(1)
	require.True(t, ok)
	require.NotNil(t, tutorial.MaxAttempts)
	assert.Equal(t, 2, *tutorial.MaxAttempts)
	assert.Nil(t, tutorial.TimeLimitSeconds)

	_, ok = c.Get(99)
	assert.False(t, ok)

	assert.Equal(t, []string{"Cryptography", "Tutorial"}, c.Categories())
	assert.Equal(t, []int{1}, c.CategoryPuzzleIDs(models.TutorialCategory))
	assert.Nil(t, c.CategoryPuzzleIDs("Hashing"))

	achievements := c.Achievements()
	require.Len(t, achievements, 2)
	assert.Equal(t, models.CategoryCount{Category: "Cryptography", Count: 1}, achievements[0].Rule)
	assert.Equal(t, models.FirstCompletion{}, achievements[1].Rule)

	assert.Equal(t, "first_steps", achievements[1].ID)
	assert.Equal(t, 10, achievements[1].PointsBonus)
	assert.True(t, c.Has(1))
	assert.False(t, c.Has(99))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unknown rule",
			yaml: `
puzzles: []
achievements:
  - id: x
    rule: "speed:10"
`,
			wantErr: "unknown achievement rule",
		},
		{
			name: "malformed category rule",
			yaml: `
achievements:
  - id: x
    rule: "category:Cryptography"
`,
			wantErr: "category",
		},
		{
			name: "duplicate puzzle",
			yaml: `
puzzles:
  - {id: 1, category: A, difficulty: Easy, base_points: 10, answer: a}
  - {id: 1, category: A, difficulty: Easy, base_points: 10, answer: b}
`,
			wantErr: "duplicate puzzle id 1",
		},
		{
			name: "bad difficulty",
			yaml: `
puzzles:
  - {id: 1, category: A, difficulty: Insane, base_points: 10, answer: a}
`,
			wantErr: "unknown difficulty",
		},
		{
			name: "missing answer",
			yaml: `
puzzles:
  - {id: 1, category: A, difficulty: Easy, base_points: 10}
`,
			wantErr: "answer is required",
		},
		{
			name: "zero time limit",
			yaml: `
puzzles:
  - {id: 1, category: A, difficulty: Easy, base_points: 10, answer: a, time_limit_seconds: 0}
`,
			wantErr: "time_limit_seconds",
		},
		{
			name: "duplicate achievement",
			yaml: `
achievements:
  - {id: a, rule: half_catalog}
  - {id: a, rule: full_catalog}
`,
			wantErr: "duplicate achievement",
		},
		{
			name:    "not yaml",
			yaml:    "puzzles: [",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	c, err := catalog.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = catalog.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFile_BundledCatalog(t *testing.T) {
	c, err := catalog.LoadFromFile(filepath.Join("..", "..", "data", "catalog.yaml"))
	require.NoError(t, err)

	assert.Greater(t, c.Len(), 0)
	assert.Len(t, c.CategoryPuzzleIDs("Cryptography"), 3)
	assert.NotEmpty(t, c.CategoryPuzzleIDs(models.TutorialCategory))
	assert.NotEmpty(t, c.Achievements())
}

func TestAchievementsReturnsCopy(t *testing.T) {
	c, err := catalog.Parse([]byte(sampleYAML))
	require.NoError(t, err)

	list := c.Achievements()
	list[0].PointsBonus = 9999

	assert.Equal(t, 100, c.Achievements()[0].PointsBonus)
}

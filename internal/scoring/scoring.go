// Package scoring turns a successful attempt into points.
package scoring

import (
	"math"

	"github.com/vytor/escaperoom/internal/models"
)

// MinimumShare is the fraction of base points every success is worth, and
// also the largest fraction the time bonus can add.
const MinimumShare = 0.2

// ComputePoints returns the points for a successful attempt:
// base points, minus the deductions of the hints used (in order), plus a
// time bonus of up to 20% of base when finished inside the time limit, never
// less than 20% of base. Fractions truncate.
func ComputePoints(puzzle models.Puzzle, hintsUsed int, elapsedSeconds float64) int {
	base := puzzle.BasePoints
	points := base - HintDeduction(puzzle, hintsUsed)
	points += TimeBonus(puzzle, elapsedSeconds)

	if floor := MinimumPoints(puzzle); points < floor {
		points = floor
	}
	return points
}

// HintDeduction sums the deductions of the first hintsUsed hints. Asking for
// more hints than exist only counts the ones that do.
func HintDeduction(puzzle models.Puzzle, hintsUsed int) int {
	if hintsUsed <= 0 {
		return 0
	}
	if hintsUsed > len(puzzle.Hints) {
		hintsUsed = len(puzzle.Hints)
	}
	total := 0
	for _, h := range puzzle.Hints[:hintsUsed] {
		total += h.PointDeduction
	}
	return total
}

// TimeBonus is floor(base * 0.2 * (1 - elapsed/limit)) when the puzzle is
// timed and finished before the limit, 0 otherwise.
func TimeBonus(puzzle models.Puzzle, elapsedSeconds float64) int {
	if !puzzle.HasTimeLimit() {
		return 0
	}
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	limit := float64(*puzzle.TimeLimitSeconds)
	if elapsedSeconds >= limit {
		return 0
	}
	// base*(limit-elapsed) / (5*limit) is a single rounding step, so whole
	// second inputs floor exactly.
	return int(math.Floor(float64(puzzle.BasePoints) * (limit - elapsedSeconds) / (5 * limit)))
}

// MinimumPoints is floor(base * 0.2).
func MinimumPoints(puzzle models.Puzzle) int {
	if puzzle.BasePoints <= 0 {
		return 0
	}
	return puzzle.BasePoints / 5
}

// Package achievement decides which achievements a player has earned.
package achievement

import (
	"github.com/vytor/escaperoom/internal/models"
)

// PuzzleSet is the part of the catalog the rules need.
type PuzzleSet interface {
	Len() int
	Has(id int) bool
	CategoryPuzzleIDs(category string) []int
}

// Evaluate checks every achievement the profile does not hold yet and
// returns the ones that are now satisfied. Each one is recorded on the
// profile and its bonus added to TotalPoints, so calling Evaluate again with
// the same inputs returns nothing.
func Evaluate(profile *models.PlayerProfile, ledger []models.Attempt, puzzles PuzzleSet, achievements []models.Achievement) []models.Achievement {
	var unlocked []models.Achievement
	for _, a := range achievements {
		if profile.HasAchievement(a.ID) {
			continue
		}
		if !Satisfied(a.Rule, profile, ledger, puzzles) {
			continue
		}
		profile.UnlockedAchievementIDs[a.ID] = struct{}{}
		profile.TotalPoints += a.PointsBonus
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// Satisfied reports whether rule holds for the profile and its attempt ledger.
func Satisfied(rule models.Rule, profile *models.PlayerProfile, ledger []models.Attempt, puzzles PuzzleSet) bool {
	switch r := rule.(type) {
	case models.TutorialCompleted:
		ids := puzzles.CategoryPuzzleIDs(models.TutorialCategory)
		if len(ids) == 0 {
			return false
		}
		for _, id := range ids {
			if !profile.HasCompleted(id) {
				return false
			}
		}
		return true

	case models.CategoryCount:
		n := 0
		for _, id := range puzzles.CategoryPuzzleIDs(r.Category) {
			if profile.HasCompleted(id) {
				n++
			}
		}
		return n >= r.Count

	case models.NoHintsCount:
		n := 0
		for _, a := range ledger {
			if a.Status == models.AttemptSucceeded && a.HintsUsed == 0 {
				n++
			}
		}
		return n >= r.Count

	case models.FastestUnder:
		for _, a := range ledger {
			if a.Status == models.AttemptSucceeded && a.ElapsedSeconds <= r.Seconds {
				return true
			}
		}
		return false

	case models.HalfCatalogCompleted:
		total := puzzles.Len()
		return total > 0 && completedInCatalog(profile, puzzles)*2 >= total

	case models.FullCatalogCompleted:
		total := puzzles.Len()
		return total > 0 && completedInCatalog(profile, puzzles) == total

	case models.FirstCompletion:
		return len(profile.CompletedPuzzleIDs) > 0
	}
	return false
}

// completedInCatalog ignores completions of puzzles since removed from the catalog.
func completedInCatalog(profile *models.PlayerProfile, puzzles PuzzleSet) int {
	n := 0
	for id := range profile.CompletedPuzzleIDs {
		if puzzles.Has(id) {
			n++
		}
	}
	return n
}

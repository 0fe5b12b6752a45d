package services

import (
	"fmt"
	"sort"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
)

// maxCategoryAssignments caps how many of the five categories a single
// player may be fielded in for one encounter.
const maxCategoryAssignments = 3

// requiredGenders lists the genders a category must field, order
// insensitive for doubles.
func requiredGenders(c models.Category) []models.Gender {
	switch c {
	case models.CategoryMensSingles:
		return []models.Gender{models.GenderMale}
	case models.CategoryWomensSingles:
		return []models.Gender{models.GenderFemale}
	case models.CategoryMensDoubles:
		return []models.Gender{models.GenderMale, models.GenderMale}
	case models.CategoryWomensDoubles:
		return []models.Gender{models.GenderFemale, models.GenderFemale}
	case models.CategoryMixedDoubles:
		return []models.Gender{models.GenderMale, models.GenderFemale}
	}
	return nil
}

// ValidateLineup checks a submitted lineup against the roster: every
// category covered with the right player count and genders, every player on
// the roster, nobody fielded in more than three categories. Violations are
// rejected as a whole; nothing partial is ever accepted.
func ValidateLineup(roster []*models.Player, lineup models.Lineup) error {
	byID := make(map[int]*models.Player, len(roster))
	for _, p := range roster {
		byID[p.ID] = p
	}

	for _, category := range models.Categories {
		ids, ok := lineup[category]
		if !ok || len(ids) == 0 {
			return fmt.Errorf("%w: missing %s", ErrLineupIncomplete, category)
		}
		required := requiredGenders(category)
		if len(ids) != len(required) {
			return fmt.Errorf("%w: %s needs %d players, got %d",
				ErrLineupWrongSize, category, len(required), len(ids))
		}

		need := make(map[models.Gender]int, 2)
		for _, g := range required {
			need[g]++
		}
		seen := make(map[int]bool, len(ids))
		for _, id := range ids {
			player, ok := byID[id]
			if !ok {
				return fmt.Errorf("%w: player %d in %s", ErrLineupUnknownPlayer, id, category)
			}
			if seen[id] {
				return fmt.Errorf("%w: player %d fielded twice in %s", ErrLineupWrongSize, id, category)
			}
			seen[id] = true
			if need[player.Gender] == 0 {
				return fmt.Errorf("%w: player %d (%s) in %s",
					ErrLineupGenderMismatch, id, player.Gender, category)
			}
			need[player.Gender]--
		}
	}

	for id, count := range lineup.Assignments() {
		if count > maxCategoryAssignments {
			return fmt.Errorf("%w: player %d fielded %d times", ErrLineupUsageExceeded, id, count)
		}
	}
	return nil
}

// AutoGenerateLineup fills the five categories from the roster's best-ranked
// eligible players, respecting genders and the assignment cap. Categories
// the roster cannot field are left out; they are voided at execution time.
func AutoGenerateLineup(roster []*models.Player) models.Lineup {
	sorted := make([]*models.Player, len(roster))
	copy(sorted, roster)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank > sorted[j].Rank
		}
		return sorted[i].ID < sorted[j].ID
	})

	usage := make(map[int]int)
	pick := func(gender models.Gender, taken map[int]bool) (*models.Player, bool) {
		for _, p := range sorted {
			if p.Gender != gender || taken[p.ID] || usage[p.ID] >= maxCategoryAssignments {
				continue
			}
			return p, true
		}
		return nil, false
	}

	lineup := make(models.Lineup, len(models.Categories))
	for _, category := range models.Categories {
		taken := make(map[int]bool)
		var ids []int
		complete := true
		for _, gender := range requiredGenders(category) {
			player, ok := pick(gender, taken)
			if !ok {
				complete = false
				break
			}
			taken[player.ID] = true
			ids = append(ids, player.ID)
		}
		if !complete {
			continue
		}
		for _, id := range ids {
			usage[id]++
		}
		lineup[category] = ids
	}
	return lineup
}

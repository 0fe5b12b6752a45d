package services

import (
	"math"
	"math/rand"
	"time"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
)

// injuryArchetype is one entry of the fixed injury table.
type injuryArchetype struct {
	name            string
	severity        models.InjurySeverity
	recoveryMinutes int
	affectedStats   []string
	penalty         float64
}

// The risk model makes injuries a frequent mechanic on purpose: per-match
// risk runs 30-80%, gated only by the capped prevention stat.
var injuryArchetypes = []injuryArchetype{
	{"sprained_ankle", models.SeverityMinor, 30, []string{"speed", "agility"}, 20},
	{"muscle_strain", models.SeverityMinor, 45, []string{"strength", "endurance"}, 25},
	{"shoulder_tendinitis", models.SeverityModerate, 60, []string{"smash", "serve"}, 30},
	{"knee_inflammation", models.SeverityModerate, 90, []string{"speed", "endurance", "explosivity"}, 35},
	{"back_injury", models.SeveritySevere, 120, []string{"strength", "smash", "defense"}, 40},
}

type InjuryService interface {
	// Risk returns the per-match injury probability for the given prevention
	// stat: max(0.3, 0.8 - prevention/200).
	Risk(injuryPrevention float64) float64
	// MaybeInjure rolls the risk and, on a hit, draws a uniform archetype.
	// The returned injury's AffectedStats are frozen from the current stats;
	// they are not revised if base stats change later. Returns nil when the
	// player escapes injury.
	MaybeInjure(stats models.PlayerStats, now time.Time) *models.Injury
}

type injuryService struct {
	rng *rand.Rand
}

func NewInjuryService(rng *rand.Rand) InjuryService {
	return &injuryService{rng: rng}
}

func (s *injuryService) Risk(injuryPrevention float64) float64 {
	return math.Max(0.3, 0.8-injuryPrevention/200)
}

func (s *injuryService) MaybeInjure(stats models.PlayerStats, now time.Time) *models.Injury {
	if s.rng.Float64() >= s.Risk(stats.InjuryPrevention) {
		return nil
	}

	arch := injuryArchetypes[s.rng.Intn(len(injuryArchetypes))]

	affected := make(map[string]float64, len(arch.affectedStats))
	for _, name := range arch.affectedStats {
		affected[name] = math.Max(0, stats.Get(name)-arch.penalty)
	}

	return &models.Injury{
		Type:            arch.name,
		Severity:        arch.severity,
		RecoveryEndTime: now.Add(time.Duration(arch.recoveryMinutes) * time.Minute).UnixMilli(),
		AffectedStats:   affected,
	}
}

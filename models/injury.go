package models

import "time"

type InjurySeverity string

const (
	SeverityMinor    InjurySeverity = "minor"
	SeverityModerate InjurySeverity = "moderate"
	SeveritySevere   InjurySeverity = "severe"
)

// Ordinal gives the severity a numeric weight for strength penalties.
func (s InjurySeverity) Ordinal() int {
	switch s {
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	}
	return 1
}

// Injury is one entry of a player's injuries jsonb array. AffectedStats
// holds the reduced stat values frozen at injury time; they are not revised
// if the base stats change before recovery.
type Injury struct {
	Type            string             `json:"type"`
	Severity        InjurySeverity     `json:"severity"`
	RecoveryEndTime int64              `json:"recovery_end_time"`
	AffectedStats   map[string]float64 `json:"affected_stats,omitempty"`
}

// Active reports whether the injury is still recovering at the given time.
// RecoveryEndTime is epoch milliseconds.
func (i Injury) Active(now time.Time) bool {
	return i.RecoveryEndTime > now.UnixMilli()
}

package models

// Tier is a player's classification label, from the entry tier P12 up to the
// national elite N1.
type Tier string

const (
	TierP12 Tier = "P12"
	TierP11 Tier = "P11"
	TierP10 Tier = "P10"
	TierD9  Tier = "D9"
	TierD8  Tier = "D8"
	TierD7  Tier = "D7"
	TierR6  Tier = "R6"
	TierR5  Tier = "R5"
	TierR4  Tier = "R4"
	TierN3  Tier = "N3"
	TierN2  Tier = "N2"
	TierN1  Tier = "N1"
)

// tierOrder lists tiers from weakest to strongest. tierThresholds[i] is the
// point total at which a player outgrows tierOrder[i]; anything at or above
// the last threshold is N1.
var (
	tierOrder = []Tier{
		TierP12, TierP11, TierP10, TierD9, TierD8, TierD7,
		TierR6, TierR5, TierR4, TierN3, TierN2, TierN1,
	}
	tierThresholds = []float64{20, 40, 70, 100, 130, 160, 200, 250, 300, 370, 450}

	// tierPoints is the value of beating a player of each tier.
	tierPoints = map[Tier]float64{
		TierP12: 5, TierP11: 8, TierP10: 12, TierD9: 17,
		TierD8: 23, TierD7: 30, TierR6: 38, TierR5: 47,
		TierR4: 57, TierN3: 68, TierN2: 80, TierN1: 93,
	}
)

// TierForPoints maps a rolling point total onto its tier label.
func TierForPoints(points float64) Tier {
	for i, threshold := range tierThresholds {
		if points < threshold {
			return tierOrder[i]
		}
	}
	return TierN1
}

// PointsForTier returns the points awarded for defeating a player holding
// the given tier. Unknown labels score as P12.
func PointsForTier(t Tier) float64 {
	if pts, ok := tierPoints[t]; ok {
		return pts
	}
	return tierPoints[TierP12]
}

package brackets

// byeTeam pads an odd field so the rotation stays balanced. Pairings against
// it are dropped from the output.
const byeTeam = -1

// BergerDoubleRoundRobin builds a complete double round-robin schedule for
// the given teams using Berger tables: the first team stays fixed while the
// rest rotate one position per matchday, pairing symmetrically from the ends
// inward. Home and away alternate with matchday parity. The second half of
// the schedule repeats the first with home and away swapped, for 2*(N-1)
// matchdays in total (2*N with an odd field, minus the dropped bye slots).
func BergerDoubleRoundRobin(teamIDs []int) []Fixture {
	teams := append([]int(nil), teamIDs...)
	if len(teams)%2 == 1 {
		teams = append(teams, byeTeam)
	}
	n := len(teams)
	if n < 2 {
		return nil
	}
	rounds := n - 1

	var firstLeg []Fixture
	ring := append([]int(nil), teams...)
	for r := 0; r < rounds; r++ {
		for i := 0; i < n/2; i++ {
			a, b := ring[i], ring[n-1-i]
			if a == byeTeam || b == byeTeam {
				continue
			}
			home, away := a, b
			if r%2 == 1 {
				home, away = b, a
			}
			firstLeg = append(firstLeg, Fixture{HomeTeamID: home, AwayTeamID: away, Matchday: r + 1})
		}
		// Keep ring[0] fixed, rotate the rest clockwise by one.
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}

	fixtures := make([]Fixture, 0, len(firstLeg)*2)
	fixtures = append(fixtures, firstLeg...)
	for _, f := range firstLeg {
		fixtures = append(fixtures, Fixture{
			HomeTeamID: f.AwayTeamID,
			AwayTeamID: f.HomeTeamID,
			Matchday:   f.Matchday + rounds,
		})
	}
	return fixtures
}

// MatchdayWeeks buckets matchdays evenly into the given number of weeks:
// floor(totalMatchdays/weeks) per week, with the remainder distributed to the
// earliest weeks. The returned slice maps matchday index (0-based) to a
// 1-based week number.
func MatchdayWeeks(totalMatchdays, weeks int) []int {
	if totalMatchdays <= 0 || weeks <= 0 {
		return nil
	}
	base := totalMatchdays / weeks
	rem := totalMatchdays % weeks

	out := make([]int, 0, totalMatchdays)
	for w := 1; w <= weeks; w++ {
		count := base
		if w <= rem {
			count++
		}
		for i := 0; i < count; i++ {
			out = append(out, w)
		}
	}
	return out
}

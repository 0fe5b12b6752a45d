package brackets

import "math/rand"

// PairRound shuffles the given entrants and pairs them consecutively. With an
// odd field the leftover entrant receives a bye. The input slice is not
// modified.
func PairRound(playerIDs []int, rng *rand.Rand) []Pairing {
	if len(playerIDs) == 0 {
		return nil
	}

	shuffled := make([]int, len(playerIDs))
	copy(shuffled, playerIDs)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	pairings := make([]Pairing, 0, (len(shuffled)+1)/2)
	for i := 0; i+1 < len(shuffled); i += 2 {
		p2 := shuffled[i+1]
		pairings = append(pairings, Pairing{Player1ID: shuffled[i], Player2ID: &p2})
	}
	if len(shuffled)%2 == 1 {
		pairings = append(pairings, Pairing{Player1ID: shuffled[len(shuffled)-1]})
	}
	return pairings
}

// RoundsForField returns the number of elimination rounds a field of n
// entrants needs until a single winner remains.
func RoundsForField(n int) int {
	rounds := 0
	for remaining := n; remaining > 1; remaining = (remaining + 1) / 2 {
		rounds++
	}
	return rounds
}

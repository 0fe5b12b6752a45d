package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
	"github.com/goldengitstar/leadminton-latest-sub001/repositories"
)

// rankingWindow is the trailing period a win keeps contributing points.
const rankingWindow = 90 * 24 * time.Hour

// rankingBestOf caps how many wins count toward the total.
const rankingBestOf = 6

// RankResult is the outcome of a rank computation.
type RankResult struct {
	Points float64
	Label  models.Tier
}

type RankingService interface {
	// ComputeRank derives a player's rank from their match history as of the
	// given time. Pure, no persistence.
	ComputeRank(playerID int, history []models.MatchRecord, asOf time.Time) RankResult
	// RecomputeAndStore loads the window of history, computes the rank and
	// writes it back onto the player row. Not retried on failure: the rank is
	// simply recomputed after the next match.
	RecomputeAndStore(ctx context.Context, playerID int, asOf time.Time) (RankResult, error)
}

type rankingService struct {
	matchRecordRepo repositories.MatchRecordRepository
	playerRepo      repositories.PlayerRepository
}

func NewRankingService(
	matchRecordRepo repositories.MatchRecordRepository,
	playerRepo repositories.PlayerRepository,
) RankingService {
	return &rankingService{
		matchRecordRepo: matchRecordRepo,
		playerRepo:      playerRepo,
	}
}

// ComputeRank awards, for each win inside the 90-day window, the fixed point
// value of the defeated opponent's tier at match time, then sums the six
// largest awards. A loss never subtracts: decay happens only when an old win
// falls out of the window.
func (s *rankingService) ComputeRank(playerID int, history []models.MatchRecord, asOf time.Time) RankResult {
	cutoff := asOf.Add(-rankingWindow)

	var awards []float64
	for _, rec := range history {
		if rec.CreatedAt.Before(cutoff) || rec.CreatedAt.After(asOf) {
			continue
		}
		if !rec.WonBy(playerID) {
			continue
		}
		opponentRank, ok := rec.OpponentRank(playerID)
		if !ok {
			// CPU or bye opponent without a numeric rank.
			continue
		}
		tier := models.TierForPoints(opponentRank)
		awards = append(awards, models.PointsForTier(tier))
	}

	if len(awards) == 0 {
		return RankResult{Points: 0, Label: models.TierP12}
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(awards)))
	if len(awards) > rankingBestOf {
		awards = awards[:rankingBestOf]
	}

	var sum float64
	for _, a := range awards {
		sum += a
	}
	sum = math.Round(sum*100) / 100

	return RankResult{Points: sum, Label: models.TierForPoints(sum)}
}

func (s *rankingService) RecomputeAndStore(ctx context.Context, playerID int, asOf time.Time) (RankResult, error) {
	history, err := s.matchRecordRepo.ListByPlayerSince(ctx, playerID, asOf.Add(-rankingWindow))
	if err != nil {
		return RankResult{}, fmt.Errorf("failed to load match history for player %d: %w", playerID, err)
	}

	result := s.ComputeRank(playerID, history, asOf)

	if err := s.playerRepo.UpdateRank(ctx, playerID, result.Points, result.Label); err != nil {
		return result, fmt.Errorf("failed to store rank for player %d: %w", playerID, err)
	}
	return result, nil
}

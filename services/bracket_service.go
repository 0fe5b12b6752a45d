package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/goldengitstar/leadminton-latest-sub001/brackets"
	"github.com/goldengitstar/leadminton-latest-sub001/models"
	"github.com/goldengitstar/leadminton-latest-sub001/repositories"
)

// BracketService drives single-elimination progression: field backfill and
// round-1 pairing at start, per-round winner promotion, and finalization with
// prize distribution. Every transition is guarded against the persisted state
// so overlapping ticks no-op instead of double-executing.
type BracketService interface {
	StartTournament(ctx context.Context, tournament *models.Tournament) error
	SimulateDueMatches(ctx context.Context, tournament *models.Tournament) error
	AdvanceBracket(ctx context.Context, tournament *models.Tournament) error
}

type bracketService struct {
	tournamentRepo  repositories.TournamentRepository
	matchRepo       repositories.MatchRepository
	playerRepo      repositories.PlayerRepository
	matchRecordRepo repositories.MatchRecordRepository
	ledgerRepo      repositories.LedgerRepository
	ranking         RankingService
	injuries        InjuryService
	simulator       MatchSimulator
	rng             *rand.Rand
	now             func() time.Time
	logger          *slog.Logger
}

func NewBracketService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	matchRecordRepo repositories.MatchRecordRepository,
	ledgerRepo repositories.LedgerRepository,
	ranking RankingService,
	injuries InjuryService,
	simulator MatchSimulator,
	rng *rand.Rand,
	now func() time.Time,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tournamentRepo:  tournamentRepo,
		matchRepo:       matchRepo,
		playerRepo:      playerRepo,
		matchRecordRepo: matchRecordRepo,
		ledgerRepo:      ledgerRepo,
		ranking:         ranking,
		injuries:        injuries,
		simulator:       simulator,
		rng:             rng,
		now:             now,
		logger:          logger,
	}
}

// StartTournament moves a due tournament from registration to in_progress,
// backfills the field with CPU players and generates round 1. The status CAS
// decides which of two racing ticks performs the generation.
func (s *bracketService) StartTournament(ctx context.Context, tournament *models.Tournament) error {
	if s.now().Before(tournament.StartTime) {
		return ErrTournamentNotDue
	}

	err := s.tournamentRepo.UpdateStatus(ctx, nil,
		tournament.ID, models.TournamentRegistrationOpen, models.TournamentInProgress)
	if errors.Is(err, repositories.ErrTournamentStale) {
		// Another invocation already started it.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to start tournament %d: %w", tournament.ID, err)
	}

	if missing := tournament.MaxParticipants - len(tournament.RegisteredPlayerIDs); missing > 0 {
		cpuIDs, backfillErr := s.backfillCPUPlayers(ctx, tournament, missing)
		if backfillErr != nil {
			return backfillErr
		}
		tournament.RegisteredPlayerIDs = append(tournament.RegisteredPlayerIDs, cpuIDs...)
	}
	if len(tournament.RegisteredPlayerIDs) == 0 {
		return ErrNoParticipants
	}

	tournament.Status = models.TournamentInProgress
	if err := s.ensureFirstRoundLevel(ctx, tournament); err != nil {
		return err
	}
	return s.generateRound(ctx, tournament, tournament.CurrentRoundLevel, tournament.RegisteredPlayerIDs)
}

// ensureFirstRoundLevel persists the move from the stored round level 0 to
// round 1. Rows are created at level 0; every later AdvanceRound CAS matches
// against the stored value, so the bump has to reach the database or the
// bracket can never progress past round 1.
func (s *bracketService) ensureFirstRoundLevel(ctx context.Context, tournament *models.Tournament) error {
	if tournament.CurrentRoundLevel != 0 {
		return nil
	}
	err := s.tournamentRepo.AdvanceRound(ctx, nil, tournament.ID, 0)
	if err != nil && !errors.Is(err, repositories.ErrTournamentStale) {
		return err
	}
	tournament.CurrentRoundLevel = 1
	return nil
}

func (s *bracketService) backfillCPUPlayers(ctx context.Context, tournament *models.Tournament, count int) ([]int, error) {
	ids := make([]int, 0, count)
	for i := 0; i < count; i++ {
		cpu := s.newCPUPlayer(i)
		if err := s.playerRepo.CreateCPU(ctx, nil, cpu); err != nil {
			return nil, fmt.Errorf("failed to backfill cpu player for tournament %d: %w", tournament.ID, err)
		}
		ids = append(ids, cpu.ID)
	}
	if err := s.tournamentRepo.AddRegisteredPlayers(ctx, nil, tournament.ID, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *bracketService) newCPUPlayer(ordinal int) *models.Player {
	roll := func() float64 { return 30 + s.rng.Float64()*40 }
	gender := models.GenderMale
	if ordinal%2 == 1 {
		gender = models.GenderFemale
	}
	rank := s.rng.Float64() * 40
	return &models.Player{
		Name:      fmt.Sprintf("CPU Player %d", ordinal+1),
		Gender:    gender,
		Level:     1 + s.rng.Intn(10),
		Rank:      rank,
		RankLabel: models.TierForPoints(rank),
		Strategy:  "balanced",
		Stats: models.PlayerStats{
			Endurance: roll(), Strength: roll(), Agility: roll(),
			Speed: roll(), Explosivity: roll(),
			Smash: roll(), Defense: roll(), Serve: roll(), Receive: roll(),
			Toughness: roll(), Confidence: roll(), InjuryPrevention: roll(),
		},
	}
}

// generateRound pairs the given entrants and persists one match row per
// pairing. Re-pairing must never happen: if rows for this round already
// exist a previous invocation got here first and this one backs off.
func (s *bracketService) generateRound(ctx context.Context, tournament *models.Tournament, roundLevel int, entrants []int) error {
	existing, err := s.matchRepo.CountByRound(ctx, tournament.ID, roundLevel)
	if err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	scheduled := s.now()
	if roundLevel > 1 {
		scheduled = scheduled.Add(time.Duration(tournament.RoundIntervalMinutes) * time.Minute)
	}

	pairings := brackets.PairRound(entrants, s.rng)
	matches := make([]*models.Match, 0, len(pairings))
	for _, pairing := range pairings {
		match := &models.Match{
			TournamentID:       tournament.ID,
			RoundLevel:         roundLevel,
			Player1ID:          pairing.Player1ID,
			Player2ID:          pairing.Player2ID,
			Status:             models.MatchPending,
			ScheduledStartTime: scheduled,
		}
		if pairing.IsBye() {
			outcome := s.simulator.SimulateBye(pairing.Player1ID)
			match.Status = models.MatchBye
			match.WinnerID = &outcome.WinnerID
			match.Score = &outcome.Score
		}
		matches = append(matches, match)
	}

	if err := s.matchRepo.CreateBatch(ctx, nil, matches); err != nil {
		return err
	}
	s.logger.Info("bracket round generated",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("round_level", roundLevel),
		slog.Int("matches", len(matches)))
	return nil
}

// SimulateDueMatches runs every pending match whose scheduled time has
// passed. The pending->completed CAS on the match row makes re-simulation of
// an already completed match impossible.
func (s *bracketService) SimulateDueMatches(ctx context.Context, tournament *models.Tournament) error {
	due, err := s.matchRepo.ListDue(ctx, tournament.ID, s.now())
	if err != nil {
		return err
	}

	var firstErr error
	for _, match := range due {
		if err := s.simulateMatch(ctx, match); err != nil {
			s.logger.Error("match simulation failed",
				slog.Int("tournament_id", tournament.ID),
				slog.Int("match_id", match.ID),
				slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *bracketService) simulateMatch(ctx context.Context, match *models.Match) error {
	now := s.now()

	p1, recent1 := s.loadCompetitor(ctx, match.Player1ID, now)
	var p2 *models.Player
	var recent2 []models.MatchRecord
	if match.Player2ID != nil {
		p2, recent2 = s.loadCompetitor(ctx, *match.Player2ID, now)
	}

	var outcome MatchOutcome
	if match.Player2ID == nil {
		outcome = s.simulator.SimulateBye(match.Player1ID)
	} else {
		outcome = s.simulator.SimulateMatch(p1, p2, recent1, recent2, now)
	}

	err := s.matchRepo.Complete(ctx, nil, match.ID, outcome.WinnerID, outcome.Score)
	if errors.Is(err, repositories.ErrMatchAlreadyCompleted) {
		// A concurrent invocation got here first; skip side effects.
		return nil
	}
	if err != nil {
		return err
	}

	s.recordAndRerank(ctx, match, p1, p2, outcome, now)
	return nil
}

// recordAndRerank writes the history row and refreshes rank and injuries for
// both competitors. Failures here are logged, not returned: the match result
// itself is already committed and ranks are eventually consistent.
func (s *bracketService) recordAndRerank(ctx context.Context, match *models.Match, p1, p2 *models.Player, outcome MatchOutcome, now time.Time) {
	record := &models.MatchRecord{
		Player1ID: match.Player1ID,
		Player2ID: match.Player2ID,
		Result:    outcome.WinnerID == match.Player1ID,
	}
	if p1 != nil {
		record.Player1Rank = p1.Rank
	}
	if p2 != nil {
		rank := p2.Rank
		record.Player2Rank = &rank
	}
	if err := s.matchRecordRepo.Create(ctx, nil, record); err != nil {
		s.logger.Error("failed to write match record",
			slog.Int("match_id", match.ID), slog.Any("error", err))
	}

	for _, player := range []*models.Player{p1, p2} {
		if player == nil {
			continue
		}
		if _, err := s.ranking.RecomputeAndStore(ctx, player.ID, now); err != nil {
			s.logger.Error("failed to recompute rank",
				slog.Int("player_id", player.ID), slog.Any("error", err))
		}
		injury := s.injuries.MaybeInjure(player.Stats, now)
		if injury == nil {
			continue
		}
		if err := s.playerRepo.AppendInjury(ctx, player.ID, *injury); err != nil {
			s.logger.Error("failed to persist injury",
				slog.Int("player_id", player.ID), slog.Any("error", err))
		}
	}
}

func (s *bracketService) loadCompetitor(ctx context.Context, playerID int, now time.Time) (*models.Player, []models.MatchRecord) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		// Missing rows degrade to the simulator's fallback path.
		s.logger.Warn("competitor row missing, using fallback",
			slog.Int("player_id", playerID), slog.Any("error", err))
		return nil, nil
	}
	recent, err := s.matchRecordRepo.ListByPlayerSince(ctx, playerID, now.Add(-rankingWindow))
	if err != nil {
		s.logger.Warn("failed to load recent form",
			slog.Int("player_id", playerID), slog.Any("error", err))
		recent = nil
	}
	return player, recent
}

// AdvanceBracket promotes winners once the current round is fully played:
// two or more winners get paired into the next round, a single winner
// finishes the tournament. A round with unfinished matches reports
// ErrRoundNotComplete so callers can retry on a later tick.
func (s *bracketService) AdvanceBracket(ctx context.Context, tournament *models.Tournament) error {
	if err := s.ensureFirstRoundLevel(ctx, tournament); err != nil {
		return err
	}
	round := tournament.CurrentRoundLevel
	matches, err := s.matchRepo.ListByRound(ctx, tournament.ID, round)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		// Recovery path: the status flipped but round generation never
		// happened (crash between the two writes).
		if round <= 1 && len(tournament.RegisteredPlayerIDs) > 0 {
			return s.generateRound(ctx, tournament, 1, tournament.RegisteredPlayerIDs)
		}
		return nil
	}

	winners := make([]int, 0, len(matches))
	for _, match := range matches {
		if match.Status == models.MatchPending {
			return ErrRoundNotComplete
		}
		if match.WinnerID != nil {
			winners = append(winners, *match.WinnerID)
		}
	}

	if len(winners) >= 2 {
		err := s.tournamentRepo.AdvanceRound(ctx, nil, tournament.ID, round)
		if errors.Is(err, repositories.ErrTournamentStale) {
			return nil // another invocation advanced it
		}
		if err != nil {
			return err
		}
		tournament.CurrentRoundLevel = round + 1
		return s.generateRound(ctx, tournament, round+1, winners)
	}

	return s.finalize(ctx, tournament, matches)
}

// finalize settles places, pays out the prize pool and refreshes every
// participant's rank. The in_progress->completed CAS doubles as the claim
// that makes prize disbursement happen at most once.
func (s *bracketService) finalize(ctx context.Context, tournament *models.Tournament, finalRound []*models.Match) error {
	err := s.tournamentRepo.UpdateStatus(ctx, nil,
		tournament.ID, models.TournamentInProgress, models.TournamentCompleted)
	if errors.Is(err, repositories.ErrTournamentStale) {
		return nil
	}
	if err != nil {
		return err
	}

	placements := s.determinePlacements(ctx, tournament, finalRound)
	for place, playerID := range placements {
		bundle, ok := tournament.PrizePool[place]
		if !ok {
			continue
		}
		if err := s.distributePrize(ctx, tournament, playerID, place, bundle); err != nil {
			s.logger.Error("prize distribution failed",
				slog.Int("tournament_id", tournament.ID),
				slog.Int("place", place),
				slog.Any("error", err))
		}
	}

	now := s.now()
	for _, playerID := range tournament.RegisteredPlayerIDs {
		if _, err := s.ranking.RecomputeAndStore(ctx, playerID, now); err != nil {
			s.logger.Error("failed to recompute rank after tournament",
				slog.Int("player_id", playerID), slog.Any("error", err))
		}
	}

	s.logger.Info("tournament completed",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("winner_id", placements[1]))
	return nil
}

// determinePlacements resolves first, second and third place. Third goes to
// the semifinal loser beaten by a finalist; when both qualify, the higher
// ranked player takes it, ties broken by lower id.
func (s *bracketService) determinePlacements(ctx context.Context, tournament *models.Tournament, finalRound []*models.Match) map[int]int {
	placements := make(map[int]int, 3)
	final := finalRound[0]
	if final.WinnerID == nil {
		return placements
	}
	placements[1] = *final.WinnerID
	if loser, ok := matchLoser(final); ok {
		placements[2] = loser
	}

	semis, err := s.matchRepo.ListByRound(ctx, tournament.ID, tournament.CurrentRoundLevel-1)
	if err != nil || len(semis) == 0 {
		return placements
	}

	finalists := map[int]bool{placements[1]: true}
	if second, ok := placements[2]; ok {
		finalists[second] = true
	}

	var candidates []int
	for _, semi := range semis {
		if semi.WinnerID == nil || !finalists[*semi.WinnerID] {
			continue
		}
		if loser, ok := matchLoser(semi); ok {
			candidates = append(candidates, loser)
		}
	}
	if len(candidates) == 0 {
		return placements
	}

	third := candidates[0]
	if len(candidates) > 1 {
		third = s.pickByRank(ctx, candidates)
	}
	placements[3] = third
	return placements
}

func (s *bracketService) pickByRank(ctx context.Context, candidates []int) int {
	players, err := s.playerRepo.ListByIDs(ctx, candidates)
	if err != nil {
		s.logger.Warn("failed to load third-place candidates, using lowest id", slog.Any("error", err))
	}
	ranks := make(map[int]float64, len(players))
	for _, p := range players {
		ranks[p.ID] = p.Rank
	}

	best := candidates[0]
	for _, id := range candidates[1:] {
		if ranks[id] > ranks[best] || (ranks[id] == ranks[best] && id < best) {
			best = id
		}
	}
	return best
}

func (s *bracketService) distributePrize(ctx context.Context, tournament *models.Tournament, playerID, place int, bundle models.ResourceBundle) error {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return err
	}
	if player.ClubID == nil {
		// CPU winners have no club to credit.
		return nil
	}
	for resource, amount := range bundle {
		entry := &models.LedgerEntry{
			ClubID:   *player.ClubID,
			Resource: resource,
			Amount:   amount,
			Source:   fmt.Sprintf("tournament:%d:place:%d", tournament.ID, place),
		}
		if err := s.ledgerRepo.Insert(ctx, nil, entry); err != nil {
			return err
		}
	}
	return nil
}

func matchLoser(match *models.Match) (int, bool) {
	if match.WinnerID == nil || match.Player2ID == nil {
		return 0, false
	}
	if *match.WinnerID == match.Player1ID {
		return *match.Player2ID, true
	}
	return match.Player1ID, true
}

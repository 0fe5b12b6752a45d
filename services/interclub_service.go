package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/goldengitstar/leadminton-latest-sub001/brackets"
	"github.com/goldengitstar/leadminton-latest-sub001/models"
	"github.com/goldengitstar/leadminton-latest-sub001/repositories"
)

// defaultSeasonWeeks is how many weeks the matchdays are bucketed into when
// the season row does not say otherwise.
const defaultSeasonWeeks = 4

// InterclubService builds double round-robin schedules, validates and
// auto-generates lineups, executes due encounters and maintains group
// standings.
type InterclubService interface {
	GenerateLeagueSchedule(ctx context.Context, season *models.InterclubSeason) error
	SubmitLineup(ctx context.Context, encounterID int, side string, lineup models.Lineup) error
	AdvanceSeason(ctx context.Context, season *models.InterclubSeason) error
	ComputeStandings(encounters []*models.InterclubEncounter, groupNumber int) []models.GroupStanding
}

type interclubService struct {
	seasonRepo    repositories.SeasonRepository
	encounterRepo repositories.EncounterRepository
	teamRepo      repositories.TeamRepository
	playerRepo    repositories.PlayerRepository
	recordRepo    repositories.MatchRecordRepository
	ledgerRepo    repositories.LedgerRepository
	ranking       RankingService
	simulator     MatchSimulator
	lineupWindow  time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

func NewInterclubService(
	seasonRepo repositories.SeasonRepository,
	encounterRepo repositories.EncounterRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	recordRepo repositories.MatchRecordRepository,
	ledgerRepo repositories.LedgerRepository,
	ranking RankingService,
	simulator MatchSimulator,
	lineupWindow time.Duration,
	now func() time.Time,
	logger *slog.Logger,
) InterclubService {
	return &interclubService{
		seasonRepo:    seasonRepo,
		encounterRepo: encounterRepo,
		teamRepo:      teamRepo,
		playerRepo:    playerRepo,
		recordRepo:    recordRepo,
		ledgerRepo:    ledgerRepo,
		ranking:       ranking,
		simulator:     simulator,
		lineupWindow:  lineupWindow,
		now:           now,
		logger:        logger,
	}
}

// GenerateLeagueSchedule builds the Berger double round robin for every
// group and persists one encounter row per fixture. Fixtures are generated
// exactly once per team set: existing rows make this a no-op.
func (s *interclubService) GenerateLeagueSchedule(ctx context.Context, season *models.InterclubSeason) error {
	existing, err := s.encounterRepo.CountBySeason(ctx, season.ID)
	if err != nil {
		return err
	}
	if existing > 0 {
		return ErrScheduleAlreadyExists
	}

	weeks := season.WeekCount
	if weeks <= 0 {
		weeks = defaultSeasonWeeks
	}
	seasonSpan := time.Duration(weeks) * 7 * 24 * time.Hour

	var encounters []*models.InterclubEncounter
	for _, group := range season.Groups {
		if len(group.TeamIDs) < 2 {
			return fmt.Errorf("%w: group %d has %d teams", ErrNotEnoughTeams, group.Number, len(group.TeamIDs))
		}
		fixtures := brackets.BergerDoubleRoundRobin(group.TeamIDs)

		totalMatchdays := 0
		for _, f := range fixtures {
			if f.Matchday > totalMatchdays {
				totalMatchdays = f.Matchday
			}
		}
		matchdayWeeks := brackets.MatchdayWeeks(totalMatchdays, weeks)

		for _, f := range fixtures {
			matchDate := season.StartDate.Add(time.Duration(f.Matchday-1) * seasonSpan / time.Duration(totalMatchdays))
			encounters = append(encounters, &models.InterclubEncounter{
				SeasonID:    season.ID,
				HomeTeamID:  f.HomeTeamID,
				AwayTeamID:  f.AwayTeamID,
				WeekNumber:  matchdayWeeks[f.Matchday-1],
				GroupNumber: group.Number,
				MatchDate:   matchDate,
				Status:      models.EncounterLineupPending,
			})
		}
	}

	if err := s.encounterRepo.CreateBatch(ctx, nil, encounters); err != nil {
		return err
	}
	s.logger.Info("league schedule generated",
		slog.Int("season_id", season.ID),
		slog.Int("encounters", len(encounters)))
	return nil
}

// SubmitLineup validates and stores one side's lineup, moving the encounter
// to ready once both sides are in. Invalid lineups are rejected whole.
func (s *interclubService) SubmitLineup(ctx context.Context, encounterID int, side string, lineup models.Lineup) error {
	encounter, err := s.encounterRepo.GetByID(ctx, encounterID)
	if err != nil {
		return err
	}
	if encounter.Status != models.EncounterLineupPending && encounter.Status != models.EncounterScheduled {
		return fmt.Errorf("encounter %d does not accept lineups in status %s", encounterID, encounter.Status)
	}

	teamID := encounter.HomeTeamID
	if side == "away" {
		teamID = encounter.AwayTeamID
	}
	roster, err := s.loadRoster(ctx, teamID)
	if err != nil {
		return err
	}
	if err := ValidateLineup(roster, lineup); err != nil {
		return err
	}
	if err := s.encounterRepo.SetLineup(ctx, nil, encounterID, side, lineup); err != nil {
		return err
	}

	if side == "home" {
		encounter.HomeLineup = lineup
	} else {
		encounter.AwayLineup = lineup
	}
	if len(encounter.HomeLineup) > 0 && len(encounter.AwayLineup) > 0 {
		err := s.encounterRepo.UpdateStatus(ctx, nil, encounterID, encounter.Status, models.EncounterReady)
		if err != nil && !errors.Is(err, repositories.ErrEncounterStale) {
			return err
		}
	}
	return nil
}

// AdvanceSeason walks one season through its match-date gates: missing
// fixtures are generated, stale scheduled rows move to lineup_pending,
// overdue lineups are auto-filled, due encounters are played, and a fully
// played season is finalized. Every step tolerates concurrent invocation.
func (s *interclubService) AdvanceSeason(ctx context.Context, season *models.InterclubSeason) error {
	total, err := s.encounterRepo.CountBySeason(ctx, season.ID)
	if err != nil {
		return err
	}
	if total == 0 {
		if err := s.GenerateLeagueSchedule(ctx, season); err != nil && !errors.Is(err, ErrScheduleAlreadyExists) {
			return err
		}
		return nil
	}

	now := s.now()

	scheduled, err := s.encounterRepo.ListDue(ctx, season.ID, models.EncounterScheduled, now.Add(s.lineupWindow))
	if err != nil {
		return err
	}
	for _, encounter := range scheduled {
		err := s.encounterRepo.UpdateStatus(ctx, nil, encounter.ID, models.EncounterScheduled, models.EncounterLineupPending)
		if err != nil && !errors.Is(err, repositories.ErrEncounterStale) {
			s.logger.Error("failed to open lineups", slog.Int("encounter_id", encounter.ID), slog.Any("error", err))
		}
	}

	// Lineup deadline: an encounter must be ready lineupWindow before its
	// match date, so overdue sides get an auto-generated lineup.
	pending, err := s.encounterRepo.ListDue(ctx, season.ID, models.EncounterLineupPending, now.Add(s.lineupWindow))
	if err != nil {
		return err
	}
	for _, encounter := range pending {
		if err := s.ensureLineups(ctx, encounter); err != nil {
			s.logger.Error("failed to auto-generate lineups",
				slog.Int("encounter_id", encounter.ID), slog.Any("error", err))
		}
	}

	due, err := s.encounterRepo.ListDue(ctx, season.ID, models.EncounterReady, now)
	if err != nil {
		return err
	}
	for _, encounter := range due {
		if err := s.executeEncounter(ctx, encounter); err != nil {
			s.logger.Error("failed to execute encounter",
				slog.Int("encounter_id", encounter.ID), slog.Any("error", err))
		}
	}

	return s.maybeFinalize(ctx, season)
}

func (s *interclubService) ensureLineups(ctx context.Context, encounter *models.InterclubEncounter) error {
	sides := []struct {
		name   string
		teamID int
		lineup models.Lineup
	}{
		{"home", encounter.HomeTeamID, encounter.HomeLineup},
		{"away", encounter.AwayTeamID, encounter.AwayLineup},
	}

	for _, side := range sides {
		if len(side.lineup) > 0 {
			continue
		}
		roster, err := s.loadRoster(ctx, side.teamID)
		if err != nil {
			return err
		}
		generated := AutoGenerateLineup(roster)
		if len(generated) == 0 {
			return fmt.Errorf("%w: team %d", ErrLineupRosterTooSmall, side.teamID)
		}
		if err := s.encounterRepo.SetLineup(ctx, nil, encounter.ID, side.name, generated); err != nil {
			return err
		}
	}

	err := s.encounterRepo.UpdateStatus(ctx, nil, encounter.ID, models.EncounterLineupPending, models.EncounterReady)
	if errors.Is(err, repositories.ErrEncounterStale) {
		return nil
	}
	return err
}

// executeEncounter plays the five categories. The ready->in_progress CAS is
// the claim: a concurrent tick that loses it skips the whole encounter.
func (s *interclubService) executeEncounter(ctx context.Context, encounter *models.InterclubEncounter) error {
	err := s.encounterRepo.UpdateStatus(ctx, nil, encounter.ID, models.EncounterReady, models.EncounterInProgress)
	if errors.Is(err, repositories.ErrEncounterStale) {
		return nil
	}
	if err != nil {
		return err
	}

	now := s.now()
	results := make([]models.CategoryResult, 0, len(models.Categories))
	for _, category := range models.Categories {
		homeIDs := encounter.HomeLineup[category]
		awayIDs := encounter.AwayLineup[category]
		if len(homeIDs) == 0 || len(awayIDs) == 0 {
			// Voided category: one side could not field it.
			results = append(results, models.CategoryResult{Category: category})
			continue
		}

		homePlayers := s.loadPlayers(ctx, homeIDs)
		awayPlayers := s.loadPlayers(ctx, awayIDs)
		outcome := s.simulator.SimulateCategory(homePlayers, awayPlayers, now)
		results = append(results, models.CategoryResult{
			Category:   category,
			WinnerSide: outcome.WinnerSide,
			Score:      outcome.Score,
		})

		if models.PlayersPerCategory(category) == 1 {
			s.recordSinglesResult(ctx, homePlayers, awayPlayers, outcome, now)
		}
	}

	encounter.Results = results
	homeWins, awayWins := encounter.CategoryWins()

	var winnerTeamID *int
	switch {
	case homeWins > awayWins:
		winnerTeamID = &encounter.HomeTeamID
	case awayWins > homeWins:
		winnerTeamID = &encounter.AwayTeamID
	}
	finalScore := fmt.Sprintf("%d-%d", homeWins, awayWins)

	return s.encounterRepo.Complete(ctx, nil, encounter.ID,
		models.EncounterInProgress, results, winnerTeamID, finalScore)
}

// recordSinglesResult writes the play-history row for a singles category and
// refreshes both players' ranks. Doubles have no two-player history shape,
// so only singles feed the ranking engine.
func (s *interclubService) recordSinglesResult(ctx context.Context, home, away []*models.Player, outcome CategoryOutcome, now time.Time) {
	if len(home) == 0 || len(away) == 0 || home[0] == nil || away[0] == nil {
		return
	}
	p1, p2 := home[0], away[0]
	p2Rank := p2.Rank
	record := &models.MatchRecord{
		Player1ID:   p1.ID,
		Player2ID:   &p2.ID,
		Result:      outcome.WinnerSide == "home",
		Player1Rank: p1.Rank,
		Player2Rank: &p2Rank,
	}
	if err := s.recordRepo.Create(ctx, nil, record); err != nil {
		s.logger.Error("failed to write interclub match record", slog.Any("error", err))
		return
	}
	for _, player := range []*models.Player{p1, p2} {
		if _, err := s.ranking.RecomputeAndStore(ctx, player.ID, now); err != nil {
			s.logger.Error("failed to recompute rank",
				slog.Int("player_id", player.ID), slog.Any("error", err))
		}
	}
}

// ComputeStandings rebuilds a group's table from scratch by scanning its
// completed encounters: 3 points per win, 1 per draw, tiebreak on individual
// match differential. Never incrementally maintained, so a retroactive
// correction is picked up by the next scan.
func (s *interclubService) ComputeStandings(encounters []*models.InterclubEncounter, groupNumber int) []models.GroupStanding {
	table := make(map[int]*models.GroupStanding)
	ensure := func(teamID int) *models.GroupStanding {
		if st, ok := table[teamID]; ok {
			return st
		}
		st := &models.GroupStanding{TeamID: teamID}
		table[teamID] = st
		return st
	}

	for _, e := range encounters {
		if e.GroupNumber != groupNumber {
			continue
		}
		home, away := ensure(e.HomeTeamID), ensure(e.AwayTeamID)
		if e.Status != models.EncounterCompleted {
			continue
		}

		homeWins, awayWins := e.CategoryWins()
		home.IndividualMatchesWon += homeWins
		home.IndividualMatchesLost += awayWins
		away.IndividualMatchesWon += awayWins
		away.IndividualMatchesLost += homeWins

		switch {
		case e.WinnerTeamID == nil:
			home.Points++
			away.Points++
			home.EncountersDrawn++
			away.EncountersDrawn++
		case *e.WinnerTeamID == e.HomeTeamID:
			home.Points += 3
			home.EncountersWon++
			away.EncountersLost++
		default:
			away.Points += 3
			away.EncountersWon++
			home.EncountersLost++
		}
	}

	standings := make([]models.GroupStanding, 0, len(table))
	for _, st := range table {
		standings = append(standings, *st)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		diffI := standings[i].IndividualMatchesWon - standings[i].IndividualMatchesLost
		diffJ := standings[j].IndividualMatchesWon - standings[j].IndividualMatchesLost
		if diffI != diffJ {
			return diffI > diffJ
		}
		return standings[i].TeamID < standings[j].TeamID
	})
	for i := range standings {
		standings[i].Position = i + 1
	}
	return standings
}

// maybeFinalize completes the season once no encounter has work left. The
// active->completed CAS doubles as the prize disbursement claim.
func (s *interclubService) maybeFinalize(ctx context.Context, season *models.InterclubSeason) error {
	encounters, err := s.encounterRepo.ListBySeason(ctx, season.ID, nil)
	if err != nil {
		return err
	}
	if len(encounters) == 0 {
		return nil
	}
	for _, e := range encounters {
		if e.Status != models.EncounterCompleted {
			return nil
		}
	}

	err = s.seasonRepo.UpdateStatus(ctx, nil, season.ID, models.SeasonActive, models.SeasonCompleted)
	if errors.Is(err, repositories.ErrSeasonStale) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, group := range season.Groups {
		standings := s.ComputeStandings(encounters, group.Number)
		for _, st := range standings {
			bundle, ok := season.PrizePool[st.Position]
			if !ok {
				continue
			}
			if err := s.distributeTeamPrize(ctx, season, st.TeamID, st.Position, bundle); err != nil {
				s.logger.Error("season prize distribution failed",
					slog.Int("season_id", season.ID),
					slog.Int("team_id", st.TeamID),
					slog.Any("error", err))
			}
		}
	}

	s.logger.Info("interclub season completed", slog.Int("season_id", season.ID))
	return nil
}

func (s *interclubService) distributeTeamPrize(ctx context.Context, season *models.InterclubSeason, teamID, position int, bundle models.ResourceBundle) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	for resource, amount := range bundle {
		entry := &models.LedgerEntry{
			ClubID:   team.ClubID,
			Resource: resource,
			Amount:   amount,
			Source:   fmt.Sprintf("interclub:%d:position:%d", season.ID, position),
		}
		if err := s.ledgerRepo.Insert(ctx, nil, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *interclubService) loadRoster(ctx context.Context, teamID int) ([]*models.Player, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return s.playerRepo.ListByIDs(ctx, team.PlayerIDs)
}

// loadPlayers tolerates missing rows: absent players come back nil and the
// simulator degrades them instead of failing the encounter.
func (s *interclubService) loadPlayers(ctx context.Context, ids []int) []*models.Player {
	players, err := s.playerRepo.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load lineup players", slog.Any("error", err))
		return make([]*models.Player, len(ids))
	}
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	out := make([]*models.Player, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out
}

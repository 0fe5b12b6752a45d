package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goldengitstar/leadminton-latest-sub001/models"
	"github.com/goldengitstar/leadminton-latest-sub001/repositories"
)

// TickReport summarizes one driver pass for the operator log.
type TickReport struct {
	TournamentsStarted  int
	TournamentsAdvanced int
	SeasonsAdvanced     int
	Failures            int
}

// CompetitionService is the periodic orchestrator. It is safe to invoke
// redundantly or concurrently: every state transition underneath is a
// compare-and-swap against the persisted row, so a second racer no-ops.
type CompetitionService interface {
	RunCompetitionTick(ctx context.Context) (TickReport, error)
}

type competitionService struct {
	tournamentRepo repositories.TournamentRepository
	seasonRepo     repositories.SeasonRepository
	bracket        BracketService
	interclub      InterclubService
	now            func() time.Time
	logger         *slog.Logger
}

func NewCompetitionService(
	tournamentRepo repositories.TournamentRepository,
	seasonRepo repositories.SeasonRepository,
	bracket BracketService,
	interclub InterclubService,
	now func() time.Time,
	logger *slog.Logger,
) CompetitionService {
	return &competitionService{
		tournamentRepo: tournamentRepo,
		seasonRepo:     seasonRepo,
		bracket:        bracket,
		interclub:      interclub,
		now:            now,
		logger:         logger,
	}
}

// RunCompetitionTick loads the due work in parallel, then processes each
// tournament and season in isolation: one entity's failure is logged and
// counted, never allowed to abort the others.
func (s *competitionService) RunCompetitionTick(ctx context.Context) (TickReport, error) {
	var (
		dueTournaments    []*models.Tournament
		activeTournaments []*models.Tournament
		activeSeasons     []*models.InterclubSeason
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dueTournaments, err = s.tournamentRepo.ListDueToStart(gCtx, s.now())
		return err
	})
	g.Go(func() error {
		var err error
		activeTournaments, err = s.tournamentRepo.ListInProgress(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		activeSeasons, err = s.seasonRepo.ListActive(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return TickReport{}, err
	}

	var report TickReport

	for _, tournament := range dueTournaments {
		if err := s.bracket.StartTournament(ctx, tournament); err != nil {
			if errors.Is(err, ErrTournamentNotDue) {
				continue
			}
			report.Failures++
			s.logger.Error("tournament start failed",
				slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
			continue
		}
		report.TournamentsStarted++
		// A freshly started tournament is also advanced this tick so round 1
		// matches that are already due get played immediately.
		activeTournaments = append(activeTournaments, tournament)
	}

	for _, tournament := range activeTournaments {
		if err := s.advanceTournament(ctx, tournament); err != nil {
			report.Failures++
			s.logger.Error("tournament advance failed",
				slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
			continue
		}
		report.TournamentsAdvanced++
	}

	for _, season := range activeSeasons {
		if err := s.interclub.AdvanceSeason(ctx, season); err != nil {
			report.Failures++
			s.logger.Error("season advance failed",
				slog.Int("season_id", season.ID), slog.Any("error", err))
			continue
		}
		report.SeasonsAdvanced++
	}

	s.logger.Info("competition tick finished",
		slog.Int("tournaments_started", report.TournamentsStarted),
		slog.Int("tournaments_advanced", report.TournamentsAdvanced),
		slog.Int("seasons_advanced", report.SeasonsAdvanced),
		slog.Int("failures", report.Failures))
	return report, nil
}

func (s *competitionService) advanceTournament(ctx context.Context, tournament *models.Tournament) error {
	if err := s.bracket.SimulateDueMatches(ctx, tournament); err != nil {
		return err
	}
	err := s.bracket.AdvanceBracket(ctx, tournament)
	if errors.Is(err, ErrRoundNotComplete) {
		// Matches are still scheduled in the future; the next tick retries.
		return nil
	}
	return err
}

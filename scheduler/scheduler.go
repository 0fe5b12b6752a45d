package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/goldengitstar/leadminton-latest-sub001/services"
)

// Scheduler runs the competition tick on a fixed interval.
type Scheduler struct {
	s           gocron.Scheduler
	competition services.CompetitionService
	interval    time.Duration
	logger      *slog.Logger
}

func NewScheduler(competition services.CompetitionService, interval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:           s,
		competition: competition,
		interval:    interval,
		logger:      logger,
	}, nil
}

func (s *Scheduler) Start() error {
	_, err := s.s.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.runTick),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create competition tick job: %w", err)
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	report, err := s.competition.RunCompetitionTick(ctx)
	if err != nil {
		s.logger.Error("Competition tick failed", "error", err)
		return
	}
	if report.Failures > 0 {
		s.logger.Warn("Competition tick finished with failures",
			"failures", report.Failures,
			"tournaments_started", report.TournamentsStarted,
			"tournaments_advanced", report.TournamentsAdvanced,
			"seasons_advanced", report.SeasonsAdvanced)
	}
}

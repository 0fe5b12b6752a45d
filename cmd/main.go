package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/goldengitstar/leadminton-latest-sub001/config"
	"github.com/goldengitstar/leadminton-latest-sub001/db"
	"github.com/goldengitstar/leadminton-latest-sub001/repositories"
	"github.com/goldengitstar/leadminton-latest-sub001/scheduler"
	"github.com/goldengitstar/leadminton-latest-sub001/services"
	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	logger.Info("configuration loaded",
		slog.Duration("tick_interval", cfg.TickInterval),
		slog.Duration("lineup_window", cfg.LineupWindow))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	seed := cfg.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	now := time.Now

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRecordRepo := repositories.NewPostgresMatchRecordRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	encounterRepo := repositories.NewPostgresEncounterRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	ledgerRepo := repositories.NewPostgresLedgerRepository(dbConn)
	logger.Info("repositories initialized")

	rankingService := services.NewRankingService(matchRecordRepo, playerRepo)
	injuryService := services.NewInjuryService(rng)
	simulator := services.NewMatchSimulator(rng)

	bracketService := services.NewBracketService(
		tournamentRepo,
		matchRepo,
		playerRepo,
		matchRecordRepo,
		ledgerRepo,
		rankingService,
		injuryService,
		simulator,
		rng,
		now,
		logger,
	)

	interclubService := services.NewInterclubService(
		seasonRepo,
		encounterRepo,
		teamRepo,
		playerRepo,
		matchRecordRepo,
		ledgerRepo,
		rankingService,
		simulator,
		cfg.LineupWindow,
		now,
		logger,
	)

	competitionService := services.NewCompetitionService(
		tournamentRepo,
		seasonRepo,
		bracketService,
		interclubService,
		now,
		logger,
	)
	logger.Info("services initialized")

	sched, err := scheduler.NewScheduler(competitionService, cfg.TickInterval, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	// Run one tick immediately so a restart picks up overdue work without
	// waiting a full interval.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), cfg.TickInterval)
	if report, err := competitionService.RunCompetitionTick(startupCtx); err != nil {
		logger.Error("initial competition tick failed", slog.Any("error", err))
	} else {
		logger.Info("initial competition tick complete",
			slog.Int("tournaments_started", report.TournamentsStarted),
			slog.Int("tournaments_advanced", report.TournamentsAdvanced),
			slog.Int("seasons_advanced", report.SeasonsAdvanced),
			slog.Int("failures", report.Failures))
	}
	cancelStartup()

	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("competition scheduler started", slog.Duration("interval", cfg.TickInterval))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	if err := sched.Stop(); err != nil {
		logger.Error("scheduler shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

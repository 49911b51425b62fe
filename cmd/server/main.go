package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"

	"github.com/maxviazov/matchup-stats-service/internal/cache"
	"github.com/maxviazov/matchup-stats-service/internal/config"
	"github.com/maxviazov/matchup-stats-service/internal/handler"
	"github.com/maxviazov/matchup-stats-service/internal/logger"
	"github.com/maxviazov/matchup-stats-service/internal/repository"
	"github.com/maxviazov/matchup-stats-service/internal/repository/postgres"
	"github.com/maxviazov/matchup-stats-service/internal/server"
	"github.com/maxviazov/matchup-stats-service/internal/service"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Load application config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer db.Close()

	resultCache, err := cache.New(ctx, cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer resultCache.Close()

	pool := db.Pool()
	var (
		teams       = postgres.NewTeamRepository(pool)
		players     = postgres.NewPlayerRepository(pool)
		games       = postgres.NewGameRepository(pool)
		seasons     = postgres.NewSeasonRepository(pool)
		playerStats = postgres.NewPlayerStatsRepository(pool)
		teamStats   = postgres.NewTeamStatsRepository(pool)
		statistics  = postgres.NewStatisticsRepository(pool)
		tx          = postgres.NewTxManager(pool)
	)

	sink := service.NewLogSink(appLogger)
	requestTimeout := time.Duration(cfg.App.RequestTimeout) * time.Second

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	statisticsSvc := service.NewStatisticsService(statistics, resultCache, sink, service.StatisticsOptions{
		CacheTTL:       time.Duration(cfg.Redis.TTL) * time.Second,
		RequestTimeout: requestTimeout,
	}, appLogger)

	engine := gin.New()
	handler.Register(engine, handler.Deps{
		Pinger:     postgres.NewPinger(pool),
		Statistics: statisticsSvc,
		Matchups:   service.NewMatchupService(statistics, teams, sink, requestTimeout, appLogger),
		Teams:      service.NewTeamService(teams, appLogger),
		Players:    service.NewPlayerService(players, teams, appLogger),
		Games:      service.NewGameService(games, teams, tx, appLogger),
		Seasons:    service.NewSeasonService(seasons, appLogger),
		Stats:      service.NewStatsService(playerStats, teamStats, players, games, tx, appLogger),
		Sink:       sink,
		Logger:     appLogger,
	})

	appLogger.Info().Str("version", cfg.App.Version).Int("port", cfg.App.Port).Msg("🚀 Service started")
	if err := server.New(cfg, engine, appLogger).Run(ctx); err != nil {
		appLogger.Error().Err(err).Msg("http server stopped with error")
		return
	}
	appLogger.Info().Msg("service stopped")
}

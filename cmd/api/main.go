// Package main provides the HTTP API server for users, libraries and game suggestions.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/rueidis"

	"github.com/jnst/cloudgames-library/internal/api"
	"github.com/jnst/cloudgames-library/internal/config"
	"github.com/jnst/cloudgames-library/internal/logger"
	"github.com/jnst/cloudgames-library/internal/migrations"
	"github.com/jnst/cloudgames-library/internal/repository"
	"github.com/jnst/cloudgames-library/internal/search"
	"github.com/jnst/cloudgames-library/internal/service"
	"github.com/jnst/cloudgames-library/internal/telemetry"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	exitCode          = 1
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	slog.SetDefault(logger.Setup(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("api server stopped with error", slog.String("error", err.Error()))
		stop()
		os.Exit(exitCode)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Error("failed to shut down tracing", slog.String("error", err.Error()))
		}
	}()

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	if cfg.RunMigrations {
		if err := migrations.Up(ctx, dbPool); err != nil {
			return err
		}
	}

	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr},
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	gameRepo := repository.NewGameRepositoryImpl(dbPool)
	userRepo := repository.NewUserRepositoryImpl(dbPool)
	libraryRepo := repository.NewLibraryRepositoryImpl(dbPool)
	outboxRepo := repository.NewOutboxRepositoryImpl(dbPool)
	transactionMgr := repository.NewTransactionManagerImpl(dbPool)

	index := search.NewRedisIndex(redisClient, cfg.Suggestions.IndexPrefix)

	server := api.NewAPIServer(
		service.NewUserServiceImpl(userRepo, outboxRepo, transactionMgr),
		service.NewLibraryServiceImpl(userRepo, libraryRepo),
		service.NewRecommendationEngineImpl(index, gameRepo, libraryRepo, cfg.Suggestions.MaxGames, cfg.Suggestions.MaxLimit),
		cfg.Suggestions.MaxLimit,
	)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", slog.String("error", err.Error()))
		}
	}()

	slog.Info("starting API server", slog.String("service", "api"), slog.String("port", cfg.Port))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

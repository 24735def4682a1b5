// Package main provides the stream consumers projecting games and purchases
// and indexing purchase history.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/rueidis"
	"golang.org/x/sync/errgroup"

	"github.com/jnst/cloudgames-library/internal/config"
	"github.com/jnst/cloudgames-library/internal/consumer"
	"github.com/jnst/cloudgames-library/internal/logger"
	"github.com/jnst/cloudgames-library/internal/migrations"
	"github.com/jnst/cloudgames-library/internal/repository"
	"github.com/jnst/cloudgames-library/internal/search"
	"github.com/jnst/cloudgames-library/internal/service"
	"github.com/jnst/cloudgames-library/internal/stream"
	"github.com/jnst/cloudgames-library/internal/telemetry"
)

const (
	signalBufferSize = 1
	exitCode         = 1
)

func setupRedisClient(cfg *config.Config) (rueidis.Client, error) {
	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr},
	})
	if err != nil {
		return nil, err
	}

	return redisClient, nil
}

func setupSignalHandling() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, signalBufferSize)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("shutdown signal received, stopping consumers")
		cancel()
	}()

	return ctx, cancel
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

	redisClient, err := setupRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	index := search.NewRedisIndex(redisClient, cfg.Suggestions.IndexPrefix)
	if created, err := index.EnsureIndex(ctx); err != nil {
		return err
	} else if created {
		slog.Info("search index created", slog.String("prefix", cfg.Suggestions.IndexPrefix))
	}

	gameRepo := repository.NewGameRepositoryImpl(dbPool)
	userRepo := repository.NewUserRepositoryImpl(dbPool)
	libraryRepo := repository.NewLibraryRepositoryImpl(dbPool)
	outboxRepo := repository.NewOutboxRepositoryImpl(dbPool)
	transactionMgr := repository.NewTransactionManagerImpl(dbPool)

	handler := consumer.NewMessageHandler(
		service.NewGameProjectorImpl(gameRepo),
		service.NewPurchaseProjectorImpl(gameRepo, userRepo, libraryRepo, outboxRepo, transactionMgr),
		service.NewPurchaseHistoryIndexerImpl(index),
	)

	streamClient := stream.NewRedisClient(redisClient)
	opts := stream.Options{
		BlockTimeout:  cfg.Consumer.BlockTimeout,
		ClaimMinIdle:  cfg.Consumer.ClaimMinIdle,
		ErrorDelay:    cfg.Consumer.ErrorDelay,
		MaxDeliveries: cfg.Consumer.MaxDeliveries,
	}

	routes := map[string]*stream.Router{
		cfg.Streams.Games:           handler.GameRouter(),
		cfg.Streams.Purchases:       handler.PurchaseRouter(),
		cfg.Streams.PurchaseHistory: handler.PurchaseHistoryRouter(),
		cfg.Streams.Users:           handler.UserRouter(),
	}

	g, ctx := errgroup.WithContext(ctx)
	for streamKey, router := range routes {
		c := stream.NewConsumer(streamClient, streamKey, cfg.Consumer.Group, cfg.Consumer.Name, router.Handle, opts)
		g.Go(func() error {
			return c.Run(ctx)
		})
	}

	return g.Wait()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	loggerInstance := logger.Setup(cfg.LogLevel)
	slog.SetDefault(loggerInstance)

	ctx, cancel := setupSignalHandling()
	defer cancel()

	slog.Info("starting consumers",
		slog.String("service", "consumer"),
		slog.String("group", cfg.Consumer.Group),
		slog.String("consumer", cfg.Consumer.Name),
	)

	if err := run(ctx, cfg); err != nil {
		slog.Error("consumer stopped with error", slog.String("error", err.Error()))
		cancel()
		os.Exit(exitCode)
	}

	slog.Info("consumers stopped")
}

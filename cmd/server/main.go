package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schoolrun/bus-tracking/internal/api"
	"github.com/schoolrun/bus-tracking/internal/infrastructure/config"
	mongodb "github.com/schoolrun/bus-tracking/internal/infrastructure/db/mongo"
	redisdb "github.com/schoolrun/bus-tracking/internal/infrastructure/db/redis"
	"github.com/schoolrun/bus-tracking/internal/infrastructure/queue"
	"github.com/schoolrun/bus-tracking/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	for name, idx := range map[string]interface{ EnsureIndexes(context.Context) error }{
		"runs":    mongodb.NewRunRepository(db),
		"stops":   mongodb.NewStopRepository(db),
		"drivers": mongodb.NewDriverRepository(db),
	} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	recorder := queue.NewRecorder(0, mongodb.NewTrackRepository(db), log)
	recorder.Start(ctx)

	e := api.NewRouter(db, rdb, cfg, recorder, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("bus tracking service started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

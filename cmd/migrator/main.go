package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"

	"github.com/sitepulse-io/sitepulse/internal/actor"
	"github.com/sitepulse-io/sitepulse/internal/config"
	"github.com/sitepulse-io/sitepulse/internal/handlers"
	"github.com/sitepulse-io/sitepulse/internal/logging"
	"github.com/sitepulse-io/sitepulse/internal/migration"
	"github.com/sitepulse-io/sitepulse/internal/server"
	"github.com/sitepulse-io/sitepulse/internal/sites"
	"github.com/sitepulse-io/sitepulse/internal/store"
	"github.com/sitepulse-io/sitepulse/internal/validation"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("migrator"))
	logging.SetDefault(logger)

	slog.Info("Starting migration worker",
		slog.Int("port", cfg.Server.Port),
		slog.String("actor_url", cfg.Actor.BaseURL),
	)

	ctx := context.Background()

	eventStore, err := store.Connect(ctx, cfg.Database.ConnString())
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer eventStore.Close()

	slog.Info("Running database migrations")
	m, err := migrate.New("file://migrations", cfg.Database.ConnString())
	if err != nil {
		slog.Error("Failed to initialize migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		slog.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis unavailable, adapter cache disabled", slog.String("error", err.Error()))
		redisClient = nil
	}

	siteRepo := sites.NewRepository(eventStore.Pool(), redisClient, cfg.Redis.CacheTTL)
	registry := actor.NewRegistry(cfg.Actor.BaseURL, cfg.Actor.Timeout)
	orchestrator := migration.New(eventStore, migration.RegistryResolver{Registry: registry}, logger)

	valCfg := validation.DefaultConfig()
	valCfg.MaxStringLength = cfg.Validation.MaxStringLength
	valCfg.SampleSize = cfg.Validation.SampleSize
	valCfg.Strict = cfg.Validation.Strict
	if cfg.Validation.MinDate != "" {
		minDate, err := time.Parse("2006-01-02", cfg.Validation.MinDate)
		if err != nil {
			slog.Error("Invalid validation min_date", slog.String("error", err.Error()))
			os.Exit(1)
		}
		valCfg.MinDate = minDate
	}

	handler := handlers.NewMigrationHandler(orchestrator, siteRepo, valCfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Migration worker listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Forced shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Stopped")
}

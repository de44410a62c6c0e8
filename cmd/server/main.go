package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcoot/watchlist/internal/api"
	"github.com/mcoot/watchlist/internal/config"
	"github.com/mcoot/watchlist/internal/factory"
	"github.com/mcoot/watchlist/internal/services/auth"
	redisstorage "github.com/mcoot/watchlist/internal/storage/redis"
)

func main() {
	// Bootstrap logger until the configured level and format are known
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger = newLogger(cfg)
	zerolog.DefaultContextLogger = &logger

	// Build factory config
	factoryCfg := factory.Config{
		AuthConfig: auth.Config{
			Secret:     []byte(cfg.JWTSecret),
			TokenTTL:   cfg.TokenTTL,
			BcryptCost: cfg.BcryptCost,
		},
		Logger:      &logger,
		StorageType: cfg.StorageType,
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create application")
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close storage")
		}
	}()

	if cfg.DebugEndpoints {
		logger.Warn().Msg("debug endpoints enabled")
	}

	server := api.NewServer(app.Router(cfg.DebugEndpoints), api.ServerConfigFrom(cfg), logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("storage", cfg.StorageType).
		Dur("token_ttl", cfg.TokenTTL).
		Bool("debug_endpoints", cfg.DebugEndpoints).
		Msg("starting watchlist server")

	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server error")
		_ = app.Close()
		os.Exit(1)
	}

	logger.Info().Msg("server stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var logger zerolog.Logger
	if cfg.LogFormat == config.LogFormatConsole {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(cfg.LogLevel).With().Timestamp().Str("service", "watchlist").Logger()
}

package factory

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mcoot/watchlist/internal/api"
	"github.com/mcoot/watchlist/internal/dependencies/clock"
	"github.com/mcoot/watchlist/internal/dependencies/random"
	"github.com/mcoot/watchlist/internal/metrics"
	"github.com/mcoot/watchlist/internal/services/auth"
	"github.com/mcoot/watchlist/internal/services/watchlist"
	"github.com/mcoot/watchlist/internal/storage"
	"github.com/mcoot/watchlist/internal/storage/memory"
	redisstorage "github.com/mcoot/watchlist/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   random.IDGenerator

	// Observability
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	// Services
	AuthService      *auth.Service
	WatchlistService *watchlist.Service

	closeStorage func() error
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service. Secret is required.
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *zerolog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	// Create storage based on type
	var store storage.Storage
	closeStorage := func() error { return nil }
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closeStorage = redisStore.Close
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory' or 'redis'", storageType)
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg.AuthConfig, logger)
	if err != nil {
		_ = closeStorage()
		return nil, err
	}
	app.closeStorage = closeStorage
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, ids random.IDGenerator, authCfg auth.Config, logger zerolog.Logger) (*App, error) {
	authService, err := auth.New(store, clk, ids, authCfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Storage:          store,
		Clock:            clk,
		IDs:              ids,
		Logger:           logger,
		Metrics:          metrics.New(),
		AuthService:      authService,
		WatchlistService: watchlist.New(store, ids),
		closeStorage:     func() error { return nil },
	}, nil
}

// Router builds the HTTP handler for the app
func (a *App) Router(debugEndpoints bool) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:           a.Logger,
		AuthService:      a.AuthService,
		WatchlistService: a.WatchlistService,
		Storage:          a.Storage,
		Metrics:          a.Metrics,
		DebugEndpoints:   debugEndpoints,
	})
}

// Close releases storage connections
func (a *App) Close() error {
	return a.closeStorage()
}

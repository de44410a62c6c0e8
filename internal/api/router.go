package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mcoot/watchlist/internal/api/apierr"
	"github.com/mcoot/watchlist/internal/api/handler"
	apimiddleware "github.com/mcoot/watchlist/internal/api/middleware"
	"github.com/mcoot/watchlist/internal/api/response"
	"github.com/mcoot/watchlist/internal/metrics"
	"github.com/mcoot/watchlist/internal/middleware"
	"github.com/mcoot/watchlist/internal/services/auth"
	"github.com/mcoot/watchlist/internal/services/watchlist"
	"github.com/mcoot/watchlist/internal/storage"
)

// Banner is the plain text body served at /
const Banner = "JWT-only Movie Watchlist API is running."

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           zerolog.Logger
	AuthService      *auth.Service
	WatchlistService *watchlist.Service
	Storage          storage.Storage
	Metrics          *metrics.Metrics
	// DebugEndpoints mounts /debug/users
	DebugEndpoints bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewMethodNotAllowedError())
	})

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Metrics)
	movieHandler := handler.NewMovieHandler(cfg.WatchlistService)

	// Create middleware
	authMiddleware := apimiddleware.Auth(cfg.AuthService, cfg.Metrics)

	// Logging sits outside recovery so recovered panics are still logged with their 500
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(apimiddleware.Recovery(cfg.Logger))

	// Account routes (no auth required for registering/logging in)
	r.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	// Protected account routes
	protected := func(h http.HandlerFunc) http.Handler { return authMiddleware(h) }

	r.Handle("/auth/me", protected(authHandler.Me)).Methods(http.MethodGet)
	r.Handle("/auth/me", protected(authHandler.DeleteMe)).Methods(http.MethodDelete)

	// Movie routes (all require auth)
	r.Handle("/movies", protected(movieHandler.Create)).Methods(http.MethodPost)
	r.Handle("/movies", protected(movieHandler.List)).Methods(http.MethodGet)
	r.Handle("/movies/{id}", protected(movieHandler.Get)).Methods(http.MethodGet)
	r.Handle("/movies/{id}", protected(movieHandler.Update)).Methods(http.MethodPatch)
	r.Handle("/movies/{id}", protected(movieHandler.Delete)).Methods(http.MethodDelete)

	if cfg.DebugEndpoints {
		debugHandler := handler.NewDebugHandler(cfg.Storage)
		r.HandleFunc("/debug/users", debugHandler.Users).Methods(http.MethodGet)
	}

	// Operational endpoints (no auth)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/", bannerHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}

func bannerHandler(w http.ResponseWriter, _ *http.Request) {
	response.Text(w, http.StatusOK, Banner)
}

package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mcoot/watchlist/internal/api/apierr"
	"github.com/mcoot/watchlist/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}

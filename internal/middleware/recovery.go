package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// PanicHandler is a function that handles panics and writes an error response
type PanicHandler func(w http.ResponseWriter, r *http.Request, err any)

// Recovery creates panic recovery middleware with a custom panic handler.
// The request-scoped logger is used when Logging ran first, otherwise the given one.
func Recovery(logger zerolog.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					l := zerolog.Ctx(r.Context())
					if l.GetLevel() == zerolog.Disabled {
						l = &logger
					}
					l.Error().
						Interface("panic", err).
						Str("stack", string(debug.Stack())).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					handler(w, r, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultPanicHandler returns a simple 500 Internal Server Error
func DefaultPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

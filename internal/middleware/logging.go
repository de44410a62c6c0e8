package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// ResponseWriter wraps http.ResponseWriter to capture the status code and size
type ResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

// NewResponseWriter wraps w, defaulting the status to 200
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader captures the status code
func (rw *ResponseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// Write captures the response size
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Status returns the captured status code
func (rw *ResponseWriter) Status() int {
	return rw.status
}

// Size returns the captured response size
func (rw *ResponseWriter) Size() int {
	return rw.size
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logging creates logging middleware.
// It tags every request with a request id, stores a sub-logger in the request
// context for zerolog.Ctx, and logs one line per request once it completes.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			reqLogger := logger.With().Str("request_id", requestID).Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			wrapped := NewResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			var event *zerolog.Event
			switch {
			case wrapped.status >= http.StatusInternalServerError:
				event = reqLogger.Error()
			case wrapped.status >= http.StatusBadRequest:
				event = reqLogger.Warn()
			default:
				event = reqLogger.Info()
			}

			event.
				Str("method", r.Method).
				Str("route", RouteTemplate(r)).
				Str("path", r.URL.Path).
				Int("status", wrapped.status).
				Int("size", wrapped.size).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

// RouteTemplate returns the matched mux path template, so ids do not blow up label cardinality
func RouteTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mcoot/watchlist/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeInvalidStatus      = apierr.CodeInvalidStatus
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeUsernameTaken      = apierr.CodeUsernameTaken
	CodeMovieNotFound      = apierr.CodeMovieNotFound
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response, logging anything that maps to a 500
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/watchlist/internal/model"
	"github.com/mcoot/watchlist/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeMovieNotFound      = "MOVIE_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error will be written with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Validation
	case errors.Is(err, model.ErrInvalidStatus):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidStatus, `invalid status, use "watched" or "unwatched"`}}
	case errors.Is(err, model.ErrMissingTitle):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "movie title is required"}}
	case errors.Is(err, auth.ErrMissingCredentials):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "username and password are required"}}
	case errors.Is(err, auth.ErrEmptyPassword):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "password must not be empty"}}
	case errors.Is(err, auth.ErrPasswordTooLong):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "password must be at most 72 bytes"}}

	// Conflict
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameTaken, "username already taken"}}

	// Authentication
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "invalid username or password"}}
	case errors.Is(err, auth.ErrMissingToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "missing token"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "invalid or expired token"}}
	case errors.Is(err, auth.ErrUserDeleted):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "user no longer exists"}}

	// Not found
	case errors.Is(err, model.ErrMovieNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeMovieNotFound, "movie not found"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "not found"}}
}

// NewMethodNotAllowedError creates an error for a known route with the wrong method
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, APIError{CodeMethodNotAllowed, "method not allowed"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "internal server error"}}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/mcoot/watchlist/internal/api/middleware"
	"github.com/mcoot/watchlist/internal/api/request"
	"github.com/mcoot/watchlist/internal/api/response"
	"github.com/mcoot/watchlist/internal/metrics"
	"github.com/mcoot/watchlist/internal/services/auth"
)

// AuthHandler handles account and token endpoints
type AuthHandler struct {
	authService *auth.Service
	metrics     *metrics.Metrics
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     m,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RegisterResponse{
		Message: "User registered successfully.",
		User:    response.UserFromModel(user),
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.RecordAuthFailure(auth.FailureReason(err))
		}
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LoginResponse{
		Message: "Logged in successfully.",
		Token:   token,
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())
	response.JSON(w, http.StatusOK, response.MeResponse{
		User: response.UserFromPrincipal(principal),
	})
}

// DeleteMe handles DELETE /auth/me
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	if err := h.authService.DeleteAccount(r.Context(), principal); err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DeleteAccountResponse{
		Message: "Account deleted.",
		User:    response.UserFromPrincipal(principal),
	})
}

package handler

import (
	"net/http"

	"github.com/mcoot/watchlist/internal/api/response"
	"github.com/mcoot/watchlist/internal/storage"
)

// DebugHandler serves read-only diagnostics. Only mounted when debug endpoints are enabled.
type DebugHandler struct {
	storage storage.Storage
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(store storage.Storage) *DebugHandler {
	return &DebugHandler{
		storage: store,
	}
}

// Users handles GET /debug/users
func (h *DebugHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.storage.ListUsers(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DebugUsersFromModel(users))
}

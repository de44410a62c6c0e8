package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/watchlist/internal/api/middleware"
	"github.com/mcoot/watchlist/internal/api/request"
	"github.com/mcoot/watchlist/internal/api/response"
	"github.com/mcoot/watchlist/internal/model"
	"github.com/mcoot/watchlist/internal/services/watchlist"
)

// MovieHandler handles the authenticated user's watchlist endpoints
type MovieHandler struct {
	watchlist *watchlist.Service
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(watchlistService *watchlist.Service) *MovieHandler {
	return &MovieHandler{
		watchlist: watchlistService,
	}
}

// Create handles POST /movies
func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	var req request.CreateMovieRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	movie, err := h.watchlist.Create(r.Context(), principal, watchlist.NewMovie{
		Title:    req.Title,
		Language: req.Language,
		Overview: req.Overview,
		Watched:  req.Watched,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.MovieMessageResponse{
		Message: "Movie added to watchlist.",
		Movie:   response.MovieFromModel(movie),
	})
}

// List handles GET /movies?status=watched|unwatched
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	status, err := model.ParseWatchStatus(r.URL.Query().Get("status"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	movies, err := h.watchlist.List(r.Context(), principal, status)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MoviesResponse{
		Movies: response.MoviesFromModel(movies),
	})
}

// Get handles GET /movies/{id}
func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	movie, err := h.watchlist.Get(r.Context(), principal, movieID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MovieResponse{
		Movie: response.MovieFromModel(movie),
	})
}

// Update handles PATCH /movies/{id}
func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	var req request.UpdateMovieRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	movie, err := h.watchlist.Update(r.Context(), principal, movieID(r), watchlist.MoviePatch{
		Title:    req.Title,
		Language: req.Language,
		Overview: req.Overview,
		Watched:  req.Watched,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MovieMessageResponse{
		Message: "Movie updated.",
		Movie:   response.MovieFromModel(movie),
	})
}

// Delete handles DELETE /movies/{id}
func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	movie, err := h.watchlist.Delete(r.Context(), principal, movieID(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MovieMessageResponse{
		Message: "Movie removed.",
		Movie:   response.MovieFromModel(movie),
	})
}

func movieID(r *http.Request) model.MovieID {
	return model.MovieID(mux.Vars(r)["id"])
}

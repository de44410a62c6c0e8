package response

import (
	"github.com/mcoot/watchlist/internal/model"
	"github.com/mcoot/watchlist/internal/services/auth"
)

// User represents an account in API responses. The password digest never appears here.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:       string(u.ID),
		Username: u.Username,
	}
}

// UserFromPrincipal converts the authenticated principal to a response User
func UserFromPrincipal(p *auth.Principal) User {
	return User{
		ID:       string(p.UserID()),
		Username: p.Username(),
	}
}

// RegisterResponse is the response for POST /auth/register
type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// LoginResponse is the response for POST /auth/login
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// MeResponse is the response for GET /auth/me
type MeResponse struct {
	User User `json:"user"`
}

// DeleteAccountResponse is the response for DELETE /auth/me
type DeleteAccountResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// Movie represents a watchlist entry in API responses
type Movie struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Language string `json:"language"`
	Overview string `json:"overview"`
	Watched  bool   `json:"watched"`
}

// MovieFromModel converts a model.Movie to a response Movie
func MovieFromModel(m *model.Movie) Movie {
	return Movie{
		ID:       string(m.ID),
		Title:    m.Title,
		Language: m.Language,
		Overview: m.Overview,
		Watched:  m.Watched,
	}
}

// MoviesFromModel converts a slice, always producing a non-nil result
func MoviesFromModel(movies []model.Movie) []Movie {
	result := make([]Movie, 0, len(movies))
	for i := range movies {
		result = append(result, MovieFromModel(&movies[i]))
	}
	return result
}

// MovieResponse is the response for GET /movies/{id}
type MovieResponse struct {
	Movie Movie `json:"movie"`
}

// MovieMessageResponse is the response for movie mutations
type MovieMessageResponse struct {
	Message string `json:"message"`
	Movie   Movie  `json:"movie"`
}

// MoviesResponse is the response for GET /movies
type MoviesResponse struct {
	Movies []Movie `json:"movies"`
}

// UserSummary is one row of the debug user report
type UserSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	MoviesCount int    `json:"moviesCount"`
}

// DebugUsersResponse is the response for GET /debug/users
type DebugUsersResponse struct {
	Users []UserSummary `json:"users"`
}

// DebugUsersFromModel converts the storage report
func DebugUsersFromModel(users []model.UserSummary) DebugUsersResponse {
	result := make([]UserSummary, 0, len(users))
	for _, u := range users {
		result = append(result, UserSummary{
			ID:          string(u.ID),
			Username:    u.Username,
			MoviesCount: u.MoviesCount,
		})
	}
	return DebugUsersResponse{Users: result}
}

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

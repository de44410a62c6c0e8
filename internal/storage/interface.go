package storage

import (
	"context"

	"github.com/mcoot/watchlist/internal/model"
)

// MoviesUpdateFunc receives a private copy of a user's watchlist and returns its
// replacement. Returning an error aborts the update and nothing is written.
type MoviesUpdateFunc func(movies []model.Movie) ([]model.Movie, error)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations

	// CreateUser inserts a new user. The username uniqueness check and the insert
	// are a single atomic step; a duplicate returns model.ErrUsernameTaken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// DeleteUser removes the user together with its watchlist. Unknown ids are a no-op.
	DeleteUser(ctx context.Context, id model.UserID) error
	ListUsers(ctx context.Context) ([]model.UserSummary, error)

	// Watchlist operations

	GetMovies(ctx context.Context, userID model.UserID) ([]model.Movie, error)
	// UpdateMovies applies fn atomically with respect to other updates of the same
	// user's watchlist.
	UpdateMovies(ctx context.Context, userID model.UserID, fn MoviesUpdateFunc) error
}

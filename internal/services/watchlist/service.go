package watchlist

import (
	"context"
	"errors"
	"slices"

	"github.com/rs/zerolog"

	"github.com/mcoot/watchlist/internal/dependencies/random"
	"github.com/mcoot/watchlist/internal/model"
	"github.com/mcoot/watchlist/internal/services/auth"
	"github.com/mcoot/watchlist/internal/storage"
)

// NewMovie holds the fields accepted when adding a movie
type NewMovie struct {
	Title    string
	Language string
	Overview string
	Watched  bool
}

// MoviePatch holds the fields to change; nil fields are left alone
type MoviePatch struct {
	Title    *string
	Language *string
	Overview *string
	Watched  *bool
}

// Empty reports whether the patch changes nothing
func (p MoviePatch) Empty() bool {
	return p.Title == nil && p.Language == nil && p.Overview == nil && p.Watched == nil
}

func (p MoviePatch) apply(m *model.Movie) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Language != nil {
		m.Language = *p.Language
	}
	if p.Overview != nil {
		m.Overview = *p.Overview
	}
	if p.Watched != nil {
		m.Watched = *p.Watched
	}
}

// Service manages each user's movie watchlist.
// Every operation is scoped to the principal's own collection: a movie id from
// another user's watchlist behaves exactly like one that does not exist.
type Service struct {
	storage storage.Storage
	ids     random.IDGenerator
}

// New creates a new watchlist Service
func New(storage storage.Storage, ids random.IDGenerator) *Service {
	return &Service{
		storage: storage,
		ids:     ids,
	}
}

// Create appends a movie to the principal's watchlist
func (s *Service) Create(ctx context.Context, p *auth.Principal, in NewMovie) (*model.Movie, error) {
	if in.Title == "" {
		return nil, model.ErrMissingTitle
	}

	movie := model.Movie{
		ID:       model.MovieID(s.ids.NewID()),
		Title:    in.Title,
		Language: in.Language,
		Overview: in.Overview,
		Watched:  in.Watched,
	}
	if movie.Language == "" {
		movie.Language = model.DefaultLanguage
	}

	err := s.update(ctx, p, func(movies []model.Movie) ([]model.Movie, error) {
		return append(movies, movie), nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("user_id", string(p.UserID())).
		Str("movie_id", string(movie.ID)).
		Msg("movie added")

	return &movie, nil
}

// List returns the principal's movies in insertion order, filtered by status
func (s *Service) List(ctx context.Context, p *auth.Principal, status model.WatchStatus) ([]model.Movie, error) {
	if _, err := model.ParseWatchStatus(string(status)); err != nil {
		return nil, err
	}

	movies, err := s.movies(ctx, p)
	if err != nil {
		return nil, err
	}
	return model.FilterMovies(movies, status), nil
}

// Get returns one movie from the principal's watchlist
func (s *Service) Get(ctx context.Context, p *auth.Principal, id model.MovieID) (*model.Movie, error) {
	movies, err := s.movies(ctx, p)
	if err != nil {
		return nil, err
	}

	i := indexOf(movies, id)
	if i < 0 {
		return nil, model.ErrMovieNotFound
	}
	movie := movies[i]
	return &movie, nil
}

// Update applies a partial change to one movie and returns the result
func (s *Service) Update(ctx context.Context, p *auth.Principal, id model.MovieID, patch MoviePatch) (*model.Movie, error) {
	var updated model.Movie
	err := s.update(ctx, p, func(movies []model.Movie) ([]model.Movie, error) {
		i := indexOf(movies, id)
		if i < 0 {
			return nil, model.ErrMovieNotFound
		}
		if patch.Title != nil && *patch.Title == "" {
			return nil, model.ErrMissingTitle
		}

		updated = movies[i]
		patch.apply(&updated)
		movies[i] = updated
		return movies, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes one movie and returns it
func (s *Service) Delete(ctx context.Context, p *auth.Principal, id model.MovieID) (*model.Movie, error) {
	var removed model.Movie
	err := s.update(ctx, p, func(movies []model.Movie) ([]model.Movie, error) {
		i := indexOf(movies, id)
		if i < 0 {
			return nil, model.ErrMovieNotFound
		}
		removed = movies[i]
		return slices.Delete(movies, i, i+1), nil
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("user_id", string(p.UserID())).
		Str("movie_id", string(removed.ID)).
		Msg("movie removed")

	return &removed, nil
}

func (s *Service) movies(ctx context.Context, p *auth.Principal) ([]model.Movie, error) {
	movies, err := s.storage.GetMovies(ctx, p.UserID())
	if err != nil {
		return nil, ownerError(err)
	}
	return movies, nil
}

func (s *Service) update(ctx context.Context, p *auth.Principal, fn storage.MoviesUpdateFunc) error {
	if err := s.storage.UpdateMovies(ctx, p.UserID(), fn); err != nil {
		return ownerError(err)
	}
	return nil
}

// ownerError reports an account removed after the request was authenticated
// the same way the gate would have
func ownerError(err error) error {
	if errors.Is(err, model.ErrUserNotFound) {
		return auth.ErrUserDeleted
	}
	return err
}

func indexOf(movies []model.Movie, id model.MovieID) int {
	return slices.IndexFunc(movies, func(m model.Movie) bool {
		return m.ID == id
	})
}

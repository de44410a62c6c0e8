package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/watchlist/internal/model"
	"github.com/mcoot/watchlist/internal/storage"
)

// userRecord holds one user and their watchlist.
// movies is replaced wholesale on every update and never mutated in place.
type userRecord struct {
	mu      sync.Mutex
	user    model.User
	movies  []model.Movie
	deleted bool
}

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*userRecord
	usernameIndex map[string]model.UserID
	order         []model.UserID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*userRecord),
		usernameIndex: make(map[string]model.UserID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usernameIndex[user.Username]; taken {
		return model.ErrUsernameTaken
	}
	s.users[user.ID] = &userRecord{user: *user, movies: []model.Movie{}}
	s.usernameIndex[user.Username] = user.ID
	s.order = append(s.order, user.ID)
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	rec, err := s.record(id)
	if err != nil {
		return nil, err
	}
	user := rec.user
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return nil
	}
	delete(s.users, id)
	delete(s.usernameIndex, rec.user.Username)
	s.order = slices.DeleteFunc(s.order, func(other model.UserID) bool { return other == id })

	// In-flight watchlist updates holding rec.mu observe the flag and fail
	rec.mu.Lock()
	rec.deleted = true
	rec.movies = nil
	rec.mu.Unlock()
	return nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]model.UserSummary, 0, len(s.order))
	for _, id := range s.order {
		rec := s.users[id]
		rec.mu.Lock()
		count := len(rec.movies)
		rec.mu.Unlock()
		result = append(result, model.UserSummary{
			ID:          rec.user.ID,
			Username:    rec.user.Username,
			MoviesCount: count,
		})
	}
	return result, nil
}

// Watchlist operations

func (s *Storage) GetMovies(ctx context.Context, userID model.UserID) ([]model.Movie, error) {
	rec, err := s.record(userID)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return nil, model.ErrUserNotFound
	}
	return slices.Clone(rec.movies), nil
}

func (s *Storage) UpdateMovies(ctx context.Context, userID model.UserID, fn storage.MoviesUpdateFunc) error {
	rec, err := s.record(userID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return model.ErrUserNotFound
	}

	next, err := fn(slices.Clone(rec.movies))
	if err != nil {
		return err
	}
	rec.movies = slices.Clip(slices.Clone(next))
	return nil
}

func (s *Storage) record(id model.UserID) (*userRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return rec, nil
}

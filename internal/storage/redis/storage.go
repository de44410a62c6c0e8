package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/mcoot/watchlist/internal/model"
	"github.com/mcoot/watchlist/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.TxRetryDelay <= 0 {
		cfg.TxRetryDelay = DefaultConfig().TxRetryDelay
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Claiming the username index key is the uniqueness check
	claimed, err := s.client.SetNX(ctx, usernameIndexKey(user.Username), string(user.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrUsernameTaken
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	pipe.Set(ctx, moviesKey(user.ID), "[]", 0)
	if _, err := pipe.Exec(ctx); err != nil {
		// Release the username so a retry can succeed
		_ = s.client.Del(ctx, usernameIndexKey(user.Username)).Err()
		return err
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return readUser(ctx, s.client, id)
}

func readUser(ctx context.Context, g getter, id model.UserID) (*model.User, error) {
	data, err := g.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	// Look up user ID from username index
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(id))
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	txf := func(tx *redis.Tx) error {
		user, err := readUser(ctx, tx, id)
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				return nil
			}
			return err
		}

		indexKey := usernameIndexKey(user.Username)
		if err := tx.Watch(ctx, indexKey).Err(); err != nil {
			return err
		}
		owner, err := tx.Get(ctx, indexKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, userKey(id), moviesKey(id))
			// The name may already belong to a newer account
			if owner == string(id) {
				pipe.Del(ctx, indexKey)
			}
			return nil
		})
		return err
	}

	return s.watchWithRetry(ctx, txf, userKey(id))
}

func (s *Storage) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, userKeyPattern(), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return []model.UserSummary{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(values))
	for _, val := range values {
		raw, ok := val.(string)
		if !ok {
			continue // Deleted between SCAN and MGET
		}
		var user model.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			continue // Skip invalid data
		}
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b model.User) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.Username, b.Username))
	})

	summaries := make([]model.UserSummary, 0, len(users))
	for _, user := range users {
		movies, err := readMovies(ctx, s.client, user.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, model.UserSummary{
			ID:          user.ID,
			Username:    user.Username,
			MoviesCount: len(movies),
		})
	}
	return summaries, nil
}

// Watchlist operations

func (s *Storage) GetMovies(ctx context.Context, userID model.UserID) ([]model.Movie, error) {
	exists, err := s.client.Exists(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrUserNotFound
	}
	return readMovies(ctx, s.client, userID)
}

func (s *Storage) UpdateMovies(ctx context.Context, userID model.UserID, fn storage.MoviesUpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, userKey(userID)).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return model.ErrUserNotFound
		}

		movies, err := readMovies(ctx, tx, userID)
		if err != nil {
			return err
		}
		next, err := fn(movies)
		if err != nil {
			return err
		}
		if next == nil {
			next = []model.Movie{}
		}
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}

		// EXEC fails with TxFailedErr if either watched key changed since WATCH
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, moviesKey(userID), data, 0)
			return nil
		})
		return err
	}

	return s.watchWithRetry(ctx, txf, userKey(userID), moviesKey(userID))
}

// watchWithRetry runs an optimistic transaction, rerunning txf while a watched key
// changes under it
func (s *Storage) watchWithRetry(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	backoff := retry.WithMaxRetries(s.cfg.MaxTxRetries, retry.NewConstant(s.cfg.TxRetryDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func readMovies(ctx context.Context, g getter, userID model.UserID) ([]model.Movie, error) {
	data, err := g.Get(ctx, moviesKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.Movie{}, nil
		}
		return nil, err
	}

	movies := []model.Movie{}
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

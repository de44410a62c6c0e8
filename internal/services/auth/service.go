package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcoot/watchlist/internal/dependencies/clock"
	"github.com/mcoot/watchlist/internal/dependencies/random"
	"github.com/mcoot/watchlist/internal/model"
	"github.com/mcoot/watchlist/internal/storage"
)

// Errors
var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingSecret      = errors.New("token signing secret is not configured")

	// Authentication gate failures, each carries the message shown to the client
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUserDeleted  = errors.New("user no longer exists")
)

// dummyPassword is hashed once so logins for unknown users still pay for a bcrypt compare
const dummyPassword = "watchlist-timing-equaliser"

// Principal is the authenticated caller of a request.
// Only Service.Authenticate creates one, so holding a Principal means the token was verified.
type Principal struct {
	userID   model.UserID
	username string
}

func (p *Principal) UserID() model.UserID {
	return p.userID
}

func (p *Principal) Username() string {
	return p.username
}

// Config holds configuration for the auth service
type Config struct {
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
}

// DefaultConfig returns default auth configuration, without a secret
func DefaultConfig() Config {
	return Config{
		TokenTTL:   DefaultTokenTTL,
		BcryptCost: MinBcryptCost,
	}
}

// Service handles registration, login and token authentication
type Service struct {
	storage storage.Storage
	ids     random.IDGenerator
	clock   clock.Clock
	hasher  PasswordHasher
	tokens  *TokenService

	dummyOnce   sync.Once
	dummyDigest string
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, ids random.IDGenerator, cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	return &Service{
		storage: storage,
		ids:     ids,
		clock:   clock,
		hasher:  NewBcryptHasher(cfg.BcryptCost),
		tokens:  NewTokenService(cfg.Secret, cfg.TokenTTL, clock),
	}, nil
}

// Tokens exposes the token service
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Register creates an account with a hashed password
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           model.UserID(s.ids.NewID()),
		Username:     username,
		PasswordHash: digest,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("user_id", string(user.ID)).
		Str("username", user.Username).
		Msg("user registered")

	return user, nil
}

// Login checks credentials and issues a session token
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}

	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			return "", err
		}
		// Same bcrypt cost as a real comparison
		_, _ = s.hasher.Verify(password, s.dummyHash())
		zerolog.Ctx(ctx).Debug().Str("reason", "unknown_user").Msg("login rejected")
		return "", ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password for %s: %w", user.ID, err)
	}
	if !ok {
		zerolog.Ctx(ctx).Debug().Str("reason", "wrong_password").Msg("login rejected")
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID, user.Username)
}

// Authenticate resolves a bearer token to the principal it was issued for.
// The returned error wraps ErrMissingToken, ErrInvalidToken or ErrUserDeleted; for
// ErrInvalidToken it also wraps the specific verification failure.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	user, err := s.storage.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrUserDeleted
		}
		return nil, err
	}

	return &Principal{userID: user.ID, username: user.Username}, nil
}

// DeleteAccount removes the principal's account and watchlist.
// Tokens already issued for the account stop authenticating immediately.
func (s *Service) DeleteAccount(ctx context.Context, p *Principal) error {
	if err := s.storage.DeleteUser(ctx, p.UserID()); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", string(p.UserID())).Msg("user deleted")
	return nil
}

func (s *Service) dummyHash() string {
	s.dummyOnce.Do(func() {
		// Hash only fails for empty or oversized input
		s.dummyDigest, _ = s.hasher.Hash(dummyPassword)
	})
	return s.dummyDigest
}

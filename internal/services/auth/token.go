package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/watchlist/internal/dependencies/clock"
	"github.com/mcoot/watchlist/internal/model"
)

// Token verification failures. Exactly one is returned by TokenService.Verify on failure.
var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token has expired")
)

// DefaultTokenTTL is how long an issued token stays valid
const DefaultTokenTTL = 2 * time.Hour

// Claims is the payload carried by a session token
type Claims struct {
	UserID   model.UserID `json:"uid"`
	Username string       `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless HS256 session tokens
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenService creates a token service signing with secret
func NewTokenService(secret []byte, ttl time.Duration, clock clock.Clock) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		clock:  clock,
	}
}

// TTL returns the lifetime of issued tokens
func (t *TokenService) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the user that expires after the configured TTL
func (t *TokenService) Issue(userID model.UserID, username string) (string, error) {
	now := t.clock.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(t.ttl))),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ceilSecond rounds up to the whole second so a token lives at least the full TTL
func ceilSecond(t time.Time) time.Time {
	if truncated := t.Truncate(time.Second); !truncated.Equal(t) {
		return truncated.Add(time.Second)
	}
	return t
}

// Verify checks the signature and expiry of a token and returns its claims
func (t *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}

	if claims.UserID == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// FailureReason maps an authentication failure to a short label for logs and metrics
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, ErrUserDeleted):
		return "user_deleted"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "malformed"
	}
}

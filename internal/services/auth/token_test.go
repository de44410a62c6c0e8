package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/watchlist/internal/dependencies/mocks"
)

type TokenSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	tokens *TokenService
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func (s *TokenSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.tokens = NewTokenService([]byte("test-secret"), DefaultTokenTTL, s.clock)
}

func (s *TokenSuite) TestIssueAndVerify() {
	token, err := s.tokens.Issue("user-1", "alice")
	s.Require().NoError(err)

	claims, err := s.tokens.Verify(token)
	s.Require().NoError(err)
	s.Equal("user-1", string(claims.UserID))
	s.Equal("alice", claims.Username)
	s.True(s.clock.Now().Add(2*time.Hour).Equal(claims.ExpiresAt.Time))
}

func (s *TokenSuite) TestValidJustBeforeExpiry() {
	token, _ := s.tokens.Issue("user-1", "alice")

	s.clock.Advance(time.Hour + 59*time.Minute + 59*time.Second)

	_, err := s.tokens.Verify(token)
	s.NoError(err)
}

func (s *TokenSuite) TestExpiredAtTTL() {
	token, _ := s.tokens.Issue("user-1", "alice")

	s.clock.Advance(2 * time.Hour)

	_, err := s.tokens.Verify(token)
	s.ErrorIs(err, ErrTokenExpired)
}

func (s *TokenSuite) TestSubSecondIssueLivesFullTTL() {
	s.clock.Set(time.Date(2024, 1, 1, 10, 0, 0, 900_000_000, time.UTC))
	token, err := s.tokens.Issue("user-1", "alice")
	s.Require().NoError(err)

	s.clock.Advance(2*time.Hour - 500*time.Millisecond)
	_, err = s.tokens.Verify(token)
	s.NoError(err)

	s.clock.Advance(500 * time.Millisecond)
	_, err = s.tokens.Verify(token)
	s.NoError(err, "still inside the second that exp was rounded up to")

	s.clock.Set(time.Date(2024, 1, 1, 12, 0, 1, 0, time.UTC))
	_, err = s.tokens.Verify(token)
	s.ErrorIs(err, ErrTokenExpired)
}

func (s *TokenSuite) TestWrongSecret() {
	other := NewTokenService([]byte("other-secret"), DefaultTokenTTL, s.clock)
	token, _ := other.Issue("user-1", "alice")

	_, err := s.tokens.Verify(token)
	s.ErrorIs(err, ErrTokenSignatureInvalid)
}

func (s *TokenSuite) TestTamperedPayload() {
	token, _ := s.tokens.Issue("user-1", "alice")
	forged, _ := s.tokens.Issue("user-2", "bob")

	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err := s.tokens.Verify(tampered)
	s.ErrorIs(err, ErrTokenSignatureInvalid)
}

func (s *TokenSuite) TestRejectsNoneAlgorithm() {
	claims := Claims{
		UserID:   "user-1",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(s.clock.Now()),
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.tokens.Verify(token)
	s.ErrorIs(err, ErrTokenSignatureInvalid)
}

func (s *TokenSuite) TestRejectsOtherHMACAlgorithm() {
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	s.Require().NoError(err)

	_, err = s.tokens.Verify(token)
	s.ErrorIs(err, ErrTokenSignatureInvalid)
}

func (s *TokenSuite) TestMalformed() {
	for _, token := range []string{"", "abc", "a.b.c", "not.a.jwt.at.all"} {
		_, err := s.tokens.Verify(token)
		s.ErrorIs(err, ErrTokenMalformed, "token %q", token)
	}
}

func (s *TokenSuite) TestMissingExpiryIsRejected() {
	claims := Claims{UserID: "user-1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	s.Require().NoError(err)

	_, err = s.tokens.Verify(token)
	s.ErrorIs(err, ErrTokenMalformed)
}

func (s *TokenSuite) TestFailureReason() {
	s.Equal("missing_token", FailureReason(ErrMissingToken))
	s.Equal("expired", FailureReason(ErrTokenExpired))
	s.Equal("signature_invalid", FailureReason(ErrTokenSignatureInvalid))
	s.Equal("malformed", FailureReason(ErrTokenMalformed))
	s.Equal("user_deleted", FailureReason(ErrUserDeleted))
	s.Equal("invalid_credentials", FailureReason(ErrInvalidCredentials))
}

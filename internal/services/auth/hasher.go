package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest work factor accepted for stored passwords
const MinBcryptCost = 10

// maxPasswordBytes is the bcrypt input limit
const maxPasswordBytes = 72

var (
	ErrEmptyPassword   = errors.New("password must not be empty")
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
	ErrMalformedDigest = errors.New("stored password digest is malformed")
)

// PasswordHasher turns plaintext passwords into salted digests and checks them
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify returns (false, nil) on a mismatch. An error means the digest itself is unusable.
	Verify(plaintext, digest string) (bool, error)
}

// BcryptHasher is the PasswordHasher used by the service
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher; costs below MinBcryptCost are raised to it
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		// Cannot match anything we would have stored
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrMalformedDigest, err)
	}
}

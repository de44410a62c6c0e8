package random

import (
	"github.com/google/uuid"
)

// IDGenerator hands out identifiers for users and movies.
// Implementations must be safe for concurrent use.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces random (v4) UUIDs
type UUIDGenerator struct{}

// New creates a UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a fresh UUID string
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

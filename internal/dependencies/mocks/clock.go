package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/watchlist/internal/dependencies/clock"
)

// MockClock is a settable Clock for tests
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	c.mu.Unlock()
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.currentTime = t
	c.mu.Unlock()
}

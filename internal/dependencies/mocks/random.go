package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/watchlist/internal/dependencies/random"
)

// MockIDGenerator returns queued IDs first, then a predictable sequence
type MockIDGenerator struct {
	mu     sync.Mutex
	queued []string
	next   int
}

// Ensure MockIDGenerator implements IDGenerator
var _ random.IDGenerator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a MockIDGenerator
func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

// NewID pops the next queued ID, falling back to "id-1", "id-2", ...
func (g *MockIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queued) > 0 {
		id := g.queued[0]
		g.queued = g.queued[1:]
		return id
	}
	g.next++
	return fmt.Sprintf("id-%d", g.next)
}

// Queue adds IDs to be returned by subsequent NewID calls
func (g *MockIDGenerator) Queue(ids ...string) {
	g.mu.Lock()
	g.queued = append(g.queued, ids...)
	g.mu.Unlock()
}

// Reset clears queued IDs and restarts the fallback sequence
func (g *MockIDGenerator) Reset() {
	g.mu.Lock()
	g.queued = nil
	g.next = 0
	g.mu.Unlock()
}

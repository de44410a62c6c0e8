package factory

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mcoot/watchlist/internal/dependencies/mocks"
	"github.com/mcoot/watchlist/internal/services/auth"
	"github.com/mcoot/watchlist/internal/storage"
	"github.com/mcoot/watchlist/internal/storage/memory"
)

// TestSecret signs tokens in test apps
const TestSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDGenerator
}

// NewTestApp creates an App on in-memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates a test App on the given storage backend
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDGenerator()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte(TestSecret)

	app, err := newWithDependencies(store, mockClock, mockIDs, authCfg, zerolog.Nop())
	if err != nil {
		// Only fails without a secret
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}

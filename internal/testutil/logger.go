package testutil

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

// NopLogger returns a logger that discards all output.
// Use this in tests to avoid log noise.
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// LogBuffer collects JSON log lines written concurrently by handlers
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// BufferLogger returns a debug-level logger writing to a fresh LogBuffer
func BufferLogger() (zerolog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	return zerolog.New(buf).Level(zerolog.DebugLevel), buf
}

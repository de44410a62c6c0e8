package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Optimistic watchlist transactions are retried this many times when a
	// concurrent writer touches the same keys, waiting TxRetryDelay in between.
	MaxTxRetries uint64
	TxRetryDelay time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379/0",
		PoolSize:     10,
		MinIdleConns: 2,
		MaxTxRetries: 10,
		TxRetryDelay: 5 * time.Millisecond,
	}
}

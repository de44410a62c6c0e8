package redis

import (
	"fmt"

	"github.com/mcoot/watchlist/internal/model"
)

// Key prefix for all watchlist data
const keyPrefix = "watchlist"

// userKey returns the Redis key for a User record (JSON)
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// userKeyPattern matches every user record key
func userKeyPattern() string {
	return fmt.Sprintf("%s:user:*", keyPrefix)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// moviesKey returns the Redis key for a user's watchlist (JSON array)
func moviesKey(id model.UserID) string {
	return fmt.Sprintf("%s:movies:%s", keyPrefix, id)
}

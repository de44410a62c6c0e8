package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// User is a registered account. ID and Username never change after registration.
type User struct {
	ID           UserID    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"` // bcrypt digest, never leaves the service layer
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the read-only view used by the debug report
type UserSummary struct {
	ID          UserID
	Username    string
	MoviesCount int
}

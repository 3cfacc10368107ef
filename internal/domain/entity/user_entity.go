package entity

import (
	"time"
)

// User is the aggregate root for the credential domain.
// Password holds a bcrypt hash, never the plaintext. The single-use
// reset/verification secrets live only in the store and are managed
// through dedicated repository operations, so they can never leak
// through a serialized User.
type User struct {
	ID            string
	Email         string // stored lowercased; uniqueness is case-insensitive
	Password      string
	Name          string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

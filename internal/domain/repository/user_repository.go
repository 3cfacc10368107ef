package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/expense-tracker-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a row does not exist. Ownership
	// violations on transactions are folded into it before they reach
	// any caller outside the service layer.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail maps the unique index on users.email.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines user-related store operations. Secret tokens
// (reset / verification) are written and consumed through conditional
// single-statement updates so a token can never be replayed, even under
// concurrent requests racing the same value.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateProfile(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// Delete removes the user; owned transactions go with it (FK cascade).
	Delete(ctx context.Context, id string) error

	// SetResetToken overwrites any prior unconsumed reset token.
	SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error
	// ConsumeResetToken atomically checks the token is present and
	// unexpired, stores the new password hash and clears the token.
	// Returns the user id, or ErrNotFound if no row matched.
	ConsumeResetToken(ctx context.Context, token, passwordHash string) (string, error)

	// SetVerifyToken overwrites any prior unconsumed verification token.
	SetVerifyToken(ctx context.Context, userID, token string, expiry time.Time) error
	// ConsumeVerifyToken atomically marks the email verified and clears
	// the token. Returns the user id, or ErrNotFound if no row matched.
	ConsumeVerifyToken(ctx context.Context, token string) (string, error)
}

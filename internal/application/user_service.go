package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/expense-tracker-api/internal/domain/entity"
	repo "github.com/oksasatya/expense-tracker-api/internal/domain/repository"
	"github.com/oksasatya/expense-tracker-api/pkg/helpers"
)

var (
	// ErrInvalidCredentials covers both "no such user" and "wrong
	// password" so a login attempt can never probe for registered emails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = repo.ErrDuplicateEmail
	// ErrInvalidOrExpiredToken covers missing, expired and already
	// consumed secret tokens alike.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)

// UserService implements the credential lifecycle: registration, login,
// password reset and email verification via single-use secret tokens,
// profile management and account deletion.
//
// Sessions are stateless signed tokens; a password change or account
// deletion does not retroactively invalidate tokens already issued.
// That is a documented property of this design, not an oversight.
type UserService struct {
	Repo   repo.UserRepository
	Txns   repo.TransactionRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger

	ResetTokenTTL  time.Duration
	VerifyTokenTTL time.Duration
}

func NewUserService(users repo.UserRepository, txns repo.TransactionRepository, jwt *helpers.JWTManager, logger *logrus.Logger, resetTTL, verifyTTL time.Duration) *UserService {
	return &UserService{
		Repo:           users,
		Txns:           txns,
		JWT:            jwt,
		Logger:         logger,
		ResetTokenTTL:  resetTTL,
		VerifyTokenTTL: verifyTTL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user and issues a session token. Email uniqueness
// is case-insensitive; the unique index backs up the pre-check.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*entity.User, string, time.Time, error) {
	if err := helpers.CheckPasswordPolicy(password); err != nil {
		return nil, "", time.Time{}, err
	}
	email = normalizeEmail(email)

	if existing, err := s.Repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", time.Time{}, ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, "", time.Time{}, err
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	u := &entity.User{Email: email, Password: hash, Name: name}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.JWT.GenerateSessionToken(u.ID, u.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}

// Login verifies credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, string, time.Time, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || u == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, exp, err := s.JWT.GenerateSessionToken(u.ID, u.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}

// RequestPasswordReset issues a new reset token for the address,
// overwriting any unconsumed one. An unknown email returns an empty
// token and no error; the caller responds identically either way.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, *entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", nil, nil
		}
		return "", nil, err
	}
	token, err := helpers.GenSecretToken()
	if err != nil {
		return "", nil, err
	}
	if err := s.Repo.SetResetToken(ctx, u.ID, token, time.Now().Add(s.ResetTokenTTL)); err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// ResetPassword consumes a reset token and stores the new hash. A token
// already consumed, expired or never issued fails identically.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := helpers.CheckPasswordPolicy(newPassword); err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	uid, err := s.Repo.ConsumeResetToken(ctx, token, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}
	s.Logger.WithField("user_id", uid).Info("password reset completed")
	return nil
}

// ChangePassword re-verifies the current password before accepting the
// new one.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	if !helpers.CompareHashAndPassword(u.Password, currentPassword) {
		return ErrInvalidCredentials
	}
	if err := helpers.CheckPasswordPolicy(newPassword); err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, userID, hash)
}

// RequestEmailVerification issues a verification token. For an already
// verified user the returned token is empty; the caller treats that as
// an idempotent success.
func (s *UserService) RequestEmailVerification(ctx context.Context, userID string) (string, *entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return "", nil, ErrUserNotFound
	}
	if u.EmailVerified {
		return "", u, nil
	}
	token, err := helpers.GenSecretToken()
	if err != nil {
		return "", nil, err
	}
	if err := s.Repo.SetVerifyToken(ctx, u.ID, token, time.Now().Add(s.VerifyTokenTTL)); err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// VerifyEmail consumes a verification token and marks the email verified.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	uid, err := s.Repo.ConsumeVerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}
	s.Logger.WithField("user_id", uid).Info("email verified")
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateProfileInput uses pointer fields so "absent" and "present but
// empty" stay distinguishable.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if err := s.Repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteAccount requires password re-verification. Owned transactions
// are removed by the store's cascade; the ledger never serves orphans.
func (s *UserService) DeleteAccount(ctx context.Context, userID, password string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return ErrInvalidCredentials
	}
	return s.Repo.Delete(ctx, userID)
}

// AccountStats is the profile statistics view.
type AccountStats struct {
	TotalTransactions int64
	AccountCreated    time.Time
	EmailVerified     bool
	MonthlyStats      []entity.MonthlyStat
}

func (s *UserService) Stats(ctx context.Context, userID string) (*AccountStats, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	count, err := s.Txns.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	monthly, err := s.Txns.MonthlyStats(ctx, userID, 6)
	if err != nil {
		return nil, err
	}
	return &AccountStats{
		TotalTransactions: count,
		AccountCreated:    u.CreatedAt,
		EmailVerified:     u.EmailVerified,
		MonthlyStats:      monthly,
	}, nil
}

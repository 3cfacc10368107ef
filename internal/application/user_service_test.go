package application

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/expense-tracker-api/pkg/helpers"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestUserService() (*UserService, *fakeUserRepo, *fakeTxnRepo) {
	users := newFakeUserRepo()
	txns := newFakeTxnRepo()
	jwt := helpers.NewJWTManager("testsecret", time.Hour)
	svc := NewUserService(users, txns, jwt, testLogger(), time.Hour, 24*time.Hour)
	return svc, users, txns
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	u, token, exp, err := svc.Register(ctx, "Alice@Example.com", "Sup3rSecret", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	claims, err := svc.JWT.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	lu, ltoken, _, err := svc.Login(ctx, "alice@example.com", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, lu.ID)
	assert.NotEmpty(t, ltoken)

	_, _, _, err = svc.Login(ctx, "alice@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "Sup3rSecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "bob@example.com", "Sup3rSecret", "Bob")
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "BOB@Example.COM", "Sup3rSecret", "Bob Again")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _, _ := newTestUserService()
	_, _, _, err := svc.Register(context.Background(), "carol@example.com", "short", "Carol")
	assert.ErrorIs(t, err, helpers.ErrWeakPassword)
}

func TestPasswordResetTokenSingleUse(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "dave@example.com", "Sup3rSecret", "Dave")
	require.NoError(t, err)

	token, u, err := svc.RequestPasswordReset(ctx, "dave@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Len(t, token, 64)

	require.NoError(t, svc.ResetPassword(ctx, token, "N3wPassword"))

	// Consumed token cannot be replayed.
	err = svc.ResetPassword(ctx, token, "An0therPass")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	_, _, _, err = svc.Login(ctx, "dave@example.com", "N3wPassword")
	assert.NoError(t, err)
	_, _, _, err = svc.Login(ctx, "dave@example.com", "Sup3rSecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, _, _ := newTestUserService()
	token, u, err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	assert.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, u)
}

func TestPasswordResetOverwritesPriorToken(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "erin@example.com", "Sup3rSecret", "Erin")
	require.NoError(t, err)

	first, _, err := svc.RequestPasswordReset(ctx, "erin@example.com")
	require.NoError(t, err)
	second, _, err := svc.RequestPasswordReset(ctx, "erin@example.com")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	assert.ErrorIs(t, svc.ResetPassword(ctx, first, "N3wPassword"), ErrInvalidOrExpiredToken)
	assert.NoError(t, svc.ResetPassword(ctx, second, "N3wPassword"))
}

func TestEmailVerificationFlow(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	u, _, _, err := svc.Register(ctx, "frank@example.com", "Sup3rSecret", "Frank")
	require.NoError(t, err)
	assert.False(t, u.EmailVerified)

	token, _, err := svc.RequestEmailVerification(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.VerifyEmail(ctx, token))

	profile, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, profile.EmailVerified)

	// Re-request after verification is an idempotent no-op.
	token2, _, err := svc.RequestEmailVerification(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, token2)

	// Consumed token cannot be replayed.
	assert.ErrorIs(t, svc.VerifyEmail(ctx, token), ErrInvalidOrExpiredToken)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	u, _, _, err := svc.Register(ctx, "grace@example.com", "Sup3rSecret", "Grace")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "wrong", "N3wPassword"), ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID, "Sup3rSecret", "weak"), helpers.ErrWeakPassword)
	require.NoError(t, svc.ChangePassword(ctx, u.ID, "Sup3rSecret", "N3wPassword"))

	_, _, _, err = svc.Login(ctx, "grace@example.com", "N3wPassword")
	assert.NoError(t, err)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	u, _, _, err := svc.Register(ctx, "heidi@example.com", "Sup3rSecret", "Heidi")
	require.NoError(t, err)

	name := "Heidi Renamed"
	got, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Heidi Renamed", got.Name)
	assert.Equal(t, "heidi@example.com", got.Email)

	email := "Heidi2@Example.com"
	got, err = svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "heidi2@example.com", got.Email)
}

func TestDeleteAccountRequiresPassword(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	u, _, _, err := svc.Register(ctx, "ivan@example.com", "Sup3rSecret", "Ivan")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, u.ID, "wrong"), ErrInvalidCredentials)
	require.NoError(t, svc.DeleteAccount(ctx, u.ID, "Sup3rSecret"))

	_, err = svc.GetProfile(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStats(t *testing.T) {
	svc, _, txns := newTestUserService()
	ctx := context.Background()

	u, _, _, err := svc.Register(ctx, "judy@example.com", "Sup3rSecret", "Judy")
	require.NoError(t, err)

	txnSvc := NewTransactionService(txns, testLogger(), nil, "")
	_, err = txnSvc.Create(ctx, u.ID, CreateTransactionInput{Kind: "income", Amount: "1000.00", Category: "Salary"})
	require.NoError(t, err)
	_, err = txnSvc.Create(ctx, u.ID, CreateTransactionInput{Kind: "expense", Amount: "250.50", Category: "Food"})
	require.NoError(t, err)

	st, err := svc.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TotalTransactions)
	require.Len(t, st.MonthlyStats, 1)
	assert.Equal(t, int64(100000), st.MonthlyStats[0].TotalIncomeCents)
	assert.Equal(t, int64(25050), st.MonthlyStats[0].TotalExpenseCents)
}

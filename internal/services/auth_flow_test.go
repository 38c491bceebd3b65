package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/fintrack/domain"
)

const (
	flowEmail    = "ada@example.com"
	flowMobile   = "9876543210"
	flowPassword = "secret123"
)

func registerPending(t *testing.T, s *testStack) *domain.User {
	t.Helper()
	user, err := s.auth.Register(context.Background(), "Ada", flowEmail, flowMobile, flowPassword)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, user.Status)
	return user
}

func registerVerified(t *testing.T, s *testStack) *domain.User {
	t.Helper()
	registerPending(t, s)
	result, err := s.auth.VerifyOTP(context.Background(), flowEmail, s.liveCode(t, flowEmail))
	require.NoError(t, err)
	return result.User
}

func TestAuthFlow_RegisterVerifyLogin(t *testing.T) {
	s := newTestStack(t, false)
	ctx := context.Background()

	user := registerPending(t, s)

	_, err := s.auth.Login(ctx, flowEmail, flowPassword)
	assert.ErrorIs(t, err, domain.ErrAccountNotVerified)

	_, err = s.auth.Login(ctx, flowEmail, "wrong-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	msg, ok := s.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, domain.ChannelEmail, msg.Channel)
	assert.Equal(t, flowEmail, msg.To)

	result, err := s.auth.VerifyOTP(ctx, flowEmail, s.liveCode(t, flowEmail))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	stored, err := s.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified())
	assert.Empty(t, stored.OTPCode)

	_, err = s.auth.VerifyOTP(ctx, flowEmail, "123456")
	assert.ErrorIs(t, err, domain.ErrAlreadyVerified)

	login, err := s.auth.Login(ctx, flowMobile, flowPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, login.User.ID)

	set, err := s.categories.FindByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, set.Income)
}

func TestAuthFlow_MaxAttempts(t *testing.T) {
	s := newTestStack(t, false)
	ctx := context.Background()
	registerPending(t, s)

	code := s.liveCode(t, flowEmail)
	for i := 0; i < 5; i++ {
		_, err := s.auth.VerifyOTP(ctx, flowEmail, wrongCode(code))
		require.ErrorIs(t, err, domain.ErrOTPInvalid, "attempt %d", i+1)
	}

	_, err := s.auth.VerifyOTP(ctx, flowEmail, code)
	assert.ErrorIs(t, err, domain.ErrOTPMaxAttempts)

	// a fresh code lifts the block
	s.clearThrottle()
	require.NoError(t, s.auth.ResendOTP(ctx, flowEmail))
	_, err = s.auth.VerifyOTP(ctx, flowEmail, s.liveCode(t, flowEmail))
	assert.NoError(t, err)
}

func TestAuthFlow_ExpiredCode(t *testing.T) {
	s := newTestStack(t, false)
	registerPending(t, s)
	code := s.liveCode(t, flowEmail)

	s.clock.Advance(10 * time.Minute)

	_, err := s.auth.VerifyOTP(context.Background(), flowEmail, code)
	assert.ErrorIs(t, err, domain.ErrOTPExpired)
}

func TestAuthFlow_ResendReplacesCode(t *testing.T) {
	s := newTestStack(t, false)
	ctx := context.Background()
	registerPending(t, s)
	first := s.liveCode(t, flowEmail)

	err := s.auth.ResendOTP(ctx, flowEmail)
	assert.ErrorIs(t, err, domain.ErrOTPResendLimit)

	second := first
	for second == first {
		s.clearThrottle()
		require.NoError(t, s.auth.ResendOTP(ctx, flowEmail))
		second = s.liveCode(t, flowEmail)
	}

	_, err = s.auth.VerifyOTP(ctx, flowEmail, first)
	assert.ErrorIs(t, err, domain.ErrOTPInvalid)

	_, err = s.auth.VerifyOTP(ctx, flowEmail, second)
	assert.NoError(t, err)
}

func TestAuthFlow_RegisterTwice(t *testing.T) {
	s := newTestStack(t, false)
	ctx := context.Background()
	registerVerified(t, s)

	_, err := s.auth.Register(ctx, "Ada", flowEmail, "1234567890", flowPassword)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	_, err = s.auth.Register(ctx, "Eve", "eve@example.com", flowMobile, flowPassword)
	assert.ErrorIs(t, err, domain.ErrMobileAlreadyInUse)
}

func TestAuthFlow_PasswordReset(t *testing.T) {
	s := newTestStack(t, false)
	ctx := context.Background()
	registerVerified(t, s)
	s.clearThrottle()
	sentBefore := len(s.notifier.Sent())

	require.NoError(t, s.auth.RequestPasswordReset(ctx, "ghost@example.com"))
	require.NoError(t, s.auth.RequestPasswordReset(ctx, "0000000000"))
	assert.Len(t, s.notifier.Sent(), sentBefore, "unknown accounts must not receive anything")

	require.NoError(t, s.auth.RequestPasswordReset(ctx, flowMobile))
	msg, ok := s.notifier.Last()
	require.True(t, ok)
	assert.Equal(t, domain.ChannelSMS, msg.Channel)
	assert.Equal(t, flowMobile, msg.To)

	code := s.liveCode(t, flowEmail)

	err := s.auth.ConfirmPasswordReset(ctx, flowEmail, wrongCode(code), "new-secret1")
	assert.ErrorIs(t, err, domain.ErrOTPInvalid)

	require.NoError(t, s.auth.ConfirmPasswordReset(ctx, flowMobile, code, "new-secret1"))

	_, err = s.auth.Login(ctx, flowEmail, flowPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = s.auth.Login(ctx, flowEmail, "new-secret1")
	assert.NoError(t, err)

	err = s.auth.ConfirmPasswordReset(ctx, flowEmail, code, "another-secret")
	assert.ErrorIs(t, err, domain.ErrOTPNotPending)
}

func TestAuthFlow_ResetIgnoredForPendingAccount(t *testing.T) {
	s := newTestStack(t, false)
	registerPending(t, s)
	s.clearThrottle()
	sentBefore := len(s.notifier.Sent())

	require.NoError(t, s.auth.RequestPasswordReset(context.Background(), flowEmail))

	assert.Len(t, s.notifier.Sent(), sentBefore)
	assert.Contains(t, s.audit.Types(), domain.PasswordResetIgnored)
}

func TestAuthFlow_VerifyCodeCannotResetPassword(t *testing.T) {
	s := newTestStack(t, false)
	ctx := context.Background()
	registerPending(t, s)

	err := s.auth.ConfirmPasswordReset(ctx, flowEmail, s.liveCode(t, flowEmail), "new-secret1")
	assert.ErrorIs(t, err, domain.ErrOTPNotPending)
}

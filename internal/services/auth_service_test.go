package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/fintrack/domain"
	"github.com/you/fintrack/internal/mocks"
)

type authMocks struct {
	users      *mocks.MockUserRepository
	categories *mocks.MockCategoryRepository
	otp        *mocks.MockOTPService
	audit      *mocks.MockAuditLogger
}

func newAuthUnderTest() (domain.AuthService, *authMocks) {
	m := &authMocks{
		users:      mocks.NewMockUserRepository(),
		categories: mocks.NewMockCategoryRepository(),
		otp:        mocks.NewMockOTPService(),
		audit:      mocks.NewMockAuditLogger(),
	}
	svc := NewAuthService(m.users, m.categories, mocks.NewMockPasswordService(), mocks.NewMockTokenService(), m.otp, m.audit)
	return svc, m
}

func verifiedUser(id uint, email, mobile string) *domain.User {
	return &domain.User{
		ID:           id,
		Name:         "Existing",
		Email:        email,
		Mobile:       mobile,
		PasswordHash: "hashed:secret123",
		Role:         domain.RoleUser,
		Status:       domain.StatusVerified,
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		mobile  string
		setup   func(m *authMocks)
		wantErr error
		wantMsg string
	}{
		{
			name:    "invalid email",
			email:   "not-an-email",
			mobile:  "9876543210",
			wantErr: domain.ErrValidation,
		},
		{
			name:    "short mobile",
			email:   "ada@example.com",
			mobile:  "12345",
			wantErr: domain.ErrValidation,
		},
		{
			name:   "verified email",
			email:  "ada@example.com",
			mobile: "9876543210",
			setup: func(m *authMocks) {
				m.users.FindByEmailFunc = func(_ context.Context, email string) (*domain.User, error) {
					return verifiedUser(4, email, "1111111111"), nil
				}
			},
			wantErr: domain.ErrUserAlreadyExists,
		},
		{
			name:   "mobile held by a verified account",
			email:  "ada@example.com",
			mobile: "9876543210",
			setup: func(m *authMocks) {
				m.users.FindByMobileFunc = func(_ context.Context, mobile string) (*domain.User, error) {
					return verifiedUser(9, "other@example.com", mobile), nil
				}
			},
			wantErr: domain.ErrMobileAlreadyInUse,
		},
		{
			name:   "pending account inside the resend window",
			email:  "ada@example.com",
			mobile: "9876543210",
			setup: func(m *authMocks) {
				m.users.FindByEmailFunc = func(_ context.Context, email string) (*domain.User, error) {
					return &domain.User{ID: 4, Email: email, Status: domain.StatusPending}, nil
				}
				m.otp.CanResendFunc = func(context.Context, string) (bool, int64, error) {
					return false, 20, nil
				}
			},
			wantErr: domain.ErrOTPResendLimit,
		},
		{
			name:   "otp delivery fails",
			email:  "ada@example.com",
			mobile: "9876543210",
			setup: func(m *authMocks) {
				m.otp.IssueFunc = func(context.Context, *domain.User, domain.OTPPurpose, domain.Channel) (*domain.OTPIssue, error) {
					return nil, errors.New("failed to send OTP")
				}
			},
			wantMsg: "failed to send OTP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthUnderTest()
			if tt.setup != nil {
				tt.setup(m)
			}

			user, err := svc.Register(context.Background(), "Ada", tt.email, tt.mobile, "secret123")

			require.Error(t, err)
			assert.Nil(t, user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.EqualError(t, err, tt.wantMsg)
			}
		})
	}
}

func TestAuthService_RegisterCreatesPendingUser(t *testing.T) {
	svc, m := newAuthUnderTest()
	var created *domain.User
	m.users.CreateFunc = func(_ context.Context, u *domain.User) error {
		u.ID = 12
		created = u
		return nil
	}
	var seeded *domain.CategorySet
	m.categories.CreateFunc = func(_ context.Context, set *domain.CategorySet) error {
		seeded = set
		return nil
	}

	user, err := svc.Register(context.Background(), "  Ada ", " Ada@Example.COM ", "9876543210", "secret123")
	require.NoError(t, err)

	assert.Same(t, created, user)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, domain.StatusPending, user.Status)
	assert.Equal(t, "hashed:secret123", user.PasswordHash)

	require.NotNil(t, seeded)
	assert.Equal(t, uint(12), seeded.UserID)
	assert.NotEmpty(t, seeded.Expense)

	require.Len(t, m.otp.Issued, 1)
	assert.Equal(t, domain.OTPPurposeVerify, m.otp.Issued[0].Purpose)
	assert.Contains(t, m.audit.Types(), domain.UserRegistrationEvent)
}

func TestAuthService_RegisterRefreshesPendingUser(t *testing.T) {
	svc, m := newAuthUnderTest()
	pending := &domain.User{ID: 5, Email: "ada@example.com", Mobile: "1111111111", Status: domain.StatusPending, PasswordHash: "hashed:old-secret"}
	m.users.FindByEmailFunc = func(context.Context, string) (*domain.User, error) { return pending, nil }
	m.users.CreateFunc = func(context.Context, *domain.User) error {
		t.Fatal("a pending account must be updated, not recreated")
		return nil
	}
	updated := false
	m.users.UpdateFunc = func(_ context.Context, u *domain.User) error {
		updated = true
		return nil
	}

	user, err := svc.Register(context.Background(), "Ada L", "ada@example.com", "9876543210", "secret123")
	require.NoError(t, err)

	assert.True(t, updated)
	assert.Equal(t, uint(5), user.ID)
	assert.Equal(t, "9876543210", user.Mobile)
	assert.Equal(t, "hashed:secret123", user.PasswordHash)
	assert.Len(t, m.otp.Issued, 1)
}

func TestAuthService_Login(t *testing.T) {
	pending := &domain.User{ID: 2, Email: "pending@example.com", Mobile: "2222222222", PasswordHash: "hashed:secret123", Role: domain.RoleUser, Status: domain.StatusPending}
	verified := verifiedUser(3, "ada@example.com", "9876543210")

	tests := []struct {
		name       string
		identifier string
		password   string
		wantErr    error
		wantToken  string
	}{
		{"missing fields", "", "", domain.ErrValidation, ""},
		{"unknown email", "ghost@example.com", "secret123", domain.ErrInvalidCredentials, ""},
		{"unknown mobile", "5555555555", "secret123", domain.ErrInvalidCredentials, ""},
		{"malformed identifier", "12ab", "secret123", domain.ErrInvalidCredentials, ""},
		{"wrong password", "ada@example.com", "wrong-pass", domain.ErrInvalidCredentials, ""},
		{"pending with wrong password", "pending@example.com", "wrong-pass", domain.ErrInvalidCredentials, ""},
		{"pending with correct password", "pending@example.com", "secret123", domain.ErrAccountNotVerified, ""},
		{"verified by email", " ADA@example.com ", "secret123", nil, "token:3:user"},
		{"verified by mobile", "9876543210", "secret123", nil, "token:3:user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthUnderTest()
			byEmail := map[string]*domain.User{pending.Email: pending, verified.Email: verified}
			byMobile := map[string]*domain.User{pending.Mobile: pending, verified.Mobile: verified}
			m.users.FindByEmailFunc = func(_ context.Context, email string) (*domain.User, error) {
				if u, ok := byEmail[email]; ok {
					return u, nil
				}
				return nil, domain.ErrUserNotFound
			}
			m.users.FindByMobileFunc = func(_ context.Context, mobile string) (*domain.User, error) {
				if u, ok := byMobile[mobile]; ok {
					return u, nil
				}
				return nil, domain.ErrUserNotFound
			}

			result, err := svc.Login(context.Background(), tt.identifier, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, result.Token)
			assert.Equal(t, int64(3600), result.ExpiresIn)
			assert.Equal(t, verified.ID, result.User.ID)
		})
	}
}

func TestAuthService_VerifyOTP(t *testing.T) {
	tests := []struct {
		name    string
		user    *domain.User
		code    string
		wantErr error
	}{
		{"unknown email", nil, "123456", domain.ErrUserNotFound},
		{"already verified", verifiedUser(1, "ada@example.com", "9876543210"), "123456", domain.ErrAlreadyVerified},
		{"wrong code", &domain.User{ID: 1, Email: "ada@example.com", Status: domain.StatusPending, Role: domain.RoleUser}, "000000", domain.ErrOTPInvalid},
		{"correct code", &domain.User{ID: 1, Email: "ada@example.com", Status: domain.StatusPending, Role: domain.RoleUser}, "123456", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthUnderTest()
			m.users.FindByEmailFunc = func(context.Context, string) (*domain.User, error) {
				if tt.user == nil {
					return nil, domain.ErrUserNotFound
				}
				return tt.user, nil
			}

			result, err := svc.VerifyOTP(context.Background(), "ada@example.com", tt.code)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "token:1:user", result.Token)
			assert.Contains(t, m.audit.Types(), domain.OTPVerifiedEvent)
		})
	}
}

func TestAuthService_ResendOTP(t *testing.T) {
	pending := &domain.User{ID: 1, Email: "ada@example.com", Status: domain.StatusPending}

	t.Run("throttled", func(t *testing.T) {
		svc, m := newAuthUnderTest()
		m.users.FindByEmailFunc = func(context.Context, string) (*domain.User, error) { return pending, nil }
		m.otp.CanResendFunc = func(context.Context, string) (bool, int64, error) { return false, 12, nil }

		err := svc.ResendOTP(context.Background(), "ada@example.com")
		assert.ErrorIs(t, err, domain.ErrOTPResendLimit)
		assert.Contains(t, err.Error(), "12 seconds")
		assert.Empty(t, m.otp.Issued)
	})

	t.Run("verified account", func(t *testing.T) {
		svc, m := newAuthUnderTest()
		m.users.FindByEmailFunc = func(context.Context, string) (*domain.User, error) {
			return verifiedUser(1, "ada@example.com", "9876543210"), nil
		}
		assert.ErrorIs(t, svc.ResendOTP(context.Background(), "ada@example.com"), domain.ErrAlreadyVerified)
	})

	t.Run("issues a fresh code", func(t *testing.T) {
		svc, m := newAuthUnderTest()
		m.users.FindByEmailFunc = func(context.Context, string) (*domain.User, error) { return pending, nil }

		require.NoError(t, svc.ResendOTP(context.Background(), "ada@example.com"))
		assert.Len(t, m.otp.Issued, 1)
	})

	t.Run("unknown email looks like success", func(t *testing.T) {
		svc, m := newAuthUnderTest()
		m.users.FindByEmailFunc = func(context.Context, string) (*domain.User, error) { return nil, domain.ErrUserNotFound }

		require.NoError(t, svc.ResendOTP(context.Background(), "ghost@example.com"))
		assert.Empty(t, m.otp.Issued)
	})

	t.Run("store failure is reported", func(t *testing.T) {
		svc, m := newAuthUnderTest()
		m.users.FindByEmailFunc = func(context.Context, string) (*domain.User, error) { return nil, errors.New("db down") }

		assert.Error(t, svc.ResendOTP(context.Background(), "ada@example.com"))
	})
}

func TestAuthService_RequestPasswordReset(t *testing.T) {
	tests := []struct {
		name        string
		identifier  string
		user        *domain.User
		throttled   bool
		wantIssued  bool
		wantChannel domain.Channel
	}{
		{name: "unknown email", identifier: "ghost@example.com"},
		{name: "garbage identifier", identifier: "???"},
		{name: "pending account", identifier: "ada@example.com", user: &domain.User{ID: 1, Email: "ada@example.com", Status: domain.StatusPending}},
		{name: "throttled", identifier: "ada@example.com", user: verifiedUser(1, "ada@example.com", "9876543210"), throttled: true},
		{name: "by email", identifier: "ada@example.com", user: verifiedUser(1, "ada@example.com", "9876543210"), wantIssued: true, wantChannel: domain.ChannelEmail},
		{name: "by mobile", identifier: "9876543210", user: verifiedUser(1, "ada@example.com", "9876543210"), wantIssued: true, wantChannel: domain.ChannelSMS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthUnderTest()
			find := func() (*domain.User, error) {
				if tt.user == nil {
					return nil, domain.ErrUserNotFound
				}
				return tt.user, nil
			}
			m.users.FindByEmailFunc = func(context.Context, string) (*domain.User, error) { return find() }
			m.users.FindByMobileFunc = func(context.Context, string) (*domain.User, error) { return find() }
			m.otp.CanResendFunc = func(context.Context, string) (bool, int64, error) { return !tt.throttled, 10, nil }
			var channel domain.Channel
			m.otp.IssueFunc = func(_ context.Context, u *domain.User, purpose domain.OTPPurpose, ch domain.Channel) (*domain.OTPIssue, error) {
				assert.Equal(t, domain.OTPPurposeReset, purpose)
				channel = ch
				return &domain.OTPIssue{UserID: u.ID, Purpose: purpose, Code: "123456"}, nil
			}

			err := svc.RequestPasswordReset(context.Background(), tt.identifier)

			require.NoError(t, err)
			assert.Equal(t, tt.wantChannel, channel)
			if !tt.wantIssued {
				assert.Contains(t, m.audit.Types(), domain.PasswordResetIgnored)
			}
		})
	}
}

func TestAuthService_ConfirmPasswordReset(t *testing.T) {
	t.Run("unknown identifier looks like a bad code", func(t *testing.T) {
		svc, _ := newAuthUnderTest()
		err := svc.ConfirmPasswordReset(context.Background(), "ghost@example.com", "123456", "new-secret1")
		assert.ErrorIs(t, err, domain.ErrOTPInvalid)
	})

	t.Run("short password", func(t *testing.T) {
		svc, _ := newAuthUnderTest()
		err := svc.ConfirmPasswordReset(context.Background(), "ada@example.com", "123456", "short")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("passes the new hash to the consume", func(t *testing.T) {
		svc, m := newAuthUnderTest()
		m.users.FindByEmailFunc = func(context.Context, string) (*domain.User, error) {
			return verifiedUser(1, "ada@example.com", "9876543210"), nil
		}
		var gotHash string
		m.otp.CheckFunc = func(_ context.Context, _ *domain.User, purpose domain.OTPPurpose, code, hash string) error {
			assert.Equal(t, domain.OTPPurposeReset, purpose)
			gotHash = hash
			return nil
		}

		require.NoError(t, svc.ConfirmPasswordReset(context.Background(), "ada@example.com", "123456", "new-secret1"))
		assert.Equal(t, "hashed:new-secret1", gotHash)
		assert.Contains(t, m.audit.Types(), domain.PasswordResetCompleted)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	tests := []struct {
		name    string
		mobile  string
		holder  *domain.User
		wantErr error
	}{
		{"invalid mobile", "123", nil, domain.ErrValidation},
		{"mobile taken", "2222222222", verifiedUser(8, "other@example.com", "2222222222"), domain.ErrMobileAlreadyInUse},
		{"mobile held by a pending account", "2222222222", &domain.User{ID: 8, Status: domain.StatusPending}, nil},
		{"same mobile", "9876543210", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAuthUnderTest()
			m.users.FindByIDFunc = func(context.Context, uint) (*domain.User, error) {
				return verifiedUser(1, "ada@example.com", "9876543210"), nil
			}
			m.users.FindByMobileFunc = func(context.Context, string) (*domain.User, error) {
				if tt.holder == nil {
					return nil, domain.ErrUserNotFound
				}
				return tt.holder, nil
			}

			user, err := svc.UpdateProfile(context.Background(), 1, "Ada B", tt.mobile)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ada B", user.Name)
			assert.Equal(t, tt.mobile, user.Mobile)
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, m := newAuthUnderTest()
	user := verifiedUser(1, "ada@example.com", "9876543210")
	m.users.FindByIDFunc = func(context.Context, uint) (*domain.User, error) { return user, nil }

	assert.ErrorIs(t, svc.ChangePassword(context.Background(), 1, "wrong-pass", "new-secret1"), domain.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ChangePassword(context.Background(), 1, "secret123", "short"), domain.ErrValidation)

	require.NoError(t, svc.ChangePassword(context.Background(), 1, "secret123", "new-secret1"))
	assert.Equal(t, "hashed:new-secret1", user.PasswordHash)
	assert.Contains(t, m.audit.Types(), domain.PasswordChangedEvent)
}

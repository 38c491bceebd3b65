package mocks

import (
	"context"

	"github.com/you/fintrack/domain"
)

// MockAuthService implements domain.AuthService interface for testing.
// Unset funcs return zero values.
type MockAuthService struct {
	RegisterFunc             func(ctx context.Context, name, email, mobile, password string) (*domain.User, error)
	VerifyOTPFunc            func(ctx context.Context, email, code string) (*domain.AuthResult, error)
	ResendOTPFunc            func(ctx context.Context, email string) error
	LoginFunc                func(ctx context.Context, identifier, password string) (*domain.AuthResult, error)
	RequestPasswordResetFunc func(ctx context.Context, identifier string) error
	ConfirmPasswordResetFunc func(ctx context.Context, identifier, code, newPassword string) error
	GetUserProfileFunc       func(ctx context.Context, userID uint) (*domain.User, error)
	UpdateProfileFunc        func(ctx context.Context, userID uint, name, mobile string) (*domain.User, error)
	ChangePasswordFunc       func(ctx context.Context, userID uint, oldPassword, newPassword string) error
}

// NewMockAuthService creates a new MockAuthService
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Register(ctx context.Context, name, email, mobile, password string) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, email, mobile, password)
	}
	return &domain.User{ID: 1, Name: name, Email: email, Mobile: mobile, Role: domain.RoleUser, Status: domain.StatusPending}, nil
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, email, code string) (*domain.AuthResult, error) {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, email, code)
	}
	return nil, domain.ErrOTPInvalid
}

func (m *MockAuthService) ResendOTP(ctx context.Context, email string) error {
	if m.ResendOTPFunc != nil {
		return m.ResendOTPFunc(ctx, email)
	}
	return nil
}

func (m *MockAuthService) Login(ctx context.Context, identifier, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, password)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, identifier string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, identifier)
	}
	return nil
}

func (m *MockAuthService) ConfirmPasswordReset(ctx context.Context, identifier, code, newPassword string) error {
	if m.ConfirmPasswordResetFunc != nil {
		return m.ConfirmPasswordResetFunc(ctx, identifier, code, newPassword)
	}
	return nil
}

func (m *MockAuthService) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID uint, name, mobile string) (*domain.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, name, mobile)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, oldPassword, newPassword)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)

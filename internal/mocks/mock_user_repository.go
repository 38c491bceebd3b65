package mocks

import (
	"context"
	"time"

	"github.com/you/fintrack/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc           func(ctx context.Context, user *domain.User) error
	FindByEmailFunc      func(ctx context.Context, email string) (*domain.User, error)
	FindByMobileFunc     func(ctx context.Context, mobile string) (*domain.User, error)
	FindByIDFunc         func(ctx context.Context, id uint) (*domain.User, error)
	UpdateFunc           func(ctx context.Context, user *domain.User) error
	DeleteFunc           func(ctx context.Context, id uint) error
	ListByManagerFunc    func(ctx context.Context, managerID uint) ([]*domain.User, error)
	ListAllFunc          func(ctx context.Context) ([]*domain.User, error)
	SetOTPFunc           func(ctx context.Context, userID uint, purpose domain.OTPPurpose, code string, expiresAt time.Time) error
	RecordOTPFailureFunc func(ctx context.Context, userID uint, code string) (int, error)
	InvalidateOTPFunc    func(ctx context.Context, userID uint) error
	ConsumeOTPFunc       func(ctx context.Context, userID uint, c domain.OTPConsumption) (bool, error)
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create implements domain.UserRepository. By default it assigns ID 1.
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	if user.ID == 0 {
		user.ID = 1
	}
	return nil
}

// FindByEmail implements domain.UserRepository
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByMobile implements domain.UserRepository
func (m *MockUserRepository) FindByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	if m.FindByMobileFunc != nil {
		return m.FindByMobileFunc(ctx, mobile)
	}
	return nil, domain.ErrUserNotFound
}

// FindByID implements domain.UserRepository
func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

// Update implements domain.UserRepository
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

// Delete implements domain.UserRepository
func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// ListByManager implements domain.UserRepository
func (m *MockUserRepository) ListByManager(ctx context.Context, managerID uint) ([]*domain.User, error) {
	if m.ListByManagerFunc != nil {
		return m.ListByManagerFunc(ctx, managerID)
	}
	return []*domain.User{}, nil
}

// ListAll implements domain.UserRepository
func (m *MockUserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []*domain.User{}, nil
}

// SetOTP implements domain.UserRepository
func (m *MockUserRepository) SetOTP(ctx context.Context, userID uint, purpose domain.OTPPurpose, code string, expiresAt time.Time) error {
	if m.SetOTPFunc != nil {
		return m.SetOTPFunc(ctx, userID, purpose, code, expiresAt)
	}
	return nil
}

// RecordOTPFailure implements domain.UserRepository
func (m *MockUserRepository) RecordOTPFailure(ctx context.Context, userID uint, code string) (int, error) {
	if m.RecordOTPFailureFunc != nil {
		return m.RecordOTPFailureFunc(ctx, userID, code)
	}
	return 1, nil
}

// InvalidateOTP implements domain.UserRepository
func (m *MockUserRepository) InvalidateOTP(ctx context.Context, userID uint) error {
	if m.InvalidateOTPFunc != nil {
		return m.InvalidateOTPFunc(ctx, userID)
	}
	return nil
}

// ConsumeOTP implements domain.UserRepository. By default the consume wins.
func (m *MockUserRepository) ConsumeOTP(ctx context.Context, userID uint, c domain.OTPConsumption) (bool, error) {
	if m.ConsumeOTPFunc != nil {
		return m.ConsumeOTPFunc(ctx, userID, c)
	}
	return true, nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)

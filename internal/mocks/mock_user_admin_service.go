package mocks

import (
	"context"

	"github.com/you/fintrack/domain"
)

// MockUserAdminService implements domain.UserAdminService interface for testing
type MockUserAdminService struct {
	CreateManagedUserFunc func(ctx context.Context, actor domain.Principal, in domain.ManagedUserInput) (*domain.User, error)
	ListUsersFunc         func(ctx context.Context, actor domain.Principal) ([]*domain.User, error)
	SetRoleFunc           func(ctx context.Context, actor domain.Principal, userID uint, role string) (*domain.User, error)
	DeleteUserFunc        func(ctx context.Context, actor domain.Principal, userID uint) error
}

// NewMockUserAdminService creates a new MockUserAdminService
func NewMockUserAdminService() *MockUserAdminService {
	return &MockUserAdminService{}
}

func (m *MockUserAdminService) CreateManagedUser(ctx context.Context, actor domain.Principal, in domain.ManagedUserInput) (*domain.User, error) {
	if m.CreateManagedUserFunc != nil {
		return m.CreateManagedUserFunc(ctx, actor, in)
	}
	return nil, domain.ErrForbidden
}

func (m *MockUserAdminService) ListUsers(ctx context.Context, actor domain.Principal) ([]*domain.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, actor)
	}
	return nil, nil
}

func (m *MockUserAdminService) SetRole(ctx context.Context, actor domain.Principal, userID uint, role string) (*domain.User, error) {
	if m.SetRoleFunc != nil {
		return m.SetRoleFunc(ctx, actor, userID, role)
	}
	return nil, domain.ErrForbidden
}

func (m *MockUserAdminService) DeleteUser(ctx context.Context, actor domain.Principal, userID uint) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, actor, userID)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserAdminService = (*MockUserAdminService)(nil)

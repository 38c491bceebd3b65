package mocks

import (
	"context"

	"github.com/you/fintrack/domain"
)

// MockPermissionService implements domain.PermissionService interface for testing
type MockPermissionService struct {
	GetFunc     func(ctx context.Context, actor domain.Principal, userID uint) (domain.Permissions, error)
	SetFunc     func(ctx context.Context, actor domain.Principal, userID uint, updates map[string]bool) (domain.Permissions, error)
	RequireFunc func(ctx context.Context, actor domain.Principal, capability string) error
	TeamFunc    func(ctx context.Context, actor domain.Principal) ([]*domain.User, error)
}

// NewMockPermissionService creates a mock that grants everything
func NewMockPermissionService() *MockPermissionService {
	return &MockPermissionService{}
}

func (m *MockPermissionService) Get(ctx context.Context, actor domain.Principal, userID uint) (domain.Permissions, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, actor, userID)
	}
	return domain.Permissions{}, nil
}

func (m *MockPermissionService) Set(ctx context.Context, actor domain.Principal, userID uint, updates map[string]bool) (domain.Permissions, error) {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, actor, userID, updates)
	}
	merged, err := domain.MergePermissions(nil, updates)
	if err != nil {
		return domain.Permissions{}, err
	}
	return domain.ResolvePermissions(merged), nil
}

func (m *MockPermissionService) Require(ctx context.Context, actor domain.Principal, capability string) error {
	if m.RequireFunc != nil {
		return m.RequireFunc(ctx, actor, capability)
	}
	return nil
}

func (m *MockPermissionService) Team(ctx context.Context, actor domain.Principal) ([]*domain.User, error) {
	if m.TeamFunc != nil {
		return m.TeamFunc(ctx, actor)
	}
	return nil, nil
}

// Compile-time interface compliance verification
var _ domain.PermissionService = (*MockPermissionService)(nil)

package mocks

import (
	"context"

	"github.com/you/fintrack/domain"
)

// MockCategoryRepository implements domain.CategoryRepository interface for testing
type MockCategoryRepository struct {
	CreateFunc     func(ctx context.Context, set *domain.CategorySet) error
	FindByUserFunc func(ctx context.Context, userID uint) (*domain.CategorySet, error)
	SaveFunc       func(ctx context.Context, set *domain.CategorySet) error
}

// NewMockCategoryRepository creates a new MockCategoryRepository with default behaviors
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{}
}

// Create implements domain.CategoryRepository
func (m *MockCategoryRepository) Create(ctx context.Context, set *domain.CategorySet) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, set)
	}
	return nil
}

// FindByUser implements domain.CategoryRepository. Defaults to the seed lists.
func (m *MockCategoryRepository) FindByUser(ctx context.Context, userID uint) (*domain.CategorySet, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID)
	}
	return domain.DefaultCategories(userID), nil
}

// Save implements domain.CategoryRepository
func (m *MockCategoryRepository) Save(ctx context.Context, set *domain.CategorySet) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, set)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.CategoryRepository = (*MockCategoryRepository)(nil)

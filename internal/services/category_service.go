package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/you/fintrack/domain"
)

// CategoryServiceImpl implements domain.CategoryService
type CategoryServiceImpl struct {
	repo domain.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(repo domain.CategoryRepository) domain.CategoryService {
	return &CategoryServiceImpl{repo: repo}
}

// loadCategories returns the user's lists, seeding the defaults for users
// created before seeding succeeded
func loadCategories(ctx context.Context, repo domain.CategoryRepository, userID uint) (*domain.CategorySet, error) {
	set, err := repo.FindByUser(ctx, userID)
	if err == nil {
		return set, nil
	}
	if !errors.Is(err, domain.ErrResourceNotFound) {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	set = domain.DefaultCategories(userID)
	if err := repo.Create(ctx, set); err != nil {
		if errors.Is(err, domain.ErrCategoryExists) {
			return repo.FindByUser(ctx, userID)
		}
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}
	return set, nil
}

func validKind(kind domain.TxKind) error {
	if !kind.Valid() {
		return domain.NewValidationError("type", "must be expense or income")
	}
	return nil
}

// List implements domain.CategoryService
func (s *CategoryServiceImpl) List(ctx context.Context, userID uint, kind domain.TxKind) ([]string, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	set, err := loadCategories(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return set.Names(kind), nil
}

// Add implements domain.CategoryService. Names are unique per list
// ignoring case.
func (s *CategoryServiceImpl) Add(ctx context.Context, userID uint, kind domain.TxKind, name string) ([]string, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if len(name) > domain.MaxCategoryLength {
		return nil, domain.NewValidationError("name", "must be at most %d characters", domain.MaxCategoryLength)
	}

	set, err := loadCategories(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	if domain.ContainsCategory(set.Names(kind), name) {
		return nil, domain.ErrCategoryExists
	}

	if kind == domain.KindIncome {
		set.Income = append(set.Income, name)
	} else {
		set.Expense = append(set.Expense, name)
	}
	if err := s.repo.Save(ctx, set); err != nil {
		return nil, fmt.Errorf("failed to save categories: %w", err)
	}
	return set.Names(kind), nil
}

// Remove implements domain.CategoryService. Existing transactions keep
// their category string.
func (s *CategoryServiceImpl) Remove(ctx context.Context, userID uint, kind domain.TxKind, name string) ([]string, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	set, err := loadCategories(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}

	current := set.Names(kind)
	kept := make([]string, 0, len(current))
	for _, c := range current {
		if !strings.EqualFold(c, name) {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(current) {
		return nil, domain.ErrCategoryNotFound
	}

	if kind == domain.KindIncome {
		set.Income = kept
	} else {
		set.Expense = kept
	}
	if err := s.repo.Save(ctx, set); err != nil {
		return nil, fmt.Errorf("failed to save categories: %w", err)
	}
	return kept, nil
}

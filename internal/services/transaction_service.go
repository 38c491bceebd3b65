package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/you/fintrack/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TransactionServiceImpl implements domain.TransactionService for one kind
type TransactionServiceImpl struct {
	repo             domain.TransactionRepository
	categoryRepo     domain.CategoryRepository
	permissionSvc    domain.PermissionService
	guard            ownerGuard
	strictCategories bool
}

// NewTransactionService creates the CRUD service for repo's kind. With
// strictCategories a transaction must name a category from the owner's list.
func NewTransactionService(
	repo domain.TransactionRepository,
	userRepo domain.UserRepository,
	categoryRepo domain.CategoryRepository,
	permissionSvc domain.PermissionService,
	strictCategories bool,
) domain.TransactionService {
	return &TransactionServiceImpl{
		repo:             repo,
		categoryRepo:     categoryRepo,
		permissionSvc:    permissionSvc,
		guard:            ownerGuard{userRepo: userRepo},
		strictCategories: strictCategories,
	}
}

// Kind implements domain.TransactionService
func (s *TransactionServiceImpl) Kind() domain.TxKind {
	return s.repo.Kind()
}

// List implements domain.TransactionService
func (s *TransactionServiceImpl) List(ctx context.Context, actor domain.Principal, ownerID uint, f domain.TransactionFilter) (*domain.TransactionPage, error) {
	ownerID = resolveOwner(actor, ownerID)
	if err := s.guard.authorize(ctx, actor, ownerID); err != nil {
		return nil, err
	}

	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, domain.NewValidationError("from", "must not be after to")
	}
	if f.Method != "" && !f.Method.Valid() {
		return nil, domain.NewValidationError("method", "must be Bank or Cash")
	}
	f.Category = strings.TrimSpace(f.Category)
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PageSize <= 0:
		f.PageSize = defaultPageSize
	case f.PageSize > maxPageSize:
		f.PageSize = maxPageSize
	}

	items, total, err := s.repo.List(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", s.Kind(), err)
	}
	return &domain.TransactionPage{
		Items:    items,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}, nil
}

// Get implements domain.TransactionService
func (s *TransactionServiceImpl) Get(ctx context.Context, actor domain.Principal, id uint) (*domain.Transaction, error) {
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, tx.UserID); err != nil {
		return nil, err
	}
	return tx, nil
}

// Create implements domain.TransactionService. Records always belong to
// the actor.
func (s *TransactionServiceImpl) Create(ctx context.Context, actor domain.Principal, in domain.TransactionInput) (*domain.Transaction, error) {
	if err := s.permissionSvc.Require(ctx, actor, domain.PermCanAdd); err != nil {
		return nil, err
	}

	tx := &domain.Transaction{Kind: s.Kind(), UserID: actor.UserID}
	if err := s.apply(ctx, tx, in); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.Kind(), err)
	}
	return tx, nil
}

// Update implements domain.TransactionService
func (s *TransactionServiceImpl) Update(ctx context.Context, actor domain.Principal, id uint, in domain.TransactionInput) (*domain.Transaction, error) {
	tx, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.permissionSvc.Require(ctx, actor, domain.PermCanEdit); err != nil {
		return nil, err
	}

	if err := s.apply(ctx, tx, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Delete implements domain.TransactionService
func (s *TransactionServiceImpl) Delete(ctx context.Context, actor domain.Principal, id uint) error {
	tx, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.permissionSvc.Require(ctx, actor, domain.PermCanDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, tx.ID)
}

// apply validates in and copies it onto tx
func (s *TransactionServiceImpl) apply(ctx context.Context, tx *domain.Transaction, in domain.TransactionInput) error {
	in.Category = strings.TrimSpace(in.Category)
	in.Note = strings.TrimSpace(in.Note)

	date, err := domain.ValidateTransactionInput(in)
	if err != nil {
		return err
	}

	if s.strictCategories {
		set, err := loadCategories(ctx, s.categoryRepo, tx.UserID)
		if err != nil {
			return err
		}
		if !domain.ContainsCategory(set.Names(s.Kind()), in.Category) {
			return domain.NewValidationError("category", "%q is not one of your %s categories", in.Category, s.Kind())
		}
	}

	tx.Amount = in.Amount
	tx.Category = in.Category
	tx.Note = in.Note
	tx.Date = date
	tx.Method = in.Method
	return nil
}

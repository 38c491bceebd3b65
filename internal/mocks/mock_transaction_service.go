package mocks

import (
	"context"

	"github.com/you/fintrack/domain"
)

// MockTransactionService implements domain.TransactionService interface for testing
type MockTransactionService struct {
	KindValue  domain.TxKind
	ListFunc   func(ctx context.Context, actor domain.Principal, ownerID uint, f domain.TransactionFilter) (*domain.TransactionPage, error)
	GetFunc    func(ctx context.Context, actor domain.Principal, id uint) (*domain.Transaction, error)
	CreateFunc func(ctx context.Context, actor domain.Principal, in domain.TransactionInput) (*domain.Transaction, error)
	UpdateFunc func(ctx context.Context, actor domain.Principal, id uint, in domain.TransactionInput) (*domain.Transaction, error)
	DeleteFunc func(ctx context.Context, actor domain.Principal, id uint) error
}

// NewMockTransactionService creates a mock for the given kind
func NewMockTransactionService(kind domain.TxKind) *MockTransactionService {
	return &MockTransactionService{KindValue: kind}
}

func (m *MockTransactionService) Kind() domain.TxKind { return m.KindValue }

func (m *MockTransactionService) List(ctx context.Context, actor domain.Principal, ownerID uint, f domain.TransactionFilter) (*domain.TransactionPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, actor, ownerID, f)
	}
	return &domain.TransactionPage{Page: 1, PageSize: 20}, nil
}

func (m *MockTransactionService) Get(ctx context.Context, actor domain.Principal, id uint) (*domain.Transaction, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, actor, id)
	}
	return nil, domain.ErrResourceNotFound
}

func (m *MockTransactionService) Create(ctx context.Context, actor domain.Principal, in domain.TransactionInput) (*domain.Transaction, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actor, in)
	}
	date, err := domain.ValidateTransactionInput(in)
	if err != nil {
		return nil, err
	}
	return &domain.Transaction{
		ID:       1,
		Kind:     m.KindValue,
		UserID:   actor.UserID,
		Amount:   in.Amount,
		Category: in.Category,
		Note:     in.Note,
		Date:     date,
		Method:   in.Method,
	}, nil
}

func (m *MockTransactionService) Update(ctx context.Context, actor domain.Principal, id uint, in domain.TransactionInput) (*domain.Transaction, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, id, in)
	}
	return nil, domain.ErrResourceNotFound
}

func (m *MockTransactionService) Delete(ctx context.Context, actor domain.Principal, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actor, id)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.TransactionService = (*MockTransactionService)(nil)

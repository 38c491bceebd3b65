package mocks

import (
	"context"
	"io"
	"time"

	"github.com/you/fintrack/domain"
)

// MockReportService implements domain.ReportService interface for testing
type MockReportService struct {
	SummaryFunc func(ctx context.Context, actor domain.Principal, ownerID uint, from, to time.Time) (*domain.Summary, error)
}

func (m *MockReportService) Summary(ctx context.Context, actor domain.Principal, ownerID uint, from, to time.Time) (*domain.Summary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, actor, ownerID, from, to)
	}
	return &domain.Summary{From: from.Format(domain.DateLayout), To: to.Format(domain.DateLayout)}, nil
}

// MockExportService implements domain.ExportService interface for testing.
// By default it writes Body.
type MockExportService struct {
	ExportFunc func(ctx context.Context, actor domain.Principal, ownerID uint, kind domain.TxKind, format string, w io.Writer) error
	Body       string
}

func (m *MockExportService) Export(ctx context.Context, actor domain.Principal, ownerID uint, kind domain.TxKind, format string, w io.Writer) error {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, actor, ownerID, kind, format, w)
	}
	_, err := io.WriteString(w, m.Body)
	return err
}

// MockCategoryService implements domain.CategoryService interface for testing
type MockCategoryService struct {
	ListFunc   func(ctx context.Context, userID uint, kind domain.TxKind) ([]string, error)
	AddFunc    func(ctx context.Context, userID uint, kind domain.TxKind, name string) ([]string, error)
	RemoveFunc func(ctx context.Context, userID uint, kind domain.TxKind, name string) ([]string, error)
}

func (m *MockCategoryService) List(ctx context.Context, userID uint, kind domain.TxKind) ([]string, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, kind)
	}
	return domain.DefaultCategories(userID).Names(kind), nil
}

func (m *MockCategoryService) Add(ctx context.Context, userID uint, kind domain.TxKind, name string) ([]string, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, userID, kind, name)
	}
	return append(domain.DefaultCategories(userID).Names(kind), name), nil
}

func (m *MockCategoryService) Remove(ctx context.Context, userID uint, kind domain.TxKind, name string) ([]string, error) {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, userID, kind, name)
	}
	return domain.DefaultCategories(userID).Names(kind), nil
}

// Compile-time interface compliance verification
var (
	_ domain.ReportService   = (*MockReportService)(nil)
	_ domain.ExportService   = (*MockExportService)(nil)
	_ domain.CategoryService = (*MockCategoryService)(nil)
)

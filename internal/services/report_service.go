package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/you/fintrack/domain"
)

// ReportServiceImpl implements domain.ReportService
type ReportServiceImpl struct {
	expenses      domain.TransactionRepository
	incomes       domain.TransactionRepository
	permissionSvc domain.PermissionService
	guard         ownerGuard
}

// NewReportService creates a new report service
func NewReportService(
	expenses, incomes domain.TransactionRepository,
	userRepo domain.UserRepository,
	permissionSvc domain.PermissionService,
) domain.ReportService {
	return &ReportServiceImpl{
		expenses:      expenses,
		incomes:       incomes,
		permissionSvc: permissionSvc,
		guard:         ownerGuard{userRepo: userRepo},
	}
}

// Summary implements domain.ReportService. Both bounds are inclusive
// calendar dates.
func (s *ReportServiceImpl) Summary(ctx context.Context, actor domain.Principal, ownerID uint, from, to time.Time) (*domain.Summary, error) {
	ownerID = resolveOwner(actor, ownerID)
	if from.After(to) {
		return nil, domain.NewValidationError("from", "must not be after to")
	}
	if err := s.guard.authorize(ctx, actor, ownerID); err != nil {
		return nil, err
	}
	if err := s.permissionSvc.Require(ctx, actor, domain.PermCanAccessReports); err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		From:         from.Format(domain.DateLayout),
		To:           to.Format(domain.DateLayout),
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		ByCategory:   []domain.CategoryTotal{},
		ByMonth:      []domain.MonthTotal{},
	}

	categories := map[string]*domain.CategoryTotal{}
	months := map[string]*domain.MonthTotal{}

	for _, repo := range []domain.TransactionRepository{s.incomes, s.expenses} {
		rows, err := repo.ListAll(ctx, ownerID, &from, &to)
		if err != nil {
			return nil, fmt.Errorf("failed to load %ss: %w", repo.Kind(), err)
		}
		for _, tx := range rows {
			key := string(tx.Kind) + "\x00" + tx.Category
			ct, ok := categories[key]
			if !ok {
				ct = &domain.CategoryTotal{Kind: tx.Kind, Category: tx.Category, Total: decimal.Zero}
				categories[key] = ct
			}
			ct.Total = ct.Total.Add(tx.Amount)
			ct.Count++

			month := tx.Date.Format("2006-01")
			mt, ok := months[month]
			if !ok {
				mt = &domain.MonthTotal{Month: month, Income: decimal.Zero, Expense: decimal.Zero}
				months[month] = mt
			}

			if tx.Kind == domain.KindIncome {
				summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
				mt.Income = mt.Income.Add(tx.Amount)
			} else {
				summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
				mt.Expense = mt.Expense.Add(tx.Amount)
			}
		}
	}
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)

	for _, ct := range categories {
		summary.ByCategory = append(summary.ByCategory, *ct)
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c > 0
		}
		return a.Category < b.Category
	})

	for _, mt := range months {
		summary.ByMonth = append(summary.ByMonth, *mt)
	}
	sort.Slice(summary.ByMonth, func(i, j int) bool {
		return summary.ByMonth[i].Month < summary.ByMonth[j].Month
	})

	return summary, nil
}

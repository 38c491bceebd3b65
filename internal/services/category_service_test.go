package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/fintrack/domain"
)

func TestCategoryService_ListSeedsDefaults(t *testing.T) {
	s := newTestStack(t, false)
	ctx := context.Background()

	expense, err := s.categorySvc.List(ctx, 42, domain.KindExpense)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategories(42).Expense, expense)

	income, err := s.categorySvc.List(ctx, 42, domain.KindIncome)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategories(42).Income, income)

	_, err = s.categorySvc.List(ctx, 42, "savings")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCategoryService_AddRemove(t *testing.T) {
	s := newTestStack(t, false)
	ctx := context.Background()
	const userID = 7

	tests := []struct {
		name    string
		op      string
		kind    domain.TxKind
		value   string
		wantErr error
	}{
		{"add new", "add", domain.KindExpense, " Pets ", nil},
		{"add duplicate ignoring case", "add", domain.KindExpense, "pets", domain.ErrCategoryExists},
		{"same name in the other list", "add", domain.KindIncome, "Pets", nil},
		{"add blank", "add", domain.KindExpense, "   ", domain.ErrValidation},
		{"add too long", "add", domain.KindExpense, strings.Repeat("x", domain.MaxCategoryLength+1), domain.ErrValidation},
		{"remove ignoring case", "remove", domain.KindExpense, "PETS", nil},
		{"remove missing", "remove", domain.KindExpense, "Pets", domain.ErrCategoryNotFound},
		{"bad kind", "remove", "savings", "Food", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				list []string
				err  error
			)
			if tt.op == "add" {
				list, err = s.categorySvc.Add(ctx, userID, tt.kind, tt.value)
			} else {
				list, err = s.categorySvc.Remove(ctx, userID, tt.kind, tt.value)
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			stored, err := s.categorySvc.List(ctx, userID, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, stored, list)
			assert.Equal(t, tt.op == "add", domain.ContainsCategory(list, tt.value))
		})
	}

	income, err := s.categorySvc.List(ctx, userID, domain.KindIncome)
	require.NoError(t, err)
	assert.Equal(t, "Pets", income[len(income)-1], "additions are appended")
}

package domain

import "strings"

var (
	defaultIncomeCategories  = []string{"Salary", "Business", "Investment", "Gift", "Other"}
	defaultExpenseCategories = []string{"Food", "Transport", "Shopping", "Bills", "Health", "Entertainment", "Other"}
)

// DefaultCategories builds the seed category set for a newly created user.
// Each call returns fresh slices.
func DefaultCategories(userID uint) *CategorySet {
	return &CategorySet{
		UserID:  userID,
		Income:  append([]string(nil), defaultIncomeCategories...),
		Expense: append([]string(nil), defaultExpenseCategories...),
	}
}

// ContainsCategory reports whether name is in list, ignoring case
func ContainsCategory(list []string, name string) bool {
	for _, c := range list {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	MinPasswordLength = 8
	MaxNoteLength     = 255
	MaxCategoryLength = 32
	DateLayout        = "2006-01-02"
)

var (
	validate  = validator.New()
	maxAmount = decimal.NewFromInt(100_000_000)
)

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address is a bare, well-formed email
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return NewValidationError("email", "is not a valid email address")
	}
	return nil
}

// ValidateMobile requires exactly ten digits
func ValidateMobile(mobile string) error {
	if err := validate.Var(mobile, "required,len=10,number"); err != nil {
		return NewValidationError("mobile", "must be exactly 10 digits")
	}
	return nil
}

// ValidatePassword enforces the minimum password length
func ValidatePassword(field, password string) error {
	if err := validate.Var(password, fmt.Sprintf("min=%d", MinPasswordLength)); err != nil {
		return NewValidationError(field, "must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// ValidateRegistration re-validates the registration form server side
func ValidateRegistration(name, email, mobile, password string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("name", "is required")
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidateMobile(mobile); err != nil {
		return err
	}
	return ValidatePassword("password", password)
}

// ValidateTransactionInput checks a transaction payload and returns the parsed date
func ValidateTransactionInput(in TransactionInput) (time.Time, error) {
	if !in.Amount.IsPositive() {
		return time.Time{}, NewValidationError("amount", "must be greater than 0")
	}
	if in.Amount.GreaterThanOrEqual(maxAmount) {
		return time.Time{}, NewValidationError("amount", "is too large")
	}
	if in.Amount.Exponent() < -2 && !in.Amount.Equal(in.Amount.Round(2)) {
		return time.Time{}, NewValidationError("amount", "must have at most 2 decimal places")
	}
	if strings.TrimSpace(in.Category) == "" {
		return time.Time{}, NewValidationError("category", "is required")
	}
	if len(in.Category) > MaxCategoryLength {
		return time.Time{}, NewValidationError("category", "must be at most %d characters", MaxCategoryLength)
	}
	if len(in.Note) > MaxNoteLength {
		return time.Time{}, NewValidationError("note", "must be at most %d characters", MaxNoteLength)
	}
	if !in.Method.Valid() {
		return time.Time{}, NewValidationError("method", "must be Bank or Cash")
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return time.Time{}, NewValidationError("date", "must be a date in YYYY-MM-DD format")
	}
	return date, nil
}

// ParseDate parses a calendar date as midnight UTC
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

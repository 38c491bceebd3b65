package mocks

import (
	"context"
	"time"

	"github.com/you/fintrack/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	IssueFunc     func(ctx context.Context, user *domain.User, purpose domain.OTPPurpose, channel domain.Channel) (*domain.OTPIssue, error)
	CheckFunc     func(ctx context.Context, user *domain.User, purpose domain.OTPPurpose, code, newPasswordHash string) error
	CanResendFunc func(ctx context.Context, email string) (bool, int64, error)

	Issued []domain.OTPIssue
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Issue implements domain.OTPService. The default code is always 123456.
func (m *MockOTPService) Issue(ctx context.Context, user *domain.User, purpose domain.OTPPurpose, channel domain.Channel) (*domain.OTPIssue, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, user, purpose, channel)
	}
	issue := domain.OTPIssue{
		UserID:    user.ID,
		Purpose:   purpose,
		Code:      "123456",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	m.Issued = append(m.Issued, issue)
	return &issue, nil
}

// Check implements domain.OTPService
func (m *MockOTPService) Check(ctx context.Context, user *domain.User, purpose domain.OTPPurpose, code, newPasswordHash string) error {
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, user, purpose, code, newPasswordHash)
	}
	if code != "123456" {
		return domain.ErrOTPInvalid
	}
	return nil
}

// CanResend implements domain.OTPService
func (m *MockOTPService) CanResend(ctx context.Context, email string) (bool, int64, error) {
	if m.CanResendFunc != nil {
		return m.CanResendFunc(ctx, email)
	}
	return true, 0, nil
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)

package mocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/you/fintrack/domain"
)

// MockTokenService implements domain.TokenService interface for testing.
// Default tokens look like "token:<id>:<role>".
type MockTokenService struct {
	GenerateAccessTokenFunc func(userID uint, role string) (string, error)
	ValidateAccessTokenFunc func(token string) (*domain.TokenClaims, error)
	TTLValue                time.Duration
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{TTLValue: time.Hour}
}

// GenerateAccessToken implements domain.TokenService
func (m *MockTokenService) GenerateAccessToken(userID uint, role string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID, role)
	}
	return fmt.Sprintf("token:%d:%s", userID, role), nil
}

// ValidateAccessToken implements domain.TokenService
func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	var (
		userID uint
		role   string
	)
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != "token" {
		return nil, domain.ErrTokenInvalid
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &userID); err != nil {
		return nil, domain.ErrTokenMalformed
	}
	role = parts[2]
	now := time.Now()
	return &domain.TokenClaims{
		UserID:    userID,
		Role:      role,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(m.TTL()).Unix(),
	}, nil
}

// TTL implements domain.TokenService
func (m *MockTokenService) TTL() time.Duration {
	return m.TTLValue
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)

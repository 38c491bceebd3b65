package mocks

import (
	"strings"

	"github.com/you/fintrack/domain"
)

// MockCasbinEnforcer implements the CasbinEnforcer interface for testing.
// Its default Enforce matches exact rules and follows grouping links.
type MockCasbinEnforcer struct {
	AddPolicyFunc         func(params ...interface{}) (bool, error)
	RemovePolicyFunc      func(params ...interface{}) (bool, error)
	AddGroupingPolicyFunc func(params ...interface{}) (bool, error)
	EnforceFunc           func(rvals ...interface{}) (bool, error)
	GetPolicyFunc         func() ([][]string, error)
	SavePolicyFunc        func() error

	policies  [][]string
	groupings [][]string
	Saves     int
}

// Compile-time interface compliance verification
var _ domain.CasbinEnforcer = (*MockCasbinEnforcer)(nil)

// NewMockCasbinEnforcer creates a new MockCasbinEnforcer with no rules
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{}
}

func toStrings(params []interface{}) []string {
	out := make([]string, len(params))
	for i, p := range params {
		if s, ok := p.(string); ok {
			out[i] = s
		}
	}
	return out
}

func indexOf(rules [][]string, rule []string) int {
	for i, r := range rules {
		if strings.Join(r, "\x00") == strings.Join(rule, "\x00") {
			return i
		}
	}
	return -1
}

// AddPolicy adds a rule unless it is already present
func (m *MockCasbinEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(params...)
	}
	rule := toStrings(params)
	if indexOf(m.policies, rule) >= 0 {
		return false, nil
	}
	m.policies = append(m.policies, rule)
	return true, nil
}

// RemovePolicy removes a rule
func (m *MockCasbinEnforcer) RemovePolicy(params ...interface{}) (bool, error) {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(params...)
	}
	i := indexOf(m.policies, toStrings(params))
	if i < 0 {
		return false, nil
	}
	m.policies = append(m.policies[:i], m.policies[i+1:]...)
	return true, nil
}

// AddGroupingPolicy records a role link
func (m *MockCasbinEnforcer) AddGroupingPolicy(params ...interface{}) (bool, error) {
	if m.AddGroupingPolicyFunc != nil {
		return m.AddGroupingPolicyFunc(params...)
	}
	link := toStrings(params)
	if indexOf(m.groupings, link) >= 0 {
		return false, nil
	}
	m.groupings = append(m.groupings, link)
	return true, nil
}

// Enforce checks if a request should be allowed
func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	req := toStrings(rvals)
	if len(req) < 3 {
		return false, nil
	}
	for _, role := range m.rolesOf(req[0]) {
		if indexOf(m.policies, []string{role, req[1], req[2]}) >= 0 {
			return true, nil
		}
	}
	return false, nil
}

// rolesOf returns sub and every role it inherits
func (m *MockCasbinEnforcer) rolesOf(sub string) []string {
	roles := []string{sub}
	for i := 0; i < len(roles); i++ {
		for _, g := range m.groupings {
			if len(g) == 2 && g[0] == roles[i] {
				roles = append(roles, g[1])
			}
		}
	}
	return roles
}

// GetPolicy returns a copy of all rules
func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	result := make([][]string, len(m.policies))
	for i, policy := range m.policies {
		result[i] = append([]string(nil), policy...)
	}
	return result, nil
}

// Groupings returns a copy of all role links
func (m *MockCasbinEnforcer) Groupings() [][]string {
	result := make([][]string, len(m.groupings))
	for i, g := range m.groupings {
		result[i] = append([]string(nil), g...)
	}
	return result
}

// SavePolicy counts saves
func (m *MockCasbinEnforcer) SavePolicy() error {
	if m.SavePolicyFunc != nil {
		return m.SavePolicyFunc()
	}
	m.Saves++
	return nil
}

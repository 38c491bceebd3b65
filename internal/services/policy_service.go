package services

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/you/fintrack/domain"
)

const anyMethod = "^(GET|POST|PUT|DELETE)$"

// defaultPolicies are the route rules seeded on boot. Managers inherit the
// user rules and admins the manager rules through the role hierarchy.
var defaultPolicies = [][3]string{
	{domain.RoleUser, "/expenses", anyMethod},
	{domain.RoleUser, "/expenses/*", anyMethod},
	{domain.RoleUser, "/incomes", anyMethod},
	{domain.RoleUser, "/incomes/*", anyMethod},
	{domain.RoleUser, "/profile", "^(GET|PUT)$"},
	{domain.RoleUser, "/profile/*", "^(GET|PUT)$"},
	{domain.RoleUser, "/user/*", "^(GET|PUT|DELETE)$"},
	{domain.RoleUser, "/reports/*", "^GET$"},
	// managed users holding canManageUsers add teammates; the service checks the flag
	{domain.RoleUser, "/manager/users", "^POST$"},
	{domain.RoleManager, "/manager/*", anyMethod},
	{domain.RoleAdmin, "/admin/*", anyMethod},
}

var roleHierarchy = [][2]string{
	{domain.RoleManager, domain.RoleUser},
	{domain.RoleAdmin, domain.RoleManager},
}

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.Enforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) RemovePolicy(params ...interface{}) (bool, error) {
	return w.enforcer.RemovePolicy(params...)
}

func (w *CasbinEnforcerWrapper) AddGroupingPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddGroupingPolicy(params...)
}

func (w *CasbinEnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

func (w *CasbinEnforcerWrapper) SavePolicy() error {
	return w.enforcer.SavePolicy()
}

// PolicyServiceImpl implements domain.PolicyService using Casbin
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.Enforcer) domain.PolicyService {
	return NewPolicyServiceWithEnforcer(NewCasbinEnforcerWrapper(enforcer))
}

// NewPolicyServiceWithEnforcer creates a new policy service with a CasbinEnforcer interface (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

func validatePolicy(role, resource, action string) error {
	switch role {
	case domain.RoleUser, domain.RoleManager, domain.RoleAdmin:
	default:
		return domain.NewValidationError("role", "must be one of user, manager, admin")
	}
	if !strings.HasPrefix(resource, "/") {
		return domain.NewValidationError("resource", "must be a path starting with /")
	}
	if strings.TrimSpace(action) == "" {
		return domain.NewValidationError("action", "is required")
	}
	return nil
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	if err := validatePolicy(role, resource, action); err != nil {
		return err
	}
	_, err := p.enforcer.AddPolicy(role, resource, action)
	if err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// RemovePolicy implements domain.PolicyService
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) error {
	if err := validatePolicy(role, resource, action); err != nil {
		return err
	}
	removed, err := p.enforcer.RemovePolicy(role, resource, action)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrResourceNotFound
	}
	return p.enforcer.SavePolicy()
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(role, resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}

// SeedDefaults adds the default route rules and role hierarchy. Existing
// rules are left alone so the call is safe on every boot.
func (p *PolicyServiceImpl) SeedDefaults() error {
	for _, rule := range defaultPolicies {
		if _, err := p.enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
			return fmt.Errorf("seed policy %v: %w", rule, err)
		}
	}
	for _, link := range roleHierarchy {
		if _, err := p.enforcer.AddGroupingPolicy(link[0], link[1]); err != nil {
			return fmt.Errorf("seed role %v: %w", link, err)
		}
	}
	return p.enforcer.SavePolicy()
}

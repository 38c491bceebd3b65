package services

import (
	"context"
	"fmt"

	"github.com/you/fintrack/domain"
)

// PermissionServiceImpl implements domain.PermissionService
type PermissionServiceImpl struct {
	userRepo    domain.UserRepository
	auditLogger domain.AuditLogger
}

// NewPermissionService creates a new permission service
func NewPermissionService(userRepo domain.UserRepository, auditLogger domain.AuditLogger) domain.PermissionService {
	return &PermissionServiceImpl{userRepo: userRepo, auditLogger: auditLogger}
}

// canAdminister reports whether actor may manage target: admins manage
// everyone, managers their own team.
func canAdminister(actor domain.Principal, target *domain.User) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == domain.RoleManager && target.IsManagedBy(actor.UserID)
}

// Get implements domain.PermissionService
func (s *PermissionServiceImpl) Get(ctx context.Context, actor domain.Principal, userID uint) (domain.Permissions, error) {
	target, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.Permissions{}, err
	}
	if target.ID != actor.UserID && !canAdminister(actor, target) {
		return domain.Permissions{}, domain.ErrForbidden
	}
	return domain.ResolvePermissions(target.Permissions), nil
}

// Set implements domain.PermissionService. Only recognised flags are
// accepted and the stored map is rewritten in canonical form.
func (s *PermissionServiceImpl) Set(ctx context.Context, actor domain.Principal, userID uint, updates map[string]bool) (domain.Permissions, error) {
	target, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.Permissions{}, err
	}
	if !canAdminister(actor, target) {
		return domain.Permissions{}, domain.ErrForbidden
	}

	merged, err := domain.MergePermissions(target.Permissions, updates)
	if err != nil {
		return domain.Permissions{}, err
	}
	target.Permissions = merged
	if err := s.userRepo.Update(ctx, target); err != nil {
		return domain.Permissions{}, fmt.Errorf("failed to save permissions: %w", err)
	}

	event := domain.NewAuditEvent(domain.PermissionsChangedEvent, target.ID).WithActor(actor.UserID)
	for k, v := range updates {
		event.WithMetadata(k, v)
	}
	recordAudit(ctx, s.auditLogger, event)

	return domain.ResolvePermissions(merged), nil
}

// Require implements domain.PermissionService
func (s *PermissionServiceImpl) Require(ctx context.Context, actor domain.Principal, capability string) error {
	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !user.Can(capability) {
		recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.AccessDeniedEvent, user.ID).
			WithMetadata("capability", capability).
			WithError(domain.ErrPermissionDenied))
		return domain.ErrPermissionDenied
	}
	return nil
}

// Team implements domain.PermissionService. Managers see the users they
// administer; managed users with canViewTeam see everyone sharing their
// manager.
func (s *PermissionServiceImpl) Team(ctx context.Context, actor domain.Principal) ([]*domain.User, error) {
	if actor.Role == domain.RoleManager || actor.IsAdmin() {
		return s.userRepo.ListByManager(ctx, actor.UserID)
	}

	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user.ManagerID == nil || !user.Can(domain.PermCanViewTeam) {
		return nil, domain.ErrPermissionDenied
	}
	return s.userRepo.ListByManager(ctx, *user.ManagerID)
}

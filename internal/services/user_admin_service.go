package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/you/fintrack/domain"
)

// UserAdminServiceImpl implements domain.UserAdminService
type UserAdminServiceImpl struct {
	userRepo     domain.UserRepository
	categoryRepo domain.CategoryRepository
	passwordSvc  domain.PasswordService
	auditLogger  domain.AuditLogger
}

// NewUserAdminService creates a new user administration service
func NewUserAdminService(
	userRepo domain.UserRepository,
	categoryRepo domain.CategoryRepository,
	passwordSvc domain.PasswordService,
	auditLogger domain.AuditLogger,
) domain.UserAdminService {
	return &UserAdminServiceImpl{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		passwordSvc:  passwordSvc,
		auditLogger:  auditLogger,
	}
}

// CreateManagedUser implements domain.UserAdminService. Managers and
// admins create users on their own team; a managed user holding
// canManageUsers creates teammates under the same manager. Managed
// accounts are created verified.
func (s *UserAdminServiceImpl) CreateManagedUser(ctx context.Context, actor domain.Principal, in domain.ManagedUserInput) (*domain.User, error) {
	managerID, err := s.teamOwner(ctx, actor)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	mobile := strings.TrimSpace(in.Mobile)
	if err := domain.ValidateRegistration(name, email, mobile, in.Password); err != nil {
		return nil, err
	}

	perms, err := domain.MergePermissions(nil, in.Permissions)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if holder, err := s.userRepo.FindByMobile(ctx, mobile); err == nil && holder.IsVerified() {
		return nil, domain.ErrMobileAlreadyInUse
	}

	hashedPassword, err := s.passwordSvc.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Mobile:       mobile,
		PasswordHash: hashedPassword,
		Role:         domain.RoleUser,
		Status:       domain.StatusVerified,
		Permissions:  perms,
		ManagerID:    &managerID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.categoryRepo.Create(ctx, domain.DefaultCategories(user.ID)); err != nil && !errors.Is(err, domain.ErrCategoryExists) {
		log.Printf("admin: failed to seed categories for user_id=%d: %v", user.ID, err)
	}

	recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.ManagedUserCreatedEvent, user.ID).
		WithActor(actor.UserID).
		WithEmail(email).
		WithMetadata("manager_id", managerID))
	return user, nil
}

// teamOwner returns the manager a new user created by actor belongs to
func (s *UserAdminServiceImpl) teamOwner(ctx context.Context, actor domain.Principal) (uint, error) {
	if actor.Role == domain.RoleManager || actor.IsAdmin() {
		return actor.UserID, nil
	}
	user, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		return 0, err
	}
	if user.ManagerID == nil || !user.Can(domain.PermCanManageUsers) {
		return 0, domain.ErrForbidden
	}
	return *user.ManagerID, nil
}

// ListUsers implements domain.UserAdminService
func (s *UserAdminServiceImpl) ListUsers(ctx context.Context, actor domain.Principal) ([]*domain.User, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		return s.userRepo.ListAll(ctx)
	case domain.RoleManager:
		return s.userRepo.ListByManager(ctx, actor.UserID)
	default:
		return nil, domain.ErrForbidden
	}
}

// SetRole implements domain.UserAdminService
func (s *UserAdminServiceImpl) SetRole(ctx context.Context, actor domain.Principal, userID uint, role string) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	switch role {
	case domain.RoleUser, domain.RoleManager, domain.RoleAdmin:
	default:
		return nil, domain.NewValidationError("role", "must be one of user, manager, admin")
	}
	if userID == actor.UserID {
		return nil, domain.NewValidationError("role", "admins cannot change their own role")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := user.Role
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.RoleChangedEvent, user.ID).
		WithActor(actor.UserID).
		WithMetadata("from", previous).
		WithMetadata("to", role))
	return user, nil
}

// DeleteUser implements domain.UserAdminService. The repository removes
// the user's categories and transactions in the same database transaction.
func (s *UserAdminServiceImpl) DeleteUser(ctx context.Context, actor domain.Principal, userID uint) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if userID == actor.UserID {
		return domain.NewValidationError("", "admins cannot delete themselves")
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	recordAudit(ctx, s.auditLogger, domain.NewAuditEvent(domain.UserDeletedEvent, userID).WithActor(actor.UserID))
	return nil
}

package services

import (
	"context"
	"errors"

	"github.com/you/fintrack/domain"
)

// ownerGuard decides whether an actor may touch records owned by another user
type ownerGuard struct {
	userRepo domain.UserRepository
}

// authorize allows the owner, admins and the owner's manager
func (g ownerGuard) authorize(ctx context.Context, actor domain.Principal, ownerID uint) error {
	if actor.UserID == ownerID || actor.IsAdmin() {
		return nil
	}
	if actor.Role != domain.RoleManager {
		return domain.ErrForbidden
	}
	owner, err := g.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrForbidden
		}
		return err
	}
	if !owner.IsManagedBy(actor.UserID) {
		return domain.ErrForbidden
	}
	return nil
}

// resolveOwner defaults an empty owner to the actor
func resolveOwner(actor domain.Principal, ownerID uint) uint {
	if ownerID == 0 {
		return actor.UserID
	}
	return ownerID
}

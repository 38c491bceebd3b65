package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
)

// AdminHandlers serves user administration under /admin
type AdminHandlers struct {
	adminSvc domain.UserAdminService
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(adminSvc domain.UserAdminService) *AdminHandlers {
	return &AdminHandlers{adminSvc: adminSvc}
}

// RoleRequest changes a user's role
type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListUsers handles GET /admin/users
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	users, err := h.adminSvc.ListUsers(c.Request.Context(), actor)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, userViews(users))
}

// SetRole handles PUT /admin/users/:id/role
func (h *AdminHandlers) SetRole(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req RoleRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.adminSvc.SetRole(c.Request.Context(), actor, id, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, userView(user))
}

// DeleteUser handles DELETE /admin/users/:id
func (h *AdminHandlers) DeleteUser(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	if err := h.adminSvc.DeleteUser(c.Request.Context(), actor, id); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"message": "User deleted"})
}

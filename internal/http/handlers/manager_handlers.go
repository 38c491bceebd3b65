package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
)

// ManagerHandlers serves the /manager namespace
type ManagerHandlers struct {
	adminSvc      domain.UserAdminService
	permissionSvc domain.PermissionService
}

// NewManagerHandlers creates new manager handlers
func NewManagerHandlers(adminSvc domain.UserAdminService, permissionSvc domain.PermissionService) *ManagerHandlers {
	return &ManagerHandlers{adminSvc: adminSvc, permissionSvc: permissionSvc}
}

// CreateUserRequest is the payload for a new team member
type CreateUserRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Email       string          `json:"email" binding:"required,email"`
	Mobile      string          `json:"mobile" binding:"required,len=10,number"`
	Password    string          `json:"password" binding:"required,min=8"`
	Permissions map[string]bool `json:"permissions"`
}

// CreateUser handles POST /manager/users
func (h *ManagerHandlers) CreateUser(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	var req CreateUserRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.adminSvc.CreateManagedUser(c.Request.Context(), actor, domain.ManagedUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Mobile:      req.Mobile,
		Password:    req.Password,
		Permissions: req.Permissions,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, userView(user))
}

// Team handles GET /manager/users
func (h *ManagerHandlers) Team(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	members, err := h.permissionSvc.Team(c.Request.Context(), actor)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, userViews(members))
}

// GetPermissions handles GET /manager/users/:id/permissions
func (h *ManagerHandlers) GetPermissions(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	perms, err := h.permissionSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, perms)
}

// SetPermissions handles PUT /manager/users/:id/permissions. The body is a
// partial map of capability flags.
func (h *ManagerHandlers) SetPermissions(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var updates map[string]bool
	if !bind(c, &updates) {
		return
	}

	perms, err := h.permissionSvc.Set(c.Request.Context(), actor, id, updates)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, perms)
}

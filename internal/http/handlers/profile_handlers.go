package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
)

// ProfileHandlers serves the caller's own account, permissions, team and
// category lists
type ProfileHandlers struct {
	authSvc       domain.AuthService
	permissionSvc domain.PermissionService
	categorySvc   domain.CategoryService
}

// NewProfileHandlers creates new profile handlers
func NewProfileHandlers(authSvc domain.AuthService, permissionSvc domain.PermissionService, categorySvc domain.CategoryService) *ProfileHandlers {
	return &ProfileHandlers{
		authSvc:       authSvc,
		permissionSvc: permissionSvc,
		categorySvc:   categorySvc,
	}
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Mobile string `json:"mobile" binding:"required,len=10,number"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// CategoryRequest names a category to add or remove
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=32"`
}

// Get handles GET /profile
func (h *ProfileHandlers) Get(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	user, err := h.authSvc.GetUserProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, userView(user))
}

// Update handles PUT /profile
func (h *ProfileHandlers) Update(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	var req UpdateProfileRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.authSvc.UpdateProfile(c.Request.Context(), actor.UserID, req.Name, req.Mobile)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, userView(user))
}

// ChangePassword handles PUT /profile/password
func (h *ProfileHandlers) ChangePassword(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	var req ChangePasswordRequest
	if !bind(c, &req) {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), actor.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Password updated"})
}

// Permissions handles GET /user/permissions
func (h *ProfileHandlers) Permissions(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	perms, err := h.permissionSvc.Get(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, perms)
}

// Team handles GET /user/team
func (h *ProfileHandlers) Team(c *gin.Context) {
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

// Categories handles GET /user/categories/:type
func (h *ProfileHandlers) Categories(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	list, err := h.categorySvc.List(c.Request.Context(), actor.UserID, domain.TxKind(c.Param("type")))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, list)
}

// AddCategory handles PUT /user/categories/:type
func (h *ProfileHandlers) AddCategory(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	var req CategoryRequest
	if !bind(c, &req) {
		return
	}

	list, err := h.categorySvc.Add(c.Request.Context(), actor.UserID, domain.TxKind(c.Param("type")), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, list)
}

// RemoveCategory handles DELETE /user/categories/:type. The name comes from
// the JSON body or the name query parameter.
func (h *ProfileHandlers) RemoveCategory(c *gin.Context) {
	actor, found := principal(c)
	if !found {
		return
	}
	req := CategoryRequest{Name: c.Query("name")}
	if req.Name == "" && c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}

	list, err := h.categorySvc.Remove(c.Request.Context(), actor.UserID, domain.TxKind(c.Param("type")), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, list)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
)

// PolicyHandlers manages route policies under /admin/policies
type PolicyHandlers struct {
	svc domain.PolicyService
}

// NewPolicyHandlers creates new policy handlers
func NewPolicyHandlers(svc domain.PolicyService) *PolicyHandlers {
	return &PolicyHandlers{svc: svc}
}

type policyReq struct {
	Sub string `json:"sub" binding:"required"`
	Obj string `json:"obj" binding:"required"`
	Act string `json:"act" binding:"required"`
}

// List handles GET /admin/policies
func (h *PolicyHandlers) List(c *gin.Context) {
	policies := h.svc.GetPolicies()
	if policies == nil {
		policies = [][]string{}
	}
	respondOK(c, policies)
}

// Add handles POST /admin/policies
func (h *PolicyHandlers) Add(c *gin.Context) {
	var r policyReq
	if !bind(c, &r) {
		return
	}
	if err := h.svc.AddPolicy(r.Sub, r.Obj, r.Act); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove handles DELETE /admin/policies
func (h *PolicyHandlers) Remove(c *gin.Context) {
	var r policyReq
	if !bind(c, &r) {
		return
	}
	if err := h.svc.RemovePolicy(r.Sub, r.Obj, r.Act); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

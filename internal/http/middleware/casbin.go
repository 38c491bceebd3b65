package middleware

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
)

// CasbinMiddleware is the route level authorization contract used by the router
type CasbinMiddleware interface {
	Enforce() gin.HandlerFunc
}

// CasbinMW checks the caller's role against the route policies
type CasbinMW struct {
	policies domain.PolicyService
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policies domain.PolicyService) *CasbinMW {
	return &CasbinMW{policies: policies}
}

// Enforce returns the casbin authorization middleware. It must run after
// AuthMiddleware.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID or role not found in token"})
			return
		}

		// a client that names a user must name itself
		headerUserID := c.GetHeader("x-user-id")
		if headerUserID != "" && headerUserID != strconv.FormatUint(uint64(principal.UserID), 10) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Header x-user-id does not match token user ID"})
			return
		}

		allowed, err := mw.policies.CheckPermission(principal.Role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			log.Printf("casbin: enforce %s %s for role %s: %v", c.Request.Method, c.Request.URL.Path, principal.Role, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access Denied"})
			return
		}

		c.Next()
	})
}

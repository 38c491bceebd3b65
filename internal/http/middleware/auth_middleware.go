package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/you/fintrack/domain"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	ContextTokenID  = "token_id"
)

// AuthMiddleware validates the bearer token and stores the caller in the
// gin context
func AuthMiddleware(tokenSvc domain.TokenService) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") || strings.TrimSpace(tokenParts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := tokenSvc.ValidateAccessToken(strings.TrimSpace(tokenParts[1]))
		if err != nil {
			switch err {
			case domain.ErrTokenExpired:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			case domain.ErrTokenInvalid, domain.ErrTokenMalformed:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token validation failed"})
			}
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		if claims.TokenID != "" {
			c.Set(ContextTokenID, claims.TokenID)
		}

		c.Next()
	})
}

// CurrentPrincipal returns the caller stored by AuthMiddleware
func CurrentPrincipal(c *gin.Context) (domain.Principal, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return domain.Principal{}, false
	}
	userID, ok := id.(uint)
	if !ok || userID == 0 {
		return domain.Principal{}, false
	}
	role := c.GetString(ContextUserRole)
	if role == "" {
		return domain.Principal{}, false
	}
	return domain.Principal{UserID: userID, Role: role}, true
}

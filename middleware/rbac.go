package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arvindh25/college-event-backend/internal/auth"
)

// RequireRoles aborts with 403 unless the authenticated user holds one
// of the allowed roles. Must run after AuthMiddleware.
func RequireRoles(allowed ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, ok := GetAccessContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		for _, role := range allowed {
			if access.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

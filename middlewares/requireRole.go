package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wardwatch-be/models"
)

// RequireAuthority rejects requests whose session role is not authority.
// Must run after AuthMiddleware.
func RequireAuthority() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		role, ok := roleVal.(string)
		if !ok || models.UserRole(role) != models.Authority {
			c.JSON(http.StatusForbidden, gin.H{"error": "Authority role required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

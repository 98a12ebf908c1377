package middleware

import (
	"net/http"

	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// StaffOnly allows STAFF and ADMIN through. Per-ticket category scoping is
// enforced later by the policy layer, since the ticket is not known here.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "kind": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		if !user.Role.IsStaff() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Staff access required", "kind": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminOnly restricts access to users with the ADMIN role.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "kind": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		if user.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required", "kind": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		c.Next()
	}
}

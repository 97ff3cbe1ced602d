package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelagency/internal/domain/admin"
	"travelagency/internal/pkg/response"
)

// RequireRole lets the request through when the authenticated role is one of
// roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(admin.RoleAdmin)
}

func SuperAdminOnly() gin.HandlerFunc {
	return RequireRole(admin.RoleSuperAdmin)
}

// AnyOperator accepts both operator roles.
func AnyOperator() gin.HandlerFunc {
	return RequireRole(admin.RoleAdmin, admin.RoleSuperAdmin)
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travelagency/internal/domain/admin"
	"travelagency/internal/pkg/jwt"
	"travelagency/internal/pkg/response"
)

const (
	CtxOperatorID = "operator_id"
	CtxRole       = "role"
)

// JWTAuth validates the bearer token issued by the upstream auth service and
// stores the operator identity on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be Bearer <token>")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}
		if !admin.ValidRole(claims.Role) {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Operator role required")
			return
		}

		c.Set(CtxOperatorID, claims.OperatorID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

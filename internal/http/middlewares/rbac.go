package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole must run after RequireAuth; it trusts only the verified claims
// stashed on the context. Payload fields claiming a role are irrelevant here.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		switch {
		case !ok || role == "":
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")

		case role != required:
			abortWithError(c, http.StatusForbidden, "forbidden", required+" role required")

		default:
			c.Next()
		}
	}
}

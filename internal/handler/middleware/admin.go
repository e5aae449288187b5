package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventtix/registrar/pkg/response"
)

// RequireSuperadmin rejects admins without the superadmin role.
// Must be used after JWTAuth middleware.
func RequireSuperadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := CurrentAdmin(c)
		if !ok {
			response.Unauthorized(c, "missing authentication")
			c.Abort()
			return
		}
		if !admin.IsActiveSuperadmin() {
			response.Error(c, http.StatusForbidden, response.KindForbidden, "INSUFFICIENT_ROLE", "superadmin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

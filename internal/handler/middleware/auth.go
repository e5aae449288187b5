package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"eventtix/registrar/internal/model"
	jwtpkg "eventtix/registrar/pkg/jwt"
	"eventtix/registrar/pkg/response"
)

const (
	ContextKeyClaims = "admin_claims"
	ContextKeyAdmin  = "admin"
)

// Authenticator resolves a bearer token to its claims and the admin it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*jwtpkg.Claims, *model.Admin, error)
}

func JWTAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization format")
			c.Abort()
			return
		}

		claims, admin, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyAdmin, admin)
		c.Next()
	}
}

// CurrentAdmin returns the admin stored by JWTAuth.
func CurrentAdmin(c *gin.Context) (*model.Admin, bool) {
	v, ok := c.Get(ContextKeyAdmin)
	if !ok {
		return nil, false
	}
	admin, ok := v.(*model.Admin)
	return admin, ok
}

func CurrentClaims(c *gin.Context) (*jwtpkg.Claims, bool) {
	v, ok := c.Get(ContextKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwtpkg.Claims)
	return claims, ok
}

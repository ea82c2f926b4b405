package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/curlben/msuas-server/internal/auth"
	"github.com/curlben/msuas-server/internal/common"
)

const (
	UserIDKey   = "user_id"
	UserNameKey = "user_name"
	UserRoleKey = "user_role"
)

// AuthRequired verifies the bearer token and attaches the resolved
// identity to the request context.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			common.Fail(c, http.StatusUnauthorized, 40100, "no token, authorization denied")
			c.Abort()
			return
		}

		claims, err := auth.ParseJWT(token, secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40101, "token is not valid")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserNameKey, claims.Name)
		c.Set(UserRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole allows only the listed roles past; AuthRequired must run
// first.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(UserRoleKey)
		if !ok {
			common.Fail(c, http.StatusUnauthorized, 40100, "authorization required")
			c.Abort()
			return
		}
		role, _ := v.(string)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		common.Fail(c, http.StatusForbidden, 40300, "access denied, insufficient permissions")
		c.Abort()
	}
}

package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mall-console/internal/common"
)

type RoleSource interface {
	Role() string
}

// RoleRequired lets the request through only for one of roles.
func RoleRequired(src RoleSource, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, src.Role()) {
			common.Fail(c, http.StatusForbidden, 40301, "forbidden for this role")
			c.Abort()
			return
		}
		c.Next()
	}
}

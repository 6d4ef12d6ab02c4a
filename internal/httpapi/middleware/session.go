package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mall-console/internal/common"
)

type Authenticator interface {
	Authenticated() bool
}

// SessionRequired rejects requests while no operator is logged in.
func SessionRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.Authenticated() {
			common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized, please log in")
			c.Abort()
			return
		}
		c.Next()
	}
}

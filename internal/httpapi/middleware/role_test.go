package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fixedRole string

func (r fixedRole) Role() string { return string(r) }

func TestRoleRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"merchant", http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/x", RoleRequired(fixedRole(tc.role), "admin"), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != tc.want {
			t.Fatalf("role %q: got %d, want %d", tc.role, w.Code, tc.want)
		}
	}
}

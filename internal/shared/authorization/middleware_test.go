package authorization

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/bodrix-ai/bodrix/internal/shared/constants"
)

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		role     string
		wantCode int
	}{
		{"admin passes", "admin", http.StatusOK},
		{"premium rejected", "premium", http.StatusForbidden},
		{"anonymous rejected", "", http.StatusForbidden},
		{"unknown role rejected", "root", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			_, r := gin.CreateTestContext(w)
			r.Use(func(c *gin.Context) {
				if tt.role != "" {
					c.Set(constants.ContextKeyUserRole, tt.role)
				}
				c.Next()
			})
			r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestParseUserRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseUserRole("admin"))
	assert.Equal(t, RolePremium, ParseUserRole("premium"))
	assert.Equal(t, RoleUser, ParseUserRole("superuser"))
	assert.Equal(t, RoleUser, ParseUserRole(""))
}

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/cookingbylea/recipes/backend/internal/types"
)

type staticValidator map[string]*types.TokenClaims

func (v staticValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, errors.New("bad token")
}

func TestAdminAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator := staticValidator{
		"admin":  {Role: types.RoleAdmin},
		"viewer": {Role: "viewer"},
	}

	router := gin.New()
	router.DELETE("/recipes/:id", AdminAuth(validator), func(c *gin.Context) {
		_, ok := c.Get(ClaimsKey)
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic admin", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"not an admin", "Bearer viewer", http.StatusUnauthorized},
		{"admin", "Bearer admin", http.StatusOK},
		{"lowercase scheme", "bearer admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/recipes/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticTokens map[string]string

func (s staticTokens) Parse(tok string) (string, error) {
	if id, ok := s[tok]; ok {
		return id, nil
	}
	return "", errors.New("unknown token")
}

func TestGinRequireAuth(t *testing.T) {
	mw := NewAuthMiddleware(staticTokens{"good": "u-1"})

	router := gin.New()
	router.GET("/me", GinRequireAuth(mw), func(c *gin.Context) {
		fromCtx, _ := UserIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"gin": c.GetString(ContextUserID), "ctx": fromCtx})
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer good", http.StatusOK, `{"ctx":"u-1","gin":"u-1"}`},
		{"scheme is case insensitive", "bearer good", http.StatusOK, `{"ctx":"u-1","gin":"u-1"}`},
		{"missing header", "", http.StatusUnauthorized, `{"message":"Unauthorized"}`},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, `{"message":"Unauthorized"}`},
		{"empty token", "Bearer ", http.StatusUnauthorized, `{"message":"Unauthorized"}`},
		{"bad token", "Bearer bad", http.StatusUnauthorized, `{"message":"Unauthorized"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

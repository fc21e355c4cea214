package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/cats-backend/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		environment  config.Environment
		expectedHSTS string
	}{
		{
			name:        "development environment has no HSTS",
			environment: config.EnvDevelopment,
		},
		{
			name:         "production environment sets HSTS",
			environment:  config.EnvProduction,
			expectedHSTS: "max-age=31536000; includeSubDomains",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Server: config.ServerConfig{Environment: tt.environment}}

			router := gin.New()
			router.Use(SecurityHeadersMiddleware(cfg))
			router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
			assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
			assert.Equal(t, tt.expectedHSTS, w.Header().Get("Strict-Transport-Security"))
		})
	}
}

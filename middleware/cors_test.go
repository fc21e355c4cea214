package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/cats-backend/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.ServerConfig{
		AllowedOrigins: []string{"http://localhost:3000", "https://*.cats.dev"},
	}

	testCases := []struct {
		name           string
		requestOrigin  string
		expectedOrigin string
		isOptions      bool
		expectedStatus int
	}{
		{
			name:           "allowed origin",
			requestOrigin:  "http://localhost:3000",
			expectedOrigin: "http://localhost:3000",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wildcard subdomain",
			requestOrigin:  "https://app.cats.dev",
			expectedOrigin: "https://app.cats.dev",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wildcard does not match other scheme",
			requestOrigin:  "http://app.cats.dev",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "disallowed origin",
			requestOrigin:  "http://malicious.com",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "no origin header",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "allowed preflight",
			requestOrigin:  "http://localhost:3000",
			expectedOrigin: "http://localhost:3000",
			isOptions:      true,
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORSMiddleware(cfg))
			router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

			method := http.MethodGet
			if tc.isOptions {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/test", nil)
			if tc.requestOrigin != "" {
				req.Header.Set("Origin", tc.requestOrigin)
			}
			if tc.isOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, tc.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSMiddleware_AllowAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, origins := range [][]string{nil, {"*"}} {
		router := gin.New()
		router.Use(CORSMiddleware(config.ServerConfig{AllowedOrigins: origins}))
		router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "http://anywhere.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

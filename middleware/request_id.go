package middleware

import (
	"time"

	"github.com/NomadCrew/cats-backend/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the key used to store the request ID in the gin context
	RequestIDKey = "request_id"

	requestIDHeader = "X-Request-ID"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Keep an id set by a load balancer or proxy
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()
	}
}

// APIVersion records the API version for response metadata.
func APIVersion(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(VersionKey), version)
		c.Header("X-API-Version", version)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"request_id", c.GetString(RequestIDKey),
			"client_ip", c.ClientIP(),
			"bytes", c.Writer.Size(),
		}

		log := logger.GetLogger()
		switch {
		case status >= 500:
			log.Errorw("Request failed", fields...)
		case status >= 400:
			log.Warnw("Request rejected", fields...)
		default:
			log.Infow("Request completed", fields...)
		}
	}
}

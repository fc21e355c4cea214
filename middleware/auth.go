package middleware

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/NomadCrew/cats-backend/errors"
	"github.com/NomadCrew/cats-backend/internal/auth"
	"github.com/NomadCrew/cats-backend/logger"
	"github.com/gin-gonic/gin"
)

// Validator checks a bearer token and returns the subject it was issued to.
type Validator interface {
	Validate(token string) (string, error)
}

// AuthMiddleware validates the Bearer token and stores the user ID in both
// the gin context and the request context.
func AuthMiddleware(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			log.Debugw("No token provided in request", "path", c.Request.URL.Path)
			_ = c.Error(apperrors.AuthenticationFailed("Authorization required"))
			c.Abort()
			return
		}

		userID, err := validator.Validate(token)
		if err != nil {
			log.Warnw("Token validation failed",
				"error", err,
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())

			msg := "Invalid authentication token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "Your session has expired"
			}
			_ = c.Error(apperrors.AuthenticationFailed(msg))
			c.Abort()
			return
		}

		c.Set(string(UserIDKey), userID)
		ctx := context.WithValue(c.Request.Context(), UserIDKey, userID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetUserID returns the authenticated user's ID, or "" on public routes.
func GetUserID(c *gin.Context) string {
	return c.GetString(string(UserIDKey))
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

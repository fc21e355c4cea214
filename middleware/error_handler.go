package middleware

import (
	"fmt"

	"github.com/NomadCrew/cats-backend/errors"
	"github.com/NomadCrew/cats-backend/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler pushed with c.Error. It is
// the only place error responses are written.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := c.Errors.Last()
		appErr := classify(last)
		status := appErr.GetHTTPStatus()

		logger.LogHTTPError(c, last.Err, status, fmt.Sprintf("%s error", appErr.Type))

		if c.Writer.Written() {
			logger.GetLogger().Warnw("Response already written, dropping error response",
				"path", c.Request.URL.Path,
				"status", c.Writer.Status())
			return
		}

		NewResponseBuilder(c).Error(c, appErr)
	}
}

func classify(ginErr *gin.Error) *errors.AppError {
	if appErr, ok := errors.As(ginErr.Err); ok {
		return appErr
	}

	switch ginErr.Type {
	case gin.ErrorTypeBind:
		return errors.ValidationFailed("Failed to bind request", ginErr.Err.Error())
	case gin.ErrorTypePublic:
		return errors.ValidationFailed(ginErr.Err.Error(), "")
	default:
		appErr := errors.InternalServerError("Internal Server Error")
		appErr.Detail = ginErr.Err.Error()
		appErr.Raw = ginErr.Err
		return appErr
	}
}

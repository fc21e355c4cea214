package middleware

import (
	"time"

	"github.com/NomadCrew/cats-backend/errors"
	"github.com/NomadCrew/cats-backend/types"
	"github.com/gin-gonic/gin"
)

// ResponseBuilder provides methods for building standardized API responses
type ResponseBuilder struct {
	requestID string
	version   string
}

// NewResponseBuilder creates a new response builder
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{
		requestID: c.GetString(RequestIDKey),
		version:   c.GetString(string(VersionKey)),
	}
}

func (rb *ResponseBuilder) meta() *types.MetaInfo {
	return &types.MetaInfo{
		RequestID: rb.requestID,
		Timestamp: time.Now().UTC(),
		Version:   rb.version,
	}
}

// Respond writes a successful handler result. A response without a body
// writes only the status.
func Respond[T any](c *gin.Context, r types.Response[T]) {
	body, ok := r.Body()
	if !ok {
		c.Status(r.Status())
		return
	}

	rb := NewResponseBuilder(c)
	c.JSON(r.Status(), types.StandardResponse{
		Success:    true,
		Data:       body,
		Pagination: r.Pagination(),
		Meta:       rb.meta(),
	})
}

// Error writes appErr. Details are shown for client errors, and for server
// errors only in debug mode.
func (rb *ResponseBuilder) Error(c *gin.Context, appErr *errors.AppError) {
	status := appErr.GetHTTPStatus()

	info := &types.ErrorInfo{
		Code:    string(appErr.Type),
		Message: appErr.Message,
		TraceID: rb.requestID,
	}
	if appErr.Detail != "" && (appErr.IsClientError() || gin.IsDebugging()) {
		info.Details = appErr.Detail
	}

	c.JSON(status, types.StandardResponse{
		Success: false,
		Error:   info,
		Meta:    rb.meta(),
	})
}

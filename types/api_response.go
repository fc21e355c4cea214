package types

import "time"

// StandardResponse is the unified response format for all API endpoints
type StandardResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *ErrorInfo  `json:"error,omitempty"`
	Meta       *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo contains structured error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Machine-readable error code
	Message string `json:"message"`           // Human-readable error message
	Details string `json:"details,omitempty"` // Only for client errors, or in debug mode
	TraceID string `json:"trace_id,omitempty"`
}

// MetaInfo contains metadata about the response
type MetaInfo struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// Pagination describes the page a list response carries.
type Pagination struct {
	Count  int64 `json:"count"`
	Offset int64 `json:"offset"`
	Limit  int64 `json:"limit"`
}

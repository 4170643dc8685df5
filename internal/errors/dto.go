package errors

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// NewErrorResponse builds the JSON error payload for an error, preferring
// hints (frontend-safe messages) over the raw error chain.
func NewErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Display:       err.Error(),
			InternalError: err.Error(),
		},
	}

	if hints := errors.GetAllHints(err); len(hints) > 0 {
		resp.Error.Display = strings.Join(hints, "; ")
	}

	return resp
}

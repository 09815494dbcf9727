// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Upstream data errors
	ErrDataUnavailable = &Error{Code: "DATA_UNAVAILABLE", Message: "fund data unavailable"}
	ErrFundNotFound    = &Error{Code: "FUND_NOT_FOUND", Message: "fund not found"}

	// Report errors
	ErrEmptySeries = &Error{Code: "EMPTY_SERIES", Message: "price series is empty"}

	// Rendering errors
	ErrTemplateNotFound = &Error{Code: "TEMPLATE_NOT_FOUND", Message: "template not found"}
	ErrRender           = &Error{Code: "RENDER_ERROR", Message: "template rendering failed"}

	// Archive errors
	ErrArchiveFailed  = &Error{Code: "ARCHIVE_FAILED", Message: "report archive failed"}
	ErrReportNotFound = &Error{Code: "REPORT_NOT_FOUND", Message: "archived report not found"}

	// API errors
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)

// internal/api/response/response.go
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/fundrep/internal/core"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"-"` // logged, never sent to clients
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// known errors in order of specificity; a fund-not-found error is also a
// data-unavailable error and must be reported as the former
var known = []*core.Error{
	core.ErrFundNotFound,
	core.ErrTemplateNotFound,
	core.ErrReportNotFound,
	core.ErrEmptySeries,
	core.ErrRender,
	core.ErrDataUnavailable,
	core.ErrArchiveFailed,
	core.ErrUnauthorized,
	core.ErrConfigInvalid,
	core.ErrConfigMissing,
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrFundNotFound), errors.Is(err, core.ErrTemplateNotFound),
		errors.Is(err, core.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrDataUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Describe returns the most specific code and message for err. Cause holds
// the full error text for logs and is not serialized.
func Describe(err error) ErrorDetail {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}
	if err == nil {
		return detail
	}

	for _, k := range known {
		if errors.Is(err, k) {
			detail.Code = k.Code
			detail.Message = k.Message
			break
		}
	}
	detail.Cause = err.Error()
	return detail
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Data: data,
		Meta: Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: Describe(err)}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

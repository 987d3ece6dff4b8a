// Package response writes the JSON envelope shared by every API endpoint:
// data is set on success, error on failure, never both.
package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/agentstation/mediathek/pkg/errors"
)

// Response is the envelope.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error describes a failed request. Code is derived from the HTTP status.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// codeOf turns a status into its envelope code: 404 becomes NOT_FOUND.
func codeOf(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusInternalServerError:
		return "INTERNAL_ERROR"
	case http.StatusBadGateway:
		return "UPSTREAM_ERROR"
	}
	text := strings.ToUpper(http.StatusText(status))
	return strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text)
}

func write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK writes data with status 200.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Response{Data: data})
}

// Accepted writes data with status 202.
func Accepted(w http.ResponseWriter, data any) {
	write(w, http.StatusAccepted, Response{Data: data})
}

// Fail writes an error envelope with the given status.
func Fail(w http.ResponseWriter, status int, message, details string) {
	write(w, status, Response{Error: &Error{Code: codeOf(status), Message: message, Details: details}})
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, message, details string) {
	Fail(w, http.StatusBadRequest, message, details)
}

// Unauthorized writes a 401.
func Unauthorized(w http.ResponseWriter, message, details string) {
	Fail(w, http.StatusUnauthorized, message, details)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, message, details string) {
	Fail(w, http.StatusNotFound, message, details)
}

// MethodNotAllowed writes a 405 naming the rejected method.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	Fail(w, http.StatusMethodNotAllowed, "Method not allowed", method+" is not supported here")
}

// Conflict writes a 409.
func Conflict(w http.ResponseWriter, message, details string) {
	Fail(w, http.StatusConflict, message, details)
}

// RateLimited writes a 429.
func RateLimited(w http.ResponseWriter, details string) {
	Fail(w, http.StatusTooManyRequests, "Rate limit exceeded", details)
}

// InternalError writes a 500. err is not exposed to the client.
func InternalError(w http.ResponseWriter, _ error) {
	Fail(w, http.StatusInternalServerError, "Internal server error", "An unexpected error occurred")
}

// ServiceUnavailable writes a 503.
func ServiceUnavailable(w http.ResponseWriter, details string) {
	Fail(w, http.StatusServiceUnavailable, "Service unavailable", details)
}

// ErrorFromType picks the status for err from its type in pkg/errors.
func ErrorFromType(w http.ResponseWriter, err error) {
	var (
		notFound   *errors.NotFoundError
		validation *errors.ValidationError
		upstream   *errors.APIError
	)
	switch {
	case stderrors.As(err, &notFound):
		NotFound(w, notFound.Error(), "")
	case stderrors.As(err, &validation):
		BadRequest(w, validation.Error(), "")
	case errors.IsBusy(err):
		Conflict(w, "Update in progress", "Another catalog update is running")
	case stderrors.As(err, &upstream):
		Fail(w, http.StatusBadGateway, "Show list download failed", upstream.Error())
	default:
		InternalError(w, err)
	}
}

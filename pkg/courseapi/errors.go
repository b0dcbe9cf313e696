package courseapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnexpectedResponse means a 2xx answer whose body did not have the
// expected shape
var ErrUnexpectedResponse = errors.New("unexpected response from course API")

// APIError is a non-2xx answer. Detail is the server's "detail" message
// verbatim, or the operation's default message when there is none.
type APIError struct {
	Op     string
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("course api %s: %s (status %d)", e.Op, e.Detail, e.Status)
}

// Unauthorized reports whether the API rejected the bearer token
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

func newAPIError(op operation, status int, body []byte) *APIError {
	detail := op.defaultMessage

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		// Validation failures carry a list here; only non-empty strings are shown
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil && s != "" {
			detail = s
		}
	}

	return &APIError{Op: op.name, Status: status, Detail: detail}
}

// Message turns any client error into something fit for a flash message.
// API errors yield their detail; other failures yield fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Detail
	case errors.Is(err, ErrUnexpectedResponse):
		return "Unexpected response from server"
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond"
	default:
		return fallback
	}
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

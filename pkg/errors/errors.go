package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the web handlers, the CLI and the services.

var (
	// ErrUnauthorized indicates a missing or unusable session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAccessDenied indicates the session's role does not fit the page
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput indicates a form failed local schema checks
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrParse indicates a malformed token or an unexpected response shape
	ErrParse = errors.New("parse error")
)

// Error is a local failure with a message fit to show the visitor. Kind is
// one of the sentinels above and is what errors.Is matches.
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// UnauthorizedError creates an authorization error carrying a user-facing message
func UnauthorizedError(message string) error {
	if message == "" {
		message = "Please log in to continue"
	}
	return &Error{Kind: ErrUnauthorized, Message: message}
}

// AccessDeniedError creates an access denied error with context
func AccessDeniedError(reason string) error {
	if reason == "" {
		reason = "You do not have access to this page"
	}
	return &Error{Kind: ErrAccessDenied, Message: reason}
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return &Error{Kind: ErrInvalidInput, Field: field, Message: reason}
}

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return &Error{Kind: ErrNotFound, Message: resource + " not found"}
}

// UserMessage returns the visitor-facing message of a local error
func UserMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}

// ParseError wraps a decoding failure
func ParseError(what string, err error) error {
	return fmt.Errorf("%s: %w: %v", what, ErrParse, err)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As, re-exported so callers need only one errors import
func As(err error, target any) bool {
	return errors.As(err, target)
}

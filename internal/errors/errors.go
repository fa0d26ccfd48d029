package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig       = "CONFIG"
	ErrNetwork      = "NETWORK"       // fetch failed or returned a non-2xx status
	ErrEmptyResult  = "EMPTY_RESULT"  // valid response with zero rows
	ErrRenderTarget = "RENDER_TARGET" // view target absent; treated as a no-op
	ErrDecode       = "DECODE"
	ErrTransfer     = "TRANSFER"
	ErrExport       = "EXPORT"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrNetwork code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrNetwork,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewNetwork creates a NetworkError for a request that failed or returned a bad status.
func NewNetwork(endpoint string, status int, cause error) *Error {
	msg := fmt.Sprintf("Request to %s failed", endpoint)
	if status > 0 {
		msg = fmt.Sprintf("Request to %s returned HTTP %d", endpoint, status)
	}
	return &Error{
		Code:       ErrNetwork,
		Message:    msg,
		Suggestion: "Check that the monitoring server is running and reachable",
		Cause:      cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Short returns a single-line form of the error, suitable for toasts and status lines.
func (e *Error) Short() string {
	if e.Cause != nil {
		return e.Message + ": " + firstLine(e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var ccErr *Error
	if errors.As(err, &ccErr) {
		return ccErr.Code == code
	}
	return false
}

// Summary returns a one-line description of any error.
// Structured errors use Short; other errors use their first line.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var ccErr *Error
	if errors.As(err, &ccErr) {
		return ccErr.Short()
	}
	return firstLine(err.Error())
}

func firstLine(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "✗"))
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}

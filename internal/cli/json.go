package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/rileyhilliard/ccdash/internal/errors"
)

// jsonOutputFlag switches status/history to machine-readable output.
var jsonOutputFlag bool

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *JSONError `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ErrCodeUnknown marks errors that aren't structured.
const ErrCodeUnknown = "UNKNOWN"

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data any) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts an error to a JSONError. Structured errors keep their
// code and suggestion.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var ccErr *errors.Error
	if stderrors.As(err, &ccErr) {
		msg := ccErr.Message
		if ccErr.Cause != nil {
			msg += ": " + ccErr.Cause.Error()
		}
		return &JSONError{
			Code:       ccErr.Code,
			Message:    msg,
			Suggestion: ccErr.Suggestion,
		}
	}

	return &JSONError{Code: ErrCodeUnknown, Message: err.Error()}
}

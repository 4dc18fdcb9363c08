package token

import "fmt"

// Code classifies a verification failure
type Code string

const (
	CodeMissing   Code = "MISSING_TOKEN"
	CodeMalformed Code = "MALFORMED"
	CodeExpired   Code = "EXPIRED"
)

// VerifyError is the failure variant of a verification result. Every
// failure carries exactly one Code so callers can branch without
// string matching.
type VerifyError struct {
	Code     Code
	Message  string
	Internal error
}

// Error implements the error interface
func (e *VerifyError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *VerifyError) Unwrap() error {
	return e.Internal
}

func newVerifyError(code Code, message string, internal error) *VerifyError {
	return &VerifyError{
		Code:     code,
		Message:  message,
		Internal: internal,
	}
}

// CodeOf extracts the failure code from a verification error.
// Returns CodeMalformed for errors that did not originate here.
func CodeOf(err error) Code {
	if verr, ok := err.(*VerifyError); ok {
		return verr.Code
	}
	return CodeMalformed
}

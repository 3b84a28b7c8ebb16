package model

import "fmt"

// NoInputError reports that the working directory holds no eligible input record
type NoInputError struct {
	Dir    string
	Prefix string
	Err    error
}

func (e *NoInputError) Error() string {
	msg := fmt.Sprintf("no input record matching %q found in %s", e.Prefix+"*", e.Dir)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *NoInputError) Unwrap() error { return e.Err }

// MalformedInputError reports an input record that is unreadable, is not a JSON
// object, or lacks a required field.
type MalformedInputError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := fmt.Sprintf("malformed input record %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// VerificationServiceError reports that the oracle could not produce a usable verdict:
// unreachable, timed out, non-2xx, or an unreadable response body.
type VerificationServiceError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Attempts   int
	Reason     string
	Err        error
}

func (e *VerificationServiceError) Error() string {
	msg := fmt.Sprintf("verification service %s: %s", e.Endpoint, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *VerificationServiceError) Unwrap() error { return e.Err }

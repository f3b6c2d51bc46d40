// Package errors provides structured error types for macroroute.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the router, pipeline and CLI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Missing pins or resources
//   - UNROUTABLE / PLACEMENT_INFEASIBLE: Routing failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnroutable, "no path from %s to %s", src, dst)
//	if errors.Is(err, errors.ErrCodeUnroutable) {
//	    // dump diagnostics
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidBBox   Code = "INVALID_BBOX"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPin    Code = "INVALID_PIN"

	// Resource not found errors
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodePinNotFound Code = "PIN_NOT_FOUND"

	// Routing errors
	ErrCodeUnroutable          Code = "UNROUTABLE"
	ErrCodePlacementInfeasible Code = "PLACEMENT_INFEASIBLE"
	ErrCodeUnclassifiedPin     Code = "UNCLASSIFIED_PIN"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// UnroutableError names the pair of shapes the path search could not connect.
// It carries an optional diagnostic artifact path written before the pass aborted.
type UnroutableError struct {
	Net        string `json:"net"`
	Source     string `json:"source"`
	Target     string `json:"target"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Error implements the error interface.
func (e *UnroutableError) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("couldn't route from %s to %s (diagnostic: %s)", e.Source, e.Target, e.Diagnostic)
	}
	return fmt.Sprintf("couldn't route from %s to %s", e.Source, e.Target)
}

// Code returns the error code for this error type.
func (e *UnroutableError) Code() Code {
	return ErrCodeUnroutable
}

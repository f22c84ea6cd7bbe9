// Package errors provides structured error types for the starbridge bridge.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the recorder, the interactive renderer and the CLI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Malformed commands or input
//   - UNSUPPORTED_*: Requests outside what a renderer can express
//   - *_FAILED: Export or verification failures
//   - INTERNAL_*: Unexpected internal errors
//
// Recoverable conditions such as an unknown marker token or a missing
// metadata field never surface as errors; they fall back to documented
// defaults. Errors are reserved for caller mistakes and I/O failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidCommand, "sizes has %d entries, want %d", len(s), n)
//	if errors.Is(err, errors.ErrCodeInvalidCommand) {
//	    // reject the call
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeExportFailed, origErr, "write %s", path)
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidCommand Code = "INVALID_COMMAND"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Recording lifecycle errors
	ErrCodeRecordingFinalized Code = "RECORDING_FINALIZED"

	// Rendering errors
	ErrCodeUnsupportedProjection Code = "UNSUPPORTED_PROJECTION"
	ErrCodeBudgetExceeded        Code = "BUDGET_EXCEEDED"
	ErrCodeExportFailed          Code = "EXPORT_FAILED"

	// Verification errors
	ErrCodeConsistencyFailed Code = "CONSISTENCY_FAILED"
	ErrCodeStructureMismatch Code = "STRUCTURE_MISMATCH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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

// LengthMismatchError describes a parallel array whose length disagrees with
// the element count of the command it belongs to.
type LengthMismatchError struct {
	Field string
	Got   int
	Want  int
}

// Error implements the error interface.
func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s has %d entries, want %d", e.Field, e.Got, e.Want)
}

// Code returns the error code for this error type.
func (e *LengthMismatchError) Code() Code {
	return ErrCodeInvalidCommand
}

// Mismatch wraps a LengthMismatchError in an INVALID_COMMAND error.
func Mismatch(kind, field string, got, want int) *Error {
	return Wrap(ErrCodeInvalidCommand, &LengthMismatchError{Field: field, Got: got, Want: want}, "%s command", kind)
}

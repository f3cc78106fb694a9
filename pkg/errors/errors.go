// Package errors provides structured error handling for docframe.
//
// The read path surfaces exactly one error kind to callers, ErrorTypeCompute,
// carrying a human readable message and the underlying cause. Per-value
// coercion failures never reach this package: they become nulls in the data.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeCompute is the generic error surfaced by a read: option parsing,
	// sample/stream retrieval and finalization failures all use it.
	ErrorTypeCompute ErrorType = "compute"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// Compute creates a compute error.
func Compute(message string) *Error {
	return &Error{
		Type:    ErrorTypeCompute,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Computef creates a compute error with a formatted message.
func Computef(format string, args ...interface{}) *Error {
	return &Error{
		Type:    ErrorTypeCompute,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// WrapCompute wraps err as a compute error. It returns nil for a nil err.
func WrapCompute(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, ErrorTypeCompute, message)
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// IsCompute reports whether err carries a compute error anywhere in its chain.
func IsCompute(err error) bool {
	return IsType(err, ErrorTypeCompute)
}

// Is and As re-export the standard library helpers so callers importing this
// package under the name "errors" keep access to them.
var (
	Is = errors.Is
	As = errors.As
)

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}

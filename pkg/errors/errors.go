// Package errors provides structured error handling for catqa.
// Errors carry codes for programmatic handling, context key-values,
// and a captured stack trace.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Code identifies an error class for programmatic handling.
type Code string

const (
	// Input errors (1xx)
	CodeFileNotFound  Code = "E101"
	CodeInvalidFormat Code = "E102"
	CodeMissingColumn Code = "E103"
	CodeEmptyDataset  Code = "E104"
	CodeParseFailed   Code = "E105"

	// Analysis errors (2xx)
	CodeInsufficientData Code = "E201"
	CodeConfiguration    Code = "E202"
	CodeAnalysisFailed   Code = "E203"

	// Output errors (3xx)
	CodeExportFailed Code = "E301"

	// Unknown
	CodeUnknown Code = "E999"
)

// CatQAError is the base error type for all catqa errors.
type CatQAError struct {
	Code       Code
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace []Frame
}

// Frame represents a stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *CatQAError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *CatQAError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code.
func (e *CatQAError) Is(target error) bool {
	if t, ok := target.(*CatQAError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds a context key-value to the error.
func (e *CatQAError) WithContext(key string, value interface{}) *CatQAError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new CatQAError.
func New(code Code, message string) *CatQAError {
	return &CatQAError{
		Code:       code,
		Message:    message,
		StackTrace: captureStack(2),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code Code, message string) *CatQAError {
	if err == nil {
		return nil
	}

	return &CatQAError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStack(2),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *CatQAError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// captureStack captures the current stack trace.
func captureStack(skip int) []Frame {
	var frames []Frame
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	pcs = pcs[:n]

	cf := runtime.CallersFrames(pcs)
	for {
		frame, more := cf.Next()
		frames = append(frames, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more || len(frames) >= 10 {
			break
		}
	}
	return frames
}

// FormatStack returns a formatted stack trace.
func (e *CatQAError) FormatStack() string {
	var sb strings.Builder
	for _, f := range e.StackTrace {
		sb.WriteString(fmt.Sprintf("  at %s\n    %s:%d\n", f.Function, f.File, f.Line))
	}
	return sb.String()
}

// --- Convenience constructors ---

// FileNotFound creates a file not found error.
func FileNotFound(path string) *CatQAError {
	return New(CodeFileNotFound, "file not found").WithContext("path", path)
}

// MissingColumn reports a required column absent from the dataset.
// This is fatal: the analysis run aborts without a partial result.
func MissingColumn(column string, available []string) *CatQAError {
	return New(CodeMissingColumn, "required column not found").
		WithContext("column", column).
		WithContext("available", available)
}

// EmptyDataset reports a dataset with no rows or no columns.
func EmptyDataset() *CatQAError {
	return New(CodeEmptyDataset, "dataset has no rows")
}

// InsufficientData reports a code column with zero usable rows. Non-fatal:
// the column is marked insufficient_data and the run continues.
func InsufficientData(column string) *CatQAError {
	return New(CodeInsufficientData, "no usable rows for column").
		WithContext("column", column)
}

// Configuration reports an invalid configuration value.
func Configuration(message string) *CatQAError {
	return New(CodeConfiguration, message)
}

// --- Error checking utilities ---

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	var qaErr *CatQAError
	if errors.As(err, &qaErr) {
		return qaErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var qaErr *CatQAError
	if errors.As(err, &qaErr) {
		return qaErr.Code
	}
	return CodeUnknown
}

// IsFatal reports whether an error must abort the whole analysis rather
// than degrade a single sub-result.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeMissingColumn, CodeEmptyDataset, CodeConfiguration:
		return true
	default:
		return false
	}
}

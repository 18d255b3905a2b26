// Package errors provides error types and utilities for the codeassist packages.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeCache represents cache-specific errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeWorkspace represents workspace and file access errors
	ErrorTypeWorkspace ErrorType = "workspace"
	// ErrorTypeTrigger represents completion trigger errors
	ErrorTypeTrigger ErrorType = "trigger"
	// ErrorTypeSearch represents search errors
	ErrorTypeSearch ErrorType = "search"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Common error values
var (
	// Cache errors
	ErrClosed      = errors.New("store is closed")
	ErrKeyNotFound = errors.New("key not found")

	// Workspace errors
	ErrFileNotFound   = errors.New("file not found")
	ErrNotADirectory  = errors.New("not a directory")
	ErrFileTooLarge   = errors.New("file exceeds size bound")
	ErrNoWorkspace    = errors.New("no workspace folder")
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// Trigger errors
	ErrNoActiveDocument = errors.New("no active document")
	ErrRequestInFlight  = errors.New("request already in flight")
	ErrCancelled        = errors.New("request cancelled")
	ErrBackendFailure   = errors.New("completion backend failed")
	ErrEmptySuggestion  = errors.New("backend returned no usable suggestion")

	// Search errors
	ErrBadRegex = errors.New("query is not a valid regular expression")

	// Config errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// AssistError represents a failed operation with its context
type AssistError struct {
	Op      string
	Key     any
	Err     error
	ErrType ErrorType
}

// determineErrorType determines the error type based on the error
func determineErrorType(err error) ErrorType {
	switch {
	case errors.Is(err, ErrClosed) || errors.Is(err, ErrKeyNotFound):
		return ErrorTypeCache
	case errors.Is(err, ErrFileNotFound) || errors.Is(err, ErrNotADirectory) ||
		errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrNoWorkspace) ||
		errors.Is(err, ErrInvalidPattern):
		return ErrorTypeWorkspace
	case errors.Is(err, ErrNoActiveDocument) || errors.Is(err, ErrRequestInFlight) ||
		errors.Is(err, ErrCancelled) || errors.Is(err, ErrBackendFailure) ||
		errors.Is(err, ErrEmptySuggestion):
		return ErrorTypeTrigger
	case errors.Is(err, ErrBadRegex):
		return ErrorTypeSearch
	case errors.Is(err, ErrInvalidConfig):
		return ErrorTypeConfig
	default:
		return ErrorTypeWorkspace
	}
}

// Error implements the error interface
func (e *AssistError) Error() string {
	if e.Key != nil {
		return fmt.Sprintf("%s: %s: key=%v: %v", e.ErrType, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.ErrType, e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *AssistError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches the receiver
func (e *AssistError) Is(target error) bool {
	t, ok := target.(*AssistError)
	if !ok {
		return false
	}
	return e.ErrType == t.ErrType && e.Op == t.Op && errors.Is(e.Err, t.Err)
}

// New creates a new AssistError with an explicit type
func New(errType ErrorType, op string, key any, err error) error {
	return &AssistError{
		ErrType: errType,
		Op:      op,
		Key:     key,
		Err:     err,
	}
}

// Wrap wraps an error with operation context, deriving its type
func Wrap(op string, key any, err error) error {
	if err == nil {
		return nil
	}
	return New(determineErrorType(err), op, key, err)
}

// IsAssistError checks if an error is an AssistError
func IsAssistError(err error) bool {
	var ae *AssistError
	return errors.As(err, &ae)
}

// GetAssistError returns the AssistError if the error is one
func GetAssistError(err error) *AssistError {
	var ae *AssistError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if ae := GetAssistError(err); ae != nil {
		return ae.ErrType == errType
	}
	return false
}

// IsKeyNotFound checks if the error is a key not found error
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// IsCancelled checks if the error is a cancellation
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsInFlight checks if the error is a single-flight refusal
func IsInFlight(err error) bool {
	return errors.Is(err, ErrRequestInFlight)
}

// IsClosed checks if the error is a closed-store error
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

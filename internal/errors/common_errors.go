package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeClassification ErrorType = "CLASSIFICATION"
	ErrTypeMissingBase    ErrorType = "MISSING_BASE"
	ErrTypeParsing        ErrorType = "PARSING"
	ErrTypeJoinConflict   ErrorType = "JOIN_CONFLICT"
	ErrTypeStorage        ErrorType = "STORAGE"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeConfig         ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := e.Message
	if path, ok := e.Context["path"].(string); ok && path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogAttrs returns the error context as key/value pairs suitable for slog, sorted by key
func (e *AppError) LogAttrs() []any {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, 2*len(keys)+2)
	attrs = append(attrs, "error_type", string(e.Type))
	for _, k := range keys {
		attrs = append(attrs, k, e.Context[k])
	}
	return attrs
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether any error in err's chain is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Type == errType {
			return true
		}
		return IsType(appErr.Cause, errType)
	}
	return false
}

// TypeOf returns the type of the outermost AppError in err's chain, or
// "UNKNOWN" when there is none
func TypeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return string(appErr.Type)
	}
	return "UNKNOWN"
}

// Helper functions for common error types

// NewClassificationConflict reports two files that resolve to the same identity
func NewClassificationConflict(identity, firstPath, secondPath string) *AppError {
	return NewAppError(ErrTypeClassification,
		fmt.Sprintf("files %s and %s both classify as %s", firstPath, secondPath, identity), nil).
		WithContext("identity", identity).
		WithContext("paths", []string{firstPath, secondPath})
}

// NewClassificationError reports a file name that cannot be classified
func NewClassificationError(path, message string) *AppError {
	return NewAppError(ErrTypeClassification, message, nil).WithContext("path", path)
}

// NewMissingBaseError reports continuation files without a part 0 counterpart
func NewMissingBaseError(group string, paths []string) *AppError {
	return NewAppError(ErrTypeMissingBase,
		fmt.Sprintf("continuation files without base file for %s: %s", group, strings.Join(paths, ", ")), nil).
		WithContext("group", group).
		WithContext("paths", paths)
}

// NewParsingError creates a parsing-related error for one file
func NewParsingError(path, message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause).WithContext("path", path)
}

// NewStorageError creates a read/write failure error for one path
func NewStorageError(path, message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause).WithContext("path", path)
}

// NewJoinConflictError summarises join conflicts of one resolution. It is used as a
// warning value and never aborts a run.
func NewJoinConflictError(resolution string, count int) *AppError {
	return NewAppError(ErrTypeJoinConflict,
		fmt.Sprintf("%d conflicting values while joining %s data, first source kept", count, resolution), nil).
		WithContext("resolution", resolution).
		WithContext("conflicts", count)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "classification", errType: ErrTypeClassification, expected: "CLASSIFICATION"},
		{name: "missing base", errType: ErrTypeMissingBase, expected: "MISSING_BASE"},
		{name: "parsing", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "join conflict", errType: ErrTypeJoinConflict, expected: "JOIN_CONFLICT"},
		{name: "storage", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "config", errType: ErrTypeConfig, expected: "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "message only",
			err:      NewAppValidationError("no input"),
			expected: "[VALIDATION] no input",
		},
		{
			name:     "with cause",
			err:      NewConfigError("bad file", fmt.Errorf("boom")),
			expected: "[CONFIG] bad file: boom",
		},
		{
			name:     "with path",
			err:      NewParsingError("/data/a.csv", "no header row", nil),
			expected: "[PARSING] no header row (/data/a.csv)",
		},
		{
			name:     "with path and cause",
			err:      NewStorageError("/out/x.csv", "write failed", fmt.Errorf("disk full")),
			expected: "[STORAGE] write failed (/out/x.csv): disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewStorageError("/tmp/x", "read failed", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("stage failed: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeParsing, Message: "x"}
	err.WithContext("line", 12).WithContext("column", "Kraft")

	assert.Equal(t, 12, err.Context["line"])
	assert.Equal(t, "Kraft", err.Context["column"])
}

func TestAppError_LogAttrs(t *testing.T) {
	err := NewParsingError("/data/a.csv", "bad", nil).WithContext("line", 7)

	attrs := err.LogAttrs()
	assert.Equal(t, []any{"error_type", "PARSING", "line", 7, "path", "/data/a.csv"}, attrs)
}

func TestIsType(t *testing.T) {
	inner := NewParsingError("/a.csv", "bad header", nil)
	outer := NewAppError(ErrTypeValidation, "experiment rejected", inner)

	tests := []struct {
		name     string
		err      error
		errType  ErrorType
		expected bool
	}{
		{name: "direct match", err: inner, errType: ErrTypeParsing, expected: true},
		{name: "outer match", err: outer, errType: ErrTypeValidation, expected: true},
		{name: "match in cause chain", err: outer, errType: ErrTypeParsing, expected: true},
		{name: "through fmt wrapping", err: fmt.Errorf("run: %w", outer), errType: ErrTypeParsing, expected: true},
		{name: "no match", err: outer, errType: ErrTypeStorage, expected: false},
		{name: "plain error", err: fmt.Errorf("plain"), errType: ErrTypeParsing, expected: false},
		{name: "nil", err: nil, errType: ErrTypeParsing, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsType(tt.err, tt.errType))
		})
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, "MISSING_BASE", TypeOf(NewMissingBaseError("E1/minutes", []string{"a_1.csv"})))
	assert.Equal(t, "STORAGE", TypeOf(fmt.Errorf("wrap: %w", NewStorageError("/x", "m", nil))))
	assert.Equal(t, "UNKNOWN", TypeOf(fmt.Errorf("plain")))
}

func TestHelperConstructors(t *testing.T) {
	t.Run("classification conflict", func(t *testing.T) {
		err := NewClassificationConflict("E1/minutes/part0", "/in/E1/a.csv", "/in/E1/b.csv")
		assert.Equal(t, ErrTypeClassification, err.Type)
		assert.Contains(t, err.Message, "/in/E1/a.csv")
		assert.Contains(t, err.Message, "/in/E1/b.csv")
		assert.Equal(t, "E1/minutes/part0", err.Context["identity"])
	})

	t.Run("classification error", func(t *testing.T) {
		err := NewClassificationError("/in/E1/x.csv", "multiple resolution markers")
		assert.Equal(t, ErrTypeClassification, err.Type)
		assert.Equal(t, "/in/E1/x.csv", err.Context["path"])
	})

	t.Run("missing base", func(t *testing.T) {
		paths := []string{"/in/E1/a_minuten_1.csv", "/in/E1/a_minuten_2.csv"}
		err := NewMissingBaseError("E1/minutes", paths)
		assert.Equal(t, ErrTypeMissingBase, err.Type)
		assert.Equal(t, paths, err.Context["paths"])
		assert.Contains(t, err.Error(), "a_minuten_2.csv")
	})

	t.Run("join conflict", func(t *testing.T) {
		err := NewJoinConflictError("seconds", 3)
		assert.Equal(t, ErrTypeJoinConflict, err.Type)
		assert.Equal(t, 3, err.Context["conflicts"])
		assert.Contains(t, err.Message, "3 conflicting values")
	})
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeSpanOutOfRange, "row %d outside grid", 4)

	if err.Code != ErrCodeSpanOutOfRange {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeSpanOutOfRange)
	}

	if err.Message != "row 4 outside grid" {
		t.Errorf("Message = %v, want %v", err.Message, "row 4 outside grid")
	}

	expected := "SPAN_OUT_OF_RANGE: row 4 outside grid"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidInput, cause, "failed to read scene")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "INVALID_INPUT: failed to read scene: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeCycleDetected, "test"),
			code:     ErrCodeCycleDetected,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeCycleDetected, "test"),
			code:     ErrCodeTrackNotEmpty,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInvalidInput, New(ErrCodeNoParentScene, "inner"), "outer"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("dispatch: %w", New(ErrCodeCellOccupied, "inner")),
			code:     ErrCodeCellOccupied,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeUnknownRecipe, "test"),
			expected: ErrCodeUnknownRecipe,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	tests := []struct {
		code       Code
		category   Category
		structural bool
		ambiguous  bool
	}{
		{ErrCodeCycleDetected, CategoryStructural, true, false},
		{ErrCodeSpanOutOfRange, CategoryStructural, true, false},
		{ErrCodeTrackNotEmpty, CategoryStructural, true, false},
		{ErrCodeNoParentScene, CategoryAmbiguousTarget, false, true},
		{ErrCodeCellOccupied, CategoryAmbiguousTarget, false, true},
		{ErrCodeInvalidInput, CategoryInput, false, false},
		{ErrCodeInternal, CategoryInternal, false, false},
		{Code("SOMETHING_ELSE"), CategoryUnknown, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "x")
			if got := err.Category(); got != tt.category {
				t.Errorf("Category() = %v, want %v", got, tt.category)
			}
			if got := IsStructural(err); got != tt.structural {
				t.Errorf("IsStructural() = %v, want %v", got, tt.structural)
			}
			if got := IsAmbiguousTarget(err); got != tt.ambiguous {
				t.Errorf("IsAmbiguousTarget() = %v, want %v", got, tt.ambiguous)
			}
		})
	}
}

func TestCategoryString(t *testing.T) {
	if got := CategoryStructural.String(); got != "structural" {
		t.Errorf("String() = %q, want %q", got, "structural")
	}
	if got := CategoryAmbiguousTarget.String(); got != "ambiguous-target" {
		t.Errorf("String() = %q, want %q", got, "ambiguous-target")
	}
	if got := Category(99).String(); got != "unknown" {
		t.Errorf("String() = %q, want %q", got, "unknown")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

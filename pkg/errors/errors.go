// Package errors provides structured error types for scenegrid.
//
// Every failure in the layout core is a deterministic function of the tree
// state and the call arguments, so none of these errors is ever retried.
// Codes fall into four categories:
//   - Structural: the caller misused the grid tree (cycles, spans, tracks)
//   - AmbiguousTarget: a drawing call could not decide where to draw
//   - Input: bad arguments or files at the edges (CLI, scene files, HTTP)
//   - Internal: unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSpanOutOfRange, "row %d outside %d rows", row, n)
//	if errors.IsStructural(err) {
//	    // programming mistake, surface to the caller
//	}
//
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read scene %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors
	ErrCodeCycleDetected   Code = "CYCLE_DETECTED"
	ErrCodeSpanOutOfRange  Code = "SPAN_OUT_OF_RANGE"
	ErrCodeTrackNotEmpty   Code = "TRACK_NOT_EMPTY"
	ErrCodeRootAlreadySet  Code = "ROOT_ALREADY_SET"
	ErrCodeElementNotFound Code = "ELEMENT_NOT_FOUND"

	// Ambiguous target errors
	ErrCodeNoParentScene   Code = "NO_PARENT_SCENE"
	ErrCodeCellOccupied    Code = "CELL_OCCUPIED_BY_INCOMPATIBLE_TYPE"
	ErrCodeAmbiguousTarget Code = "AMBIGUOUS_TARGET"
	ErrCodeForeignGrid     Code = "FOREIGN_GRID"

	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeUnknownRecipe Code = "UNKNOWN_RECIPE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Category groups codes by how a caller is expected to react.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryStructural
	CategoryAmbiguousTarget
	CategoryInput
	CategoryInternal
)

var categories = map[Code]Category{
	ErrCodeCycleDetected:   CategoryStructural,
	ErrCodeSpanOutOfRange:  CategoryStructural,
	ErrCodeTrackNotEmpty:   CategoryStructural,
	ErrCodeRootAlreadySet:  CategoryStructural,
	ErrCodeElementNotFound: CategoryStructural,

	ErrCodeNoParentScene:   CategoryAmbiguousTarget,
	ErrCodeCellOccupied:    CategoryAmbiguousTarget,
	ErrCodeAmbiguousTarget: CategoryAmbiguousTarget,
	ErrCodeForeignGrid:     CategoryAmbiguousTarget,

	ErrCodeInvalidInput:  CategoryInput,
	ErrCodeUnknownRecipe: CategoryInput,
	ErrCodeInvalidFormat: CategoryInput,
	ErrCodeFileNotFound:  CategoryInput,

	ErrCodeInternal: CategoryInternal,
}

// String returns a lowercase name for the category.
func (c Category) String() string {
	switch c {
	case CategoryStructural:
		return "structural"
	case CategoryAmbiguousTarget:
		return "ambiguous-target"
	case CategoryInput:
		return "input"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// CategoryOf returns the category a code belongs to.
func CategoryOf(code Code) Category {
	return categories[code]
}

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

// Category returns the category of the error's code.
func (e *Error) Category() Category {
	return CategoryOf(e.Code)
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

// IsStructural reports whether err signals a misuse of the grid tree.
func IsStructural(err error) bool {
	return CategoryOf(GetCode(err)) == CategoryStructural
}

// IsAmbiguousTarget reports whether err can be resolved by passing a more
// explicit drawing target.
func IsAmbiguousTarget(err error) bool {
	return CategoryOf(GetCode(err)) == CategoryAmbiguousTarget
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

package errors

import (
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidateSize validates a scene or element size.
// Both dimensions must be finite and strictly positive.
func ValidateSize(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "size must be finite, got %vx%v", width, height)
		}
		if v <= 0 {
			return New(ErrCodeInvalidInput, "size must be positive, got %vx%v", width, height)
		}
	}
	return nil
}

// ValidateSpan validates a cell span against a grid with the given track counts.
//
// Validation rules:
//   - row and col are zero-based and non-negative
//   - rowSpan and colSpan cover at least one track
//   - the span ends inside the current track counts
func ValidateSpan(row, col, rowSpan, colSpan, rows, cols int) error {
	if rowSpan < 1 || colSpan < 1 {
		return New(ErrCodeSpanOutOfRange, "span %dx%d must cover at least one track", rowSpan, colSpan)
	}
	if row < 0 || col < 0 {
		return New(ErrCodeSpanOutOfRange, "cell (%d,%d) has a negative index", row, col)
	}
	if row+rowSpan > rows {
		return New(ErrCodeSpanOutOfRange, "rows %d..%d outside %d rows", row, row+rowSpan-1, rows)
	}
	if col+colSpan > cols {
		return New(ErrCodeSpanOutOfRange, "columns %d..%d outside %d columns", col, col+colSpan-1, cols)
	}
	return nil
}

// sceneExtensions lists the file extensions accepted for scene descriptions.
var sceneExtensions = map[string]bool{
	".toml": true,
	".yaml": true,
	".yml":  true,
}

// ValidateSceneFilename validates a scene description filename.
// It must be a plain basename with a supported extension.
func ValidateSceneFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "scene filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "scene filename cannot contain path separators")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "scene filename contains invalid control characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !sceneExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported scene file extension %q (want .toml, .yaml or .yml)", ext)
	}

	return nil
}

// recipeNameRegex matches registry names such as "lines" or "heat-map_2".
var recipeNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateRecipeName validates a recipe registry name.
func ValidateRecipeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "recipe name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "recipe name too long (max 64 characters)")
	}

	if !recipeNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid recipe name: %q", name)
	}

	return nil
}

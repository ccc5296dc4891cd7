package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// maxNameLength bounds node names so a single label cannot blow up text
// measurement or the rendered document.
const maxNameLength = 1024

// ValidateNodeName validates the name of a cause-tree entry.
//
// The only hard requirement of the layout is that every node is named; the
// remaining rules keep labels renderable:
//   - No empty or whitespace-only names
//   - No control characters (newlines included)
//   - Maximum length of 1024 bytes
//
// path identifies the node in error messages (e.g. "root.children[1]").
func ValidateNodeName(path, name string) error {
	if strings.TrimSpace(name) == "" {
		return Validation("%s: node has no name", path)
	}

	if len(name) > maxNameLength {
		return Validation("%s: name too long (max %d characters)", path, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return Validation("%s: name contains control characters", path)
		}
	}

	return nil
}

// ValidateViewport checks that a viewport has finite, positive dimensions.
func ValidateViewport(width, height float64) error {
	if !isFinitePositive(width) || !isFinitePositive(height) {
		return Configuration("viewport must have positive dimensions, got %gx%g", width, height)
	}
	return nil
}

// ValidateMargin checks that the layout margin fits inside the viewport.
func ValidateMargin(margin, width, height float64) error {
	if margin < 0 || math.IsNaN(margin) {
		return Configuration("margin must not be negative, got %g", margin)
	}
	if 2*margin >= width || 2*margin >= height {
		return Configuration("margin %g leaves no room in a %gx%g viewport", margin, width, height)
	}
	return nil
}

// ValidateOutputPath validates a user-supplied output path.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}

	return nil
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

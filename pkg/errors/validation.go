package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateRunID validates a run identifier. Run ids are UUIDs generated by
// the run store; anything else is rejected before it reaches a query.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidRunID, "run id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidRunID, err, "invalid run id %q", id)
	}
	return nil
}

// ValidatePath validates an output or database file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//
// Absolute paths are allowed; the CLI writes wherever the user points it.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

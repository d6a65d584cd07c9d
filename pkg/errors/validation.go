package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxStepIDLength bounds step identifiers accepted in plans.
const MaxStepIDLength = 128

// stepIDRegex matches identifiers usable as DOT node names and cache keys.
var stepIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:/-]*$`)

// ValidateStepID validates a plan step identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or whitespace
//   - Must start with a letter or digit
//   - Only letters, digits and . _ : / - afterwards
//   - Maximum length of MaxStepIDLength characters
func ValidateStepID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidStep, "step id cannot be empty")
	}

	if len(id) > MaxStepIDLength {
		return New(ErrCodeInvalidStep, "step id too long (max %d characters)", MaxStepIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidStep, "step id %q contains whitespace or control characters", id)
		}
	}

	if !stepIDRegex.MatchString(id) {
		return New(ErrCodeInvalidStep, "invalid step id: %q", id)
	}

	return nil
}

// ValidatePath validates a plan file path for safety.
// It prevents control characters and keeps paths to a reasonable length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateFormat checks that format is one of the allowed names.
// The comparison is case-insensitive.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(format, a) {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}

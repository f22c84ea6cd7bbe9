package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateGroupID validates a layer group identifier.
//
// Group ids end up as SVG class names, legend keys and cache key parts, so
// the rules are conservative:
//   - No empty ids
//   - No whitespace or control characters
//   - No quotes or angle brackets
//   - Maximum length of 128 characters
func ValidateGroupID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCommand, "group id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidCommand, "group id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidCommand, "group id %q contains whitespace or control characters", id)
		}
	}

	if strings.ContainsAny(id, `"'<>&`) {
		return New(ErrCodeInvalidCommand, "group id %q contains markup characters", id)
	}

	return nil
}

// ValidateOutputPath validates a destination path for an exported artifact.
// The parent directory is not checked for existence; that failure surfaces
// from the write itself as EXPORT_FAILED.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' {
			return New(ErrCodeInvalidPath, "output path contains null bytes")
		}
	}

	if strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path %q is a directory", path)
	}

	return nil
}

// ValidateExtension checks that path ends in one of the allowed extensions
// (compared case-insensitively, including the leading dot).
func ValidateExtension(path string, allowed ...string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported file extension %q (want one of %s)", ext, strings.Join(allowed, ", "))
}

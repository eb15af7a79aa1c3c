package application

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "sourcePath" -> "source path")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"sourcePath":   "source path",
		"serial":       "drive serial number",
		"relativePath": "relative path",
		"algorithm":    "hash algorithm",
		"exclude":      "exclude pattern",
		"path":         "path",
		"pathA":        "first path",
		"pathB":        "second path",
		"runID":        "run ID",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateExcludes checks that every exclude pattern is a valid glob
func ValidateExcludes(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return &ValidationError{
				Field:   "exclude",
				Message: fmt.Sprintf("invalid %s: %q", formatFieldName("exclude"), p),
			}
		}
	}
	return nil
}

// ValidateRelativePath rejects subpaths that would escape the drive root
func ValidateRelativePath(rel string) error {
	if rel == "" {
		return nil
	}
	clean := strings.ReplaceAll(rel, "\\", "/")
	if strings.HasPrefix(clean, "/") {
		return &ValidationError{
			Field:   "relativePath",
			Message: fmt.Sprintf("%s must not be absolute: %s", formatFieldName("relativePath"), rel),
		}
	}
	for _, part := range strings.Split(clean, "/") {
		if part == ".." {
			return &ValidationError{
				Field:   "relativePath",
				Message: fmt.Sprintf("%s must stay under the drive root: %s", formatFieldName("relativePath"), rel),
			}
		}
	}
	return nil
}

package middleware

import (
	"fmt"
	"strings"
)

// Input validation and sanitization utilities

// MaxInputBytes caps the analysis text so a single request cannot blow the
// provider's context window or the request log.
const MaxInputBytes = 32 * 1024

// ValidateInput checks the caller-supplied analysis text.
func ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input text cannot be empty")
	}
	if len(input) > MaxInputBytes {
		return fmt.Errorf("input text exceeds %d bytes", MaxInputBytes)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidatePage normalizes the page query parameter
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// ValidatePageSize normalizes the page_size query parameter
func ValidatePageSize(size int) int {
	if size <= 0 {
		return 20 // default
	}
	if size > 100 {
		return 100 // max
	}
	return size
}

package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateInput(t *testing.T) {
	assert.NoError(t, ValidateInput("some decision data"))
	assert.Error(t, ValidateInput(""))
	assert.Error(t, ValidateInput("   \n\t "))
	assert.Error(t, ValidateInput(strings.Repeat("x", MaxInputBytes+1)))
	assert.NoError(t, ValidateInput(strings.Repeat("x", MaxInputBytes)))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("hello\x00"))
	assert.Equal(t, "a\tb\nc", SanitizeString("a\tb\nc"))
	assert.Equal(t, "ab", SanitizeString("\x01a\x02b\x03"))
	assert.Equal(t, "trimmed", SanitizeString("  trimmed \n"))
}

func TestValidatePage(t *testing.T) {
	assert.Equal(t, 1, ValidatePage(0))
	assert.Equal(t, 1, ValidatePage(-5))
	assert.Equal(t, 3, ValidatePage(3))
}

func TestValidatePageSize(t *testing.T) {
	assert.Equal(t, 20, ValidatePageSize(0))
	assert.Equal(t, 20, ValidatePageSize(-1))
	assert.Equal(t, 50, ValidatePageSize(50))
	assert.Equal(t, 100, ValidatePageSize(500))
}

package backend

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxInputLength caps query length to prevent abuse.
const MaxInputLength = 2000

// ValidateInput sanitizes user input before it is sent to a backend. It
// rejects NUL bytes and over-long input, and strips control characters other
// than newlines, carriage returns and tabs.
func ValidateInput(text string) (string, error) {
	if strings.ContainsRune(text, 0) {
		return "", fmt.Errorf("input contains null bytes")
	}

	if len(text) > MaxInputLength {
		return "", fmt.Errorf("input too long (max %d characters, got %d)", MaxInputLength, len(text))
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(b.String()), nil
}

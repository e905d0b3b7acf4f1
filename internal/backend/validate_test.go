package backend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputRejectsNullBytes(t *testing.T) {
	_, err := ValidateInput("list\x00files")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null bytes")
}

func TestValidateInputRejectsOverlongInput(t *testing.T) {
	_, err := ValidateInput(strings.Repeat("a", MaxInputLength+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")
}

func TestValidateInputAcceptsMaxLength(t *testing.T) {
	input := strings.Repeat("a", MaxInputLength)
	out, err := ValidateInput(input)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestValidateInputStripsControlCharacters(t *testing.T) {
	out, err := ValidateInput("list\x1b[31m files\x07")
	require.NoError(t, err)
	assert.Equal(t, "list[31m files", out)
}

func TestValidateInputKeepsCommonWhitespace(t *testing.T) {
	out, err := ValidateInput("line one\n\tline two\r")
	require.NoError(t, err)
	assert.Equal(t, "line one\n\tline two", out)
}

func TestValidateInputTrimsSurroundingSpace(t *testing.T) {
	out, err := ValidateInput("  list files  ")
	require.NoError(t, err)
	assert.Equal(t, "list files", out)
}

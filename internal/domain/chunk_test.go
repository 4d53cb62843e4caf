package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "hello world", "hello world"},
		{"collapses runs", "hello   world", "hello world"},
		{"newlines and tabs", "hello\n\tworld\r\n", "hello world"},
		{"leading and trailing", "  hello world  ", "hello world"},
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeWhitespace(tt.input))
		})
	}
}

func TestHashContent_StableAcrossFormatting(t *testing.T) {
	a := HashContent("The quick brown fox")
	b := HashContent("The  quick\nbrown\tfox")
	c := HashContent("The quick brown dog")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("a", 100)))
	assert.Equal(t, 2, EstimateTokens(strings.Repeat("日", 8)))
}

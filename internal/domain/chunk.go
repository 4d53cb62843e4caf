package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Chunk represents a contiguous slice of a document's text. StartOffset and
// EndOffset are rune offsets into the normalized document text; EndOffset is
// exclusive.
type Chunk struct {
	DocumentID    string
	SequenceIndex int
	Content       string
	ContentHash   string
	StartOffset   int
	EndOffset     int
	TokenEstimate int
}

// NormalizeWhitespace collapses runs of whitespace into single spaces and
// trims the result. Used for content hashing so that formatting-only changes
// do not invalidate cached embeddings.
func NormalizeWhitespace(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}

	return b.String()
}

// HashContent returns the hex-encoded sha256 of the whitespace-normalized
// text. Two chunks with the same hash embed to the same vector under the
// same model.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(NormalizeWhitespace(text)))
	return hex.EncodeToString(sum[:])
}

// EstimateTokens approximates the token count of text as one token per four
// runes. Good enough for budgeting prompts without a tokenizer dependency.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / 4
	if est == 0 {
		est = 1
	}
	return est
}

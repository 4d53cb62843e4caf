package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/docsense-ai/docsense/internal/domain"
)

// ChunkConfig controls how document text is split for embedding.
type ChunkConfig struct {
	MaxChars  int
	MinChars  int
	Overlap   int
	MaxChunks int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars:  1000,
		MinChars:  200,
		Overlap:   150,
		MaxChunks: 100,
	}
}

// boundarySeparators is the cut preference order: paragraph break, line
// break, sentence end, clause end, word break. Hard cut when none match.
var boundarySeparators = []string{"\n\n", "\n", ". ", ", ", " "}

type chunkSpan struct {
	Text  string
	Start int
	End   int
}

// ChunkDocument splits text into overlapping chunks with rune offsets into
// the original text and a content hash per chunk.
func ChunkDocument(documentID, text string, cfg ChunkConfig) []domain.Chunk {
	spans := chunkSpans(text, cfg)
	chunks := make([]domain.Chunk, len(spans))
	for i, sp := range spans {
		chunks[i] = domain.Chunk{
			DocumentID:    documentID,
			SequenceIndex: i,
			Content:       sp.Text,
			ContentHash:   domain.HashContent(sp.Text),
			StartOffset:   sp.Start,
			EndOffset:     sp.End,
			TokenEstimate: domain.EstimateTokens(sp.Text),
		}
	}
	return chunks
}

func chunkSpans(text string, cfg ChunkConfig) []chunkSpan {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}

	runes := []rune(text)
	spans := make([]chunkSpan, 0, 8)
	start := 0

	for start < len(runes) {
		if cfg.MaxChunks > 0 && len(spans) >= cfg.MaxChunks {
			break
		}

		// Skip leading whitespace so offsets point at content.
		for start < len(runes) && unicode.IsSpace(runes[start]) {
			start++
		}
		if start >= len(runes) {
			break
		}

		end := start + cfg.MaxChars
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			minCut := start + cfg.MinChars
			if minCut >= end {
				minCut = start
			}
			if cut, ok := boundaryCut(runes, minCut, end); ok {
				end = cut
			}
		}

		if sp, ok := trimmedSpan(runes, start, end); ok {
			spans = append(spans, sp)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end
		if cfg.Overlap > 0 && end-start > cfg.Overlap {
			nextStart = end - cfg.Overlap
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return spans
}

// boundaryCut finds the latest natural break in runes(minCut, end], trying
// each separator in preference order.
func boundaryCut(runes []rune, minCut, end int) (int, bool) {
	window := string(runes[minCut:end])
	for _, sep := range boundarySeparators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		// Cut after the separator so sentence punctuation stays with
		// the preceding chunk.
		cut := minCut + utf8.RuneCountInString(window[:idx]) + utf8.RuneCountInString(sep)
		if cut > minCut && cut <= end {
			return cut, true
		}
	}
	return 0, false
}

func trimmedSpan(runes []rune, start, end int) (chunkSpan, bool) {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	if start >= end {
		return chunkSpan{}, false
	}
	return chunkSpan{
		Text:  string(runes[start:end]),
		Start: start,
		End:   end,
	}, true
}

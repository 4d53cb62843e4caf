package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkDocument_ShortTextSingleChunk(t *testing.T) {
	chunks := ChunkDocument("doc-1", "a short document", DefaultChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, "a short document", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].SequenceIndex)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, 16, chunks[0].EndOffset)
	assert.NotEmpty(t, chunks[0].ContentHash)
}

func TestChunkDocument_EmptyText(t *testing.T) {
	assert.Empty(t, ChunkDocument("doc-1", "", DefaultChunkConfig()))
	assert.Empty(t, ChunkDocument("doc-1", "  \n\t ", DefaultChunkConfig()))
}

func TestChunkDocument_RespectsMaxChars(t *testing.T) {
	cfg := ChunkConfig{MaxChars: 50, MinChars: 10, Overlap: 10, MaxChunks: 100}
	text := strings.Repeat("word ", 100)

	chunks := ChunkDocument("doc-1", text, cfg)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), cfg.MaxChars)
		assert.NotEmpty(t, strings.TrimSpace(c.Content))
	}
}

func TestChunkDocument_PrefersParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("a", 30)
	para2 := strings.Repeat("b", 30)
	text := para1 + "\n\n" + para2
	cfg := ChunkConfig{MaxChars: 40, MinChars: 5, Overlap: 0, MaxChunks: 100}

	chunks := ChunkDocument("doc-1", text, cfg)

	require.Len(t, chunks, 2)
	assert.Equal(t, para1, chunks[0].Content)
	assert.Equal(t, para2, chunks[1].Content)
}

func TestChunkDocument_PrefersSentenceBoundaryOverWord(t *testing.T) {
	text := "First sentence here. Second sentence follows with more words after it"
	cfg := ChunkConfig{MaxChars: 40, MinChars: 5, Overlap: 0, MaxChunks: 100}

	chunks := ChunkDocument("doc-1", text, cfg)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "First sentence here.", chunks[0].Content)
}

func TestChunkDocument_OffsetsPointIntoOriginalText(t *testing.T) {
	text := "Paragraph one with some content.\n\nParagraph two with some content.\n\nParagraph three closes it out."
	cfg := ChunkConfig{MaxChars: 40, MinChars: 5, Overlap: 0, MaxChunks: 100}
	runes := []rune(text)

	chunks := ChunkDocument("doc-1", text, cfg)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, c.Content, string(runes[c.StartOffset:c.EndOffset]))
	}
}

func TestChunkDocument_OverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 50)
	cfg := ChunkConfig{MaxChars: 100, MinChars: 20, Overlap: 30, MaxChunks: 100}

	chunks := ChunkDocument("doc-1", text, cfg)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		assert.Less(t, chunks[i].StartOffset, chunks[i-1].EndOffset,
			"chunk %d should start before chunk %d ends", i, i-1)
	}
}

func TestChunkDocument_MaxChunksGuard(t *testing.T) {
	text := strings.Repeat("word ", 1000)
	cfg := ChunkConfig{MaxChars: 50, MinChars: 10, Overlap: 0, MaxChunks: 5}

	chunks := ChunkDocument("doc-1", text, cfg)

	assert.Len(t, chunks, 5)
}

func TestChunkDocument_SequenceIndexesAreContiguous(t *testing.T) {
	text := strings.Repeat("some sentence content here. ", 60)
	chunks := ChunkDocument("doc-1", text, ChunkConfig{MaxChars: 100, MinChars: 20, Overlap: 10, MaxChunks: 100})

	for i, c := range chunks {
		assert.Equal(t, i, c.SequenceIndex)
		assert.Equal(t, "doc-1", c.DocumentID)
	}
}

func TestChunkDocument_IdenticalContentSharesHash(t *testing.T) {
	para := strings.Repeat("x", 30)
	text := para + "\n\n" + para
	cfg := ChunkConfig{MaxChars: 40, MinChars: 5, Overlap: 0, MaxChunks: 100}

	chunks := ChunkDocument("doc-1", text, cfg)

	require.Len(t, chunks, 2)
	assert.Equal(t, chunks[0].ContentHash, chunks[1].ContentHash)
}

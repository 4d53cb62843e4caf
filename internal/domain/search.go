package domain

import "math"

// SearchResult is a ranked chunk returned from retrieval.
type SearchResult struct {
	ChunkID       string  `json:"chunk_id"`
	DocumentID    string  `json:"document_id"`
	Source        string  `json:"source"`
	SequenceIndex int     `json:"sequence_index"`
	Content       string  `json:"content"`
	Score         float32 `json:"score"`
}

// Citation points an answer or search response back at its source chunk.
type Citation struct {
	SourceID         int    `json:"source_id"`
	DocumentID       string `json:"document_id"`
	Source           string `json:"source"`
	Snippet          string `json:"snippet"`
	RelevancePercent int    `json:"relevance_percent"`
}

// Answer is a synthesized response grounded in retrieved chunks.
type Answer struct {
	Text      string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Grounded  bool       `json:"grounded"`
}

// RelevancePercent converts a [0,1] similarity score to a whole percentage.
func RelevancePercent(score float32) int {
	return int(math.Round(float64(score) * 100))
}

// NewCitation builds a citation for the given search result.
func NewCitation(sourceID int, r SearchResult, snippet string) Citation {
	return Citation{
		SourceID:         sourceID,
		DocumentID:       r.DocumentID,
		Source:           r.Source,
		Snippet:          snippet,
		RelevancePercent: RelevancePercent(r.Score),
	}
}

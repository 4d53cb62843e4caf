// Package index defines the vector index port used by retrieval and the
// shared types its backends implement.
package index

import "context"

// MaxTopK is the largest result page any backend will return. Requests
// above it are silently capped.
const MaxTopK = 100

// Record is a chunk vector with its provenance metadata.
type Record struct {
	ID            string
	DocumentID    string
	Source        string
	SequenceIndex int
	Content       string
	Vector        []float32
}

// Result is a scored match from a similarity query. Score is cosine
// similarity clamped to [0,1], higher is more similar.
type Result struct {
	ID            string
	DocumentID    string
	Source        string
	SequenceIndex int
	Content       string
	Score         float32
}

// Filter restricts a query or delete to records matching all set fields.
// Filters apply before ranking, so topK counts only matching records.
type Filter struct {
	DocumentID string
	Source     string
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.DocumentID == "" && f.Source == ""
}

// Matches reports whether the record satisfies the filter.
func (f Filter) Matches(r Record) bool {
	if f.DocumentID != "" && r.DocumentID != f.DocumentID {
		return false
	}
	if f.Source != "" && r.Source != f.Source {
		return false
	}
	return true
}

// Stats describes the current index contents.
type Stats struct {
	VectorCount int64 `json:"vector_count"`
	Dimensions  int   `json:"dimensions"`
}

// Index is the vector store port. Implementations must treat a missing
// index as domain.ErrIndexNotFound, distinct from transient failures.
type Index interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Result, error)
	Delete(ctx context.Context, ids []string) error
	DeleteByFilter(ctx context.Context, filter Filter) error
	DeleteAll(ctx context.Context) error
	Stats(ctx context.Context) (*Stats, error)
}

// ClampTopK bounds topK to [1, MaxTopK].
func ClampTopK(topK int) int {
	if topK < 1 {
		return 1
	}
	if topK > MaxTopK {
		return MaxTopK
	}
	return topK
}

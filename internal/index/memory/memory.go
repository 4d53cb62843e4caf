// Package memory provides an in-memory vector index used in development
// mode and tests.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/docsense-ai/docsense/internal/index"
)

// Index is a thread-safe in-memory vector index with brute-force cosine
// search.
type Index struct {
	mu      sync.RWMutex
	records map[string]index.Record
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{records: make(map[string]index.Record)}
}

func (m *Index) Upsert(ctx context.Context, records []index.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		vec := make([]float32, len(r.Vector))
		copy(vec, r.Vector)
		r.Vector = vec
		m.records[r.ID] = r
	}
	return nil
}

func (m *Index) Query(ctx context.Context, vector []float32, topK int, filter index.Filter) ([]index.Result, error) {
	topK = index.ClampTopK(topK)

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Deterministic iteration keeps tie ordering stable across calls.
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]index.Result, 0, len(ids))
	for _, id := range ids {
		r := m.records[id]
		if !filter.Matches(r) {
			continue
		}
		results = append(results, index.Result{
			ID:            r.ID,
			DocumentID:    r.DocumentID,
			Source:        r.Source,
			SequenceIndex: r.SequenceIndex,
			Content:       r.Content,
			Score:         cosineSimilarity(vector, r.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *Index) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.records, id)
	}
	return nil
}

func (m *Index) DeleteByFilter(ctx context.Context, filter index.Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, r := range m.records {
		if filter.Matches(r) {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *Index) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[string]index.Record)
	return nil
}

func (m *Index) Stats(ctx context.Context) (*index.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dims := 0
	for _, r := range m.records {
		dims = len(r.Vector)
		break
	}
	return &index.Stats{
		VectorCount: int64(len(m.records)),
		Dimensions:  dims,
	}, nil
}

// cosineSimilarity returns the cosine of the angle between a and b clamped
// to [0,1]. Mismatched or zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return float32(sim)
}

package domain

import "time"

// EmbeddingRecord is a cached embedding for a piece of content under a
// specific model.
type EmbeddingRecord struct {
	ContentHash string
	ModelID     string
	Vector      []float32
	CreatedAt   time.Time
}

// EmbeddingCacheKey builds the cache key for a (content hash, model) pair.
// Embeddings from different models are never interchangeable.
func EmbeddingCacheKey(contentHash, modelID string) string {
	return contentHash + ":" + modelID
}

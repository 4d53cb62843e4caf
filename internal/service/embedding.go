package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/docsense-ai/docsense/internal/domain"
	"github.com/docsense-ai/docsense/internal/retry"
)

// DefaultEmbedConcurrency bounds parallel provider calls during ingestion.
const DefaultEmbedConcurrency = 4

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	ModelID() string
}

// Embedder generates embeddings with a content-addressed cache. Identical
// text (after whitespace normalization) embedded under the same model hits
// the cache instead of the provider. Concurrent requests for the same
// content share a single provider call.
type Embedder struct {
	client      EmbeddingClient
	modelID     string
	retryCfg    retry.Config
	concurrency int

	mu     sync.RWMutex
	cache  map[string]*domain.EmbeddingRecord
	flight singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// NewEmbedder creates a new Embedder instance
func NewEmbedder(client EmbeddingClient) *Embedder {
	return &Embedder{
		client:      client,
		modelID:     client.ModelID(),
		retryCfg:    retry.DefaultConfig(),
		concurrency: DefaultEmbedConcurrency,
		cache:       make(map[string]*domain.EmbeddingRecord),
	}
}

// Embed returns the embedding vector for text. When useCache is true a
// cached vector is returned if present; either way a fresh result is
// written through to the cache. Failed calls are never cached.
func (e *Embedder) Embed(ctx context.Context, text string, useCache bool) ([]float32, error) {
	hash := domain.HashContent(text)
	key := domain.EmbeddingCacheKey(hash, e.modelID)

	if useCache {
		if vec, ok := e.lookup(key); ok {
			e.hits.Add(1)
			return vec, nil
		}
	}
	e.misses.Add(1)

	v, err, _ := e.flight.Do(key, func() (interface{}, error) {
		// Another caller may have populated the cache while this one
		// was waiting on the flight group.
		if useCache {
			if vec, ok := e.lookup(key); ok {
				return vec, nil
			}
		}

		vec, err := retry.DoWithResult(ctx, e.retryCfg, func(ctx context.Context) ([]float32, error) {
			return e.client.GenerateEmbedding(ctx, text)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}

		e.store(key, hash, vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}

	return copyVector(v.([]float32)), nil
}

// EmbedChunks embeds chunks with bounded concurrency, reusing cached
// vectors. The returned slice is positionally aligned with chunks.
func (e *Embedder) EmbedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			vec, err := e.Embed(ctx, chunk.Content, true)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", chunk.SequenceIndex, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

func (e *Embedder) Stats() CacheStats {
	e.mu.RLock()
	entries := len(e.cache)
	e.mu.RUnlock()
	return CacheStats{
		Entries: entries,
		Hits:    e.hits.Load(),
		Misses:  e.misses.Load(),
	}
}

// Clear drops all cached embeddings.
func (e *Embedder) Clear() {
	e.mu.Lock()
	e.cache = make(map[string]*domain.EmbeddingRecord)
	e.mu.Unlock()
}

func (e *Embedder) lookup(key string) ([]float32, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.cache[key]
	if !ok {
		return nil, false
	}
	return copyVector(rec.Vector), true
}

func (e *Embedder) store(key, hash string, vec []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache[key] = &domain.EmbeddingRecord{
		ContentHash: hash,
		ModelID:     e.modelID,
		Vector:      copyVector(vec),
		CreatedAt:   time.Now().UTC(),
	}
}

func copyVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}

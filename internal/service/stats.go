package service

import (
	"context"
	"fmt"

	"github.com/docsense-ai/docsense/internal/index"
)

// EmbeddingCacheStats exposes the embedder's cache counters.
type EmbeddingCacheStats interface {
	Stats() CacheStats
}

// StatsService aggregates operational counters for the stats endpoint.
type StatsService struct {
	repo     DocumentRepositoryInterface
	idx      index.Index
	embedder EmbeddingCacheStats
}

func NewStatsService(repo DocumentRepositoryInterface, idx index.Index, embedder EmbeddingCacheStats) *StatsService {
	return &StatsService{
		repo:     repo,
		idx:      idx,
		embedder: embedder,
	}
}

type Stats struct {
	DocumentCount  int        `json:"document_count"`
	VectorCount    int64      `json:"vector_count"`
	Dimensions     int        `json:"dimensions"`
	EmbeddingCache CacheStats `json:"embedding_cache"`
}

func (s *StatsService) Collect(ctx context.Context) (*Stats, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	idxStats, err := s.idx.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read index stats: %w", err)
	}

	return &Stats{
		DocumentCount:  count,
		VectorCount:    idxStats.VectorCount,
		Dimensions:     idxStats.Dimensions,
		EmbeddingCache: s.embedder.Stats(),
	}, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docsense-ai/docsense/internal/domain"
	"github.com/docsense-ai/docsense/internal/index"
	"github.com/docsense-ai/docsense/internal/telemetry"
)

// DefaultMinScore filters out results with near-zero similarity.
const DefaultMinScore = 0.1

// QueryEmbedder produces an embedding vector for a query string.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string, useCache bool) ([]float32, error)
}

// SearchService retrieves relevant chunks for a query.
type SearchService struct {
	embedder QueryEmbedder
	idx      index.Index
}

// NewSearchService creates a new SearchService instance
func NewSearchService(embedder QueryEmbedder, idx index.Index) *SearchService {
	return &SearchService{
		embedder: embedder,
		idx:      idx,
	}
}

type SearchInput struct {
	Query      string
	TopK       int
	MinScore   float32
	DocumentID string
	Source     string
}

type SearchOutput struct {
	Results      []domain.SearchResult `json:"results"`
	SearchTimeMS int64                 `json:"search_time_ms"`
}

// Search embeds the query and returns matching chunks ordered by score.
// Results below the minimum score are dropped after ranking.
func (s *SearchService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	if strings.TrimSpace(input.Query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	minScore := input.MinScore
	if minScore <= 0 {
		minScore = DefaultMinScore
	}

	started := time.Now()

	vector, err := s.embedder.Embed(ctx, input.Query, true)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	topK := index.ClampTopK(input.TopK)
	filter := index.Filter{DocumentID: input.DocumentID, Source: input.Source}

	matches, err := s.idx.Query(ctx, vector, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		if m.Score < minScore {
			continue
		}
		results = append(results, domain.SearchResult{
			ChunkID:       m.ID,
			DocumentID:    m.DocumentID,
			Source:        m.Source,
			SequenceIndex: m.SequenceIndex,
			Content:       m.Content,
			Score:         m.Score,
		})
	}

	return &SearchOutput{
		Results:      results,
		SearchTimeMS: time.Since(started).Milliseconds(),
	}, nil
}

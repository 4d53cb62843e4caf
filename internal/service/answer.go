package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docsense-ai/docsense/internal/domain"
	"github.com/docsense-ai/docsense/internal/telemetry"
)

const (
	// DefaultContextTokenBudget bounds how much retrieved text goes into
	// the answer prompt, in estimated tokens.
	DefaultContextTokenBudget = 3000

	// DefaultAnswerTopK is the retrieval depth for question answering.
	DefaultAnswerTopK = 5

	answerMaxTokens   = 500
	answerTemperature = 0.2

	citationSnippetRunes = 200
)

// CompletionClient defines the interface for text generation
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// Searcher runs retrieval for a query.
type Searcher interface {
	Search(ctx context.Context, input SearchInput) (*SearchOutput, error)
}

// AnswerService answers questions grounded in retrieved document chunks.
type AnswerService struct {
	search      Searcher
	completions CompletionClient
	tokenBudget int
}

// NewAnswerService creates a new AnswerService instance
func NewAnswerService(search Searcher, completions CompletionClient) *AnswerService {
	return &AnswerService{
		search:      search,
		completions: completions,
		tokenBudget: DefaultContextTokenBudget,
	}
}

type AskInput struct {
	Question   string
	TopK       int
	MinScore   float32
	DocumentID string
}

// Ask retrieves context for the question and generates a cited answer.
// When nothing relevant is retrieved, a fixed fallback answer is returned
// without calling the model.
func (s *AnswerService) Ask(ctx context.Context, input AskInput) (*domain.Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnswerService.Ask", telemetry.SpanAttributes{
		Operation: "ask",
	})
	defer span.End()

	if strings.TrimSpace(input.Question) == "" {
		return nil, domain.ErrEmptyQuery
	}

	topK := input.TopK
	if topK <= 0 {
		topK = DefaultAnswerTopK
	}

	out, err := s.search.Search(ctx, SearchInput{
		Query:      input.Question,
		TopK:       topK,
		MinScore:   input.MinScore,
		DocumentID: input.DocumentID,
	})
	if err != nil {
		return nil, err
	}

	selected := selectWithinBudget(out.Results, s.tokenBudget)
	if len(selected) == 0 {
		return &domain.Answer{
			Text:      NoAnswerText,
			Citations: []domain.Citation{},
			Grounded:  false,
		}, nil
	}

	prompt := AnswerPrompt(input.Question, selected)
	text, err := s.completions.Complete(ctx, prompt, answerMaxTokens, answerTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	citations := make([]domain.Citation, len(selected))
	for i, r := range selected {
		citations[i] = domain.NewCitation(i+1, r, snippet(r.Content))
	}

	return &domain.Answer{
		Text:      strings.TrimSpace(text),
		Citations: citations,
		Grounded:  true,
	}, nil
}

// selectWithinBudget greedily takes results in rank order until the token
// budget is exhausted. The first result is always included so a single
// oversized chunk cannot starve the prompt.
func selectWithinBudget(results []domain.SearchResult, budget int) []domain.SearchResult {
	selected := make([]domain.SearchResult, 0, len(results))
	used := 0
	for _, r := range results {
		cost := domain.EstimateTokens(r.Content)
		if len(selected) > 0 && used+cost > budget {
			break
		}
		selected = append(selected, r)
		used += cost
	}
	return selected
}

func snippet(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= citationSnippetRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:citationSnippetRunes]) + "..."
}

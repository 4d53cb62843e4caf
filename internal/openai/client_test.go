package openai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docsense-ai/docsense/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingAPI struct {
	embedding []float32
	err       error
	calls     int
	lastText  string
}

func (f *fakeEmbeddingAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	f.lastText = text
	return f.embedding, f.err
}

type fakeCompletionAPI struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeCompletionAPI) CreateCompletion(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.response, f.err
}

func newTestClient(emb EmbeddingAPI, comp CompletionAPI) *Client {
	return &Client{
		embeddings:  emb,
		completions: comp,
		modelID:     string(DefaultEmbeddingModel),
		dimensions:  DefaultEmbeddingDimensions,
	}
}

func TestGenerateEmbedding_Success(t *testing.T) {
	embedding := make([]float32, DefaultEmbeddingDimensions)
	api := &fakeEmbeddingAPI{embedding: embedding}
	client := newTestClient(api, nil)

	got, err := client.GenerateEmbedding(context.Background(), "some text")

	require.NoError(t, err)
	assert.Len(t, got, DefaultEmbeddingDimensions)
	assert.Equal(t, "some text", api.lastText)
}

func TestGenerateEmbedding_EmptyText(t *testing.T) {
	api := &fakeEmbeddingAPI{}
	client := newTestClient(api, nil)

	_, err := client.GenerateEmbedding(context.Background(), "")

	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Equal(t, 0, api.calls)
}

func TestGenerateEmbedding_WrongDimensions(t *testing.T) {
	api := &fakeEmbeddingAPI{embedding: make([]float32, 12)}
	client := newTestClient(api, nil)

	_, err := client.GenerateEmbedding(context.Background(), "some text")

	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestComplete_Success(t *testing.T) {
	api := &fakeCompletionAPI{response: "the answer"}
	client := newTestClient(nil, api)

	got, err := client.Complete(context.Background(), "the prompt", 100, 0)

	require.NoError(t, err)
	assert.Equal(t, "the answer", got)
	assert.Equal(t, "the prompt", api.lastPrompt)
}

func TestComplete_EmptyPrompt(t *testing.T) {
	api := &fakeCompletionAPI{}
	client := newTestClient(nil, api)

	_, err := client.Complete(context.Background(), "", 100, 0)

	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Equal(t, 0, api.calls)
}

func TestMapProviderError_RateLimit(t *testing.T) {
	apiErr := &openai.APIError{
		HTTPStatusCode: 429,
		Message:        "Rate limit reached. Please try again in 20s.",
	}

	mapped := mapProviderError(apiErr)

	after, ok := domain.IsRateLimit(mapped)
	require.True(t, ok)
	assert.Equal(t, 20*time.Second, after)
}

func TestMapProviderError_RateLimitWithoutHint(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: 429, Message: "Too many requests"}

	mapped := mapProviderError(apiErr)

	after, ok := domain.IsRateLimit(mapped)
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), after)
}

func TestMapProviderError_Auth(t *testing.T) {
	for _, status := range []int{401, 403} {
		mapped := mapProviderError(&openai.APIError{HTTPStatusCode: status})
		assert.True(t, domain.IsAuth(mapped), "status %d should map to auth error", status)
		assert.False(t, domain.IsRetryable(mapped))
	}
}

func TestMapProviderError_Transient(t *testing.T) {
	for _, status := range []int{500, 502, 503, 408} {
		mapped := mapProviderError(&openai.APIError{HTTPStatusCode: status})
		assert.True(t, domain.IsTransient(mapped), "status %d should map to transient", status)
	}

	// Transport errors carry no HTTP status at all.
	mapped := mapProviderError(errors.New("connection refused"))
	assert.True(t, domain.IsTransient(mapped))
}

func TestMapProviderError_ClientErrorPassesThrough(t *testing.T) {
	apiErr := &openai.APIError{HTTPStatusCode: 400, Message: "invalid input"}

	mapped := mapProviderError(apiErr)

	assert.False(t, domain.IsRetryable(mapped))
	var out *openai.APIError
	assert.True(t, errors.As(mapped, &out))
}

func TestMapProviderError_ContextCancellation(t *testing.T) {
	assert.ErrorIs(t, mapProviderError(context.Canceled), context.Canceled)
	assert.False(t, domain.IsTransient(mapProviderError(context.Canceled)))
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "sk-test"})

	assert.Equal(t, string(DefaultEmbeddingModel), client.ModelID())
	assert.Equal(t, DefaultEmbeddingDimensions, client.dimensions)
}

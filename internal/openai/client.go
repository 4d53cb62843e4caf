package openai

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docsense-ai/docsense/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultCompletionModel is the chat model used for answers and summaries
	DefaultCompletionModel = openai.GPT4oMini
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrEmptyPrompt is returned when a completion prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// CompletionAPI defines the interface for chat completions
type CompletionAPI interface {
	CreateCompletion(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// Client wraps the OpenAI API client
type Client struct {
	embeddings  EmbeddingAPI
	completions CompletionAPI
	modelID     string
	dimensions  int
}

type OpenAIAdapter struct {
	client          *openai.Client
	embeddingModel  openai.EmbeddingModel
	completionModel string
}

func NewOpenAIAdapter(apiKey string, embeddingModel openai.EmbeddingModel, completionModel string) *OpenAIAdapter {
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	if completionModel == "" {
		completionModel = DefaultCompletionModel
	}
	return &OpenAIAdapter{
		client:          openai.NewClient(apiKey),
		embeddingModel:  embeddingModel,
		completionModel: completionModel,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.embeddingModel,
	})
	if err != nil {
		return nil, mapProviderError(err)
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

// CreateCompletion calls the OpenAI chat API and returns the first choice.
func (a *OpenAIAdapter) CreateCompletion(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.completionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", mapProviderError(err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	CompletionModel     string
	EmbeddingDimensions int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = DefaultEmbeddingModel
	}
	adapter := NewOpenAIAdapter(cfg.APIKey, model, cfg.CompletionModel)
	return &Client{
		embeddings:  adapter,
		completions: adapter,
		modelID:     string(model),
		dimensions:  dimensions,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// ModelID identifies the embedding model. Cached embeddings are keyed by it.
func (c *Client) ModelID() string {
	return c.modelID
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embedding, err := c.embeddings.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, err
	}

	expected := c.dimensions
	if expected <= 0 {
		expected = DefaultEmbeddingDimensions
	}
	if len(embedding) != expected {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

// Complete generates a chat completion for the given prompt
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return c.completions.CreateCompletion(ctx, prompt, maxTokens, temperature)
}

// mapProviderError translates OpenAI SDK failures into the domain taxonomy
// so callers can decide retryability without inspecting SDK types.
func mapProviderError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyHTTPStatus(apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyHTTPStatus(reqErr.HTTPStatusCode, err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// Transport failures reach here without an HTTP status.
	return &domain.TransientError{Err: err}
}

func classifyHTTPStatus(status int, err error) error {
	switch {
	case status == 429:
		return &domain.RateLimitError{RetryAfter: retryAfterHint(err), Err: err}
	case status == 401 || status == 403:
		return &domain.AuthError{Err: err}
	case status >= 500 || status == 408 || status == 0:
		return &domain.TransientError{Err: err}
	default:
		return err
	}
}

// retryAfterHint extracts a retry-after hint from the provider message when
// present ("Please try again in Ns"). Returns zero when absent.
func retryAfterHint(err error) time.Duration {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return 0
	}

	fields := strings.FieldsFunc(apiErr.Message, func(r rune) bool {
		return r == ' ' || r == '.' || r == ','
	})
	for i, f := range fields {
		if f != "in" || i+1 >= len(fields) {
			continue
		}
		candidate := fields[i+1]
		if len(candidate) > 1 && candidate[len(candidate)-1] == 's' {
			if secs, perr := strconv.ParseFloat(candidate[:len(candidate)-1], 64); perr == nil && secs > 0 {
				return time.Duration(secs * float64(time.Second))
			}
		}
	}
	return 0
}

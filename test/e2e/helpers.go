//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsense-ai/docsense/internal/api/handlers"
	"github.com/docsense-ai/docsense/internal/index/pgvector"
	"github.com/docsense-ai/docsense/internal/jobs"
	"github.com/docsense-ai/docsense/internal/loader"
	"github.com/docsense-ai/docsense/internal/repository"
	"github.com/docsense-ai/docsense/internal/retry"
	"github.com/docsense-ai/docsense/internal/server"
	"github.com/docsense-ai/docsense/internal/service"
	"github.com/docsense-ai/docsense/internal/storage"
	"github.com/docsense-ai/docsense/internal/testutil"
)

const testAPIKey = "e2e-test-key"

// fakeModelClient produces deterministic embeddings and canned completions
// so the full stack can run without a model provider.
type fakeModelClient struct{}

func (f *fakeModelClient) ModelID() string { return "fake-embedding-model" }

// GenerateEmbedding hashes each word into one of the vector dimensions, so
// texts sharing words land near each other under cosine similarity.
func (f *fakeModelClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, pgvector.Dimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(word, ".,!?")))
		vec[h.Sum32()%pgvector.Dimensions]++
	}
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	return vec, nil
}

func (f *fakeModelClient) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if strings.Contains(prompt, "Answer (with source citations):") {
		return "The answer, according to [Source 1].", nil
	}
	return "A generated summary of the provided text.", nil
}

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	Server     *httptest.Server
	HTTPClient *http.Client
}

// SetupE2EEnv starts a Postgres container and an in-process server wired the
// same way as the serve command, with fake model clients.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	documentRepo := repository.NewDocumentRepository(pool)
	jobStore := repository.NewBatchJobRepository(pool)
	vectorIndex := pgvector.New(pool)
	blobs := storage.NewMemoryBlobStore()

	model := &fakeModelClient{}
	embedder := service.NewEmbedder(model)

	documentSvc := service.NewDocumentService(documentRepo, blobs, loader.NewTextExtractor(), embedder, vectorIndex, service.DefaultChunkConfig())
	searchSvc := service.NewSearchService(embedder, vectorIndex)
	answerSvc := service.NewAnswerService(searchSvc, model)
	summarySvc := service.NewSummaryService(documentRepo, blobs, model)
	statsSvc := service.NewStatsService(documentRepo, vectorIndex, embedder)

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 2
	orchestrator := jobs.NewOrchestrator(jobStore, summarySvc, jobs.Config{
		Workers:       2,
		RatePerMinute: 6000,
		Retry:         retryCfg,
	})
	t.Cleanup(func() { _ = orchestrator.Shutdown(context.Background()) })

	router := server.NewRouter(server.RouterConfig{
		APIKey:           testAPIKey,
		DocumentHandler:  handlers.NewDocumentHandler(documentSvc),
		SearchHandler:    handlers.NewSearchHandler(searchSvc, answerSvc),
		SummarizeHandler: handlers.NewSummarizeHandler(summarySvc),
		JobHandler:       handlers.NewJobHandler(orchestrator),
		StatsHandler:     handlers.NewStatsHandler(statsSvc),
	})

	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		Server:     srv,
		HTTPClient: srv.Client(),
	}
}

// Cleanup tears down the server and containers.
func (env *E2ETestEnv) Cleanup() {
	env.Server.Close()
	env.Pool.Close()
	_ = env.PostgresC.Terminate(env.Ctx)
}

// APIResponse mirrors the server's response envelope.
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (env *E2ETestEnv) request(method, path string, body interface{}) (int, *APIResponse) {
	env.T.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			env.T.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, reqBody)
	if err != nil {
		env.T.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.HTTPClient.Do(req)
	if err != nil {
		env.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		env.T.Fatalf("failed to read response: %v", err)
	}

	apiResp := &APIResponse{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, apiResp); err != nil {
			env.T.Fatalf("failed to parse response %q: %v", string(raw), err)
		}
	}
	return resp.StatusCode, apiResp
}

// Post performs an authenticated POST request.
func (env *E2ETestEnv) Post(path string, body interface{}) (int, *APIResponse) {
	return env.request(http.MethodPost, path, body)
}

// Get performs an authenticated GET request.
func (env *E2ETestEnv) Get(path string) (int, *APIResponse) {
	return env.request(http.MethodGet, path, nil)
}

// Delete performs an authenticated DELETE request.
func (env *E2ETestEnv) Delete(path string) (int, *APIResponse) {
	return env.request(http.MethodDelete, path, nil)
}

// MustUnmarshal decodes data into out, failing the test on error.
func (env *E2ETestEnv) MustUnmarshal(data json.RawMessage, out interface{}) {
	env.T.Helper()
	if err := json.Unmarshal(data, out); err != nil {
		env.T.Fatalf("failed to unmarshal %q: %v", string(data), err)
	}
}

// IngestDocument ingests a document and returns its ID.
func (env *E2ETestEnv) IngestDocument(filename, content string) string {
	env.T.Helper()

	status, resp := env.Post("/documents", map[string]string{
		"filename": filename,
		"content":  content,
	})
	if status != http.StatusCreated {
		env.T.Fatalf("ingest returned %d: %s", status, resp.Error)
	}

	var doc struct {
		ID string `json:"id"`
	}
	env.MustUnmarshal(resp.Data, &doc)
	if doc.ID == "" {
		env.T.Fatal("ingest returned empty document id")
	}
	return doc.ID
}

func jobPath(id string) string {
	return fmt.Sprintf("/jobs/%s", id)
}

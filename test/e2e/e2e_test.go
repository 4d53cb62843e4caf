//go:build e2e

package e2e

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_DocumentLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	docID := env.IngestDocument("go-notes.md", "# Go\n\nGoroutines are lightweight threads managed by the Go runtime.\n\nChannels let goroutines communicate safely.")

	t.Run("get document", func(t *testing.T) {
		status, resp := env.Get("/documents/" + docID)
		require.Equal(t, http.StatusOK, status)

		var doc struct {
			ID         string `json:"id"`
			Filename   string `json:"filename"`
			Format     string `json:"format"`
			Status     string `json:"status"`
			ChunkCount int    `json:"chunk_count"`
		}
		env.MustUnmarshal(resp.Data, &doc)
		assert.Equal(t, docID, doc.ID)
		assert.Equal(t, "go-notes.md", doc.Filename)
		assert.Equal(t, "markdown", doc.Format)
		assert.Equal(t, "completed", doc.Status)
		assert.Greater(t, doc.ChunkCount, 0)
	})

	t.Run("list documents", func(t *testing.T) {
		status, resp := env.Get("/documents")
		require.Equal(t, http.StatusOK, status)

		var list struct {
			Items   []struct{ ID string } `json:"items"`
			HasMore bool                  `json:"has_more"`
		}
		env.MustUnmarshal(resp.Data, &list)
		require.Len(t, list.Items, 1)
		assert.False(t, list.HasMore)
	})

	t.Run("delete document", func(t *testing.T) {
		status, _ := env.Delete("/documents/" + docID)
		require.Equal(t, http.StatusNoContent, status)

		status, _ = env.Get("/documents/" + docID)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestE2E_SearchAndAnswer(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	goDocID := env.IngestDocument("golang.txt", "Goroutines are lightweight threads. Channels carry values between goroutines.")
	env.IngestDocument("cooking.txt", "Caramelize onions slowly over low heat for the best flavor.")

	t.Run("search finds the relevant document", func(t *testing.T) {
		status, resp := env.Post("/search", map[string]interface{}{
			"query": "goroutines channels threads",
			"top_k": 5,
		})
		require.Equal(t, http.StatusOK, status)

		var out struct {
			Results []struct {
				DocumentID string  `json:"document_id"`
				Source     string  `json:"source"`
				Score      float32 `json:"score"`
			} `json:"results"`
		}
		env.MustUnmarshal(resp.Data, &out)
		require.NotEmpty(t, out.Results)
		assert.Equal(t, goDocID, out.Results[0].DocumentID)
		assert.Equal(t, "golang.txt", out.Results[0].Source)
	})

	t.Run("search scoped to a document", func(t *testing.T) {
		status, resp := env.Post("/search", map[string]interface{}{
			"query":       "goroutines",
			"document_id": goDocID,
		})
		require.Equal(t, http.StatusOK, status)

		var out struct {
			Results []struct {
				DocumentID string `json:"document_id"`
			} `json:"results"`
		}
		env.MustUnmarshal(resp.Data, &out)
		for _, r := range out.Results {
			assert.Equal(t, goDocID, r.DocumentID)
		}
	})

	t.Run("empty query rejected", func(t *testing.T) {
		status, _ := env.Post("/search", map[string]interface{}{"query": "  "})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("ask returns a cited answer", func(t *testing.T) {
		status, resp := env.Post("/search/answer", map[string]interface{}{
			"question": "How do goroutines communicate?",
		})
		require.Equal(t, http.StatusOK, status)

		var answer struct {
			Answer    string `json:"answer"`
			Grounded  bool   `json:"grounded"`
			Citations []struct {
				SourceID int    `json:"source_id"`
				Source   string `json:"source"`
			} `json:"citations"`
		}
		env.MustUnmarshal(resp.Data, &answer)
		assert.True(t, answer.Grounded)
		assert.NotEmpty(t, answer.Answer)
		require.NotEmpty(t, answer.Citations)
		assert.Equal(t, 1, answer.Citations[0].SourceID)
	})

	t.Run("ask with no matching content is not grounded", func(t *testing.T) {
		status, resp := env.Post("/search/answer", map[string]interface{}{
			"question":  "quantum chromodynamics lagrangian",
			"min_score": 0.99,
		})
		require.Equal(t, http.StatusOK, status)

		var answer struct {
			Answer   string `json:"answer"`
			Grounded bool   `json:"grounded"`
		}
		env.MustUnmarshal(resp.Data, &answer)
		assert.False(t, answer.Grounded)
		assert.Contains(t, answer.Answer, "don't have enough information")
	})
}

func TestE2E_Summarize(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	docID := env.IngestDocument("report.txt", "Quarterly revenue grew by twelve percent. Churn declined. The team shipped three major features.")

	t.Run("summarize ingested document", func(t *testing.T) {
		status, resp := env.Post("/summarize", map[string]string{
			"document_id": docID,
			"length":      "brief",
		})
		require.Equal(t, http.StatusOK, status)

		var summary struct {
			Text   string `json:"summary"`
			Length string `json:"length"`
			Method string `json:"method"`
		}
		env.MustUnmarshal(resp.Data, &summary)
		assert.NotEmpty(t, summary.Text)
		assert.Equal(t, "brief", summary.Length)
		assert.Equal(t, "single_pass", summary.Method)
	})

	t.Run("summarize raw text", func(t *testing.T) {
		status, resp := env.Post("/summarize", map[string]string{
			"text": "Some ad hoc text that was never ingested.",
		})
		require.Equal(t, http.StatusOK, status)

		var summary struct {
			Length string `json:"length"`
		}
		env.MustUnmarshal(resp.Data, &summary)
		assert.Equal(t, "standard", summary.Length)
	})

	t.Run("unknown document", func(t *testing.T) {
		status, _ := env.Post("/summarize", map[string]string{"document_id": "missing"})
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestE2E_BatchJobs(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	docA := env.IngestDocument("a.txt", "Document A talks about apples and orchards.")
	docB := env.IngestDocument("b.txt", "Document B covers bridges and suspension cables.")

	t.Run("submit and complete", func(t *testing.T) {
		status, resp := env.Post("/jobs/summarize", map[string]interface{}{
			"document_ids": []string{docA, docB, "missing-doc"},
			"length":       "brief",
		})
		require.Equal(t, http.StatusAccepted, status)

		var job struct {
			ID    string `json:"id"`
			State string `json:"state"`
		}
		env.MustUnmarshal(resp.Data, &job)
		require.NotEmpty(t, job.ID)

		final := waitForJob(t, env, job.ID, 30*time.Second)
		assert.Equal(t, "completed_with_errors", final.State, "the missing document counts as an error")

		byDoc := map[string]jobItem{}
		for _, item := range final.Items {
			byDoc[item.DocumentID] = item
		}
		assert.Equal(t, "completed", byDoc[docA].Status)
		assert.Equal(t, "completed", byDoc[docB].Status)
		assert.Equal(t, "skipped", byDoc["missing-doc"].Status)
		require.NotNil(t, byDoc[docA].Summary)
		assert.NotEmpty(t, byDoc[docA].Summary.Text)
	})

	t.Run("cancel finished job conflicts", func(t *testing.T) {
		status, resp := env.Post("/jobs/summarize", map[string]interface{}{
			"document_ids": []string{docA},
		})
		require.Equal(t, http.StatusAccepted, status)

		var job struct {
			ID string `json:"id"`
		}
		env.MustUnmarshal(resp.Data, &job)
		waitForJob(t, env, job.ID, 30*time.Second)

		status, _ = env.Post(jobPath(job.ID)+"/cancel", nil)
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("unknown job", func(t *testing.T) {
		status, _ := env.Get(jobPath("nope"))
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestE2E_Stats(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.IngestDocument("a.txt", "Stats test content about indexing.")

	status, resp := env.Get("/stats")
	require.Equal(t, http.StatusOK, status)

	var stats struct {
		DocumentCount int64 `json:"document_count"`
		VectorCount   int64 `json:"vector_count"`
		Dimensions    int   `json:"dimensions"`
	}
	env.MustUnmarshal(resp.Data, &stats)
	assert.Equal(t, int64(1), stats.DocumentCount)
	assert.Greater(t, stats.VectorCount, int64(0))
	assert.Equal(t, 1536, stats.Dimensions)
}

func TestE2E_AuthRequired(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	req, err := http.NewRequest(http.MethodGet, env.Server.URL+"/documents", nil)
	require.NoError(t, err)

	resp, err := env.HTTPClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

type jobItem struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Summary    *struct {
		Text string `json:"summary"`
	} `json:"summary"`
}

type jobView struct {
	ID    string    `json:"id"`
	State string    `json:"state"`
	Items []jobItem `json:"items"`
}

func waitForJob(t *testing.T, env *E2ETestEnv, jobID string, timeout time.Duration) jobView {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		status, resp := env.Get(jobPath(jobID))
		require.Equal(t, http.StatusOK, status)

		var job jobView
		env.MustUnmarshal(resp.Data, &job)
		switch job.State {
		case "completed", "completed_with_errors", "failed", "cancelled":
			return job
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish within %s", jobID, timeout)
	return jobView{}
}

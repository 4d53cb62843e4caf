package client

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/documents/doc-1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"id":"doc-1","filename":"notes.txt"}}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig("test-key", server.URL)
	require.NoError(t, err)

	resp, err := api.Get("/documents/doc-1")
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data), "doc-1")
}

func TestAPIClient_Post_SendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"doc-1"}}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig("test-key", server.URL)
	require.NoError(t, err)

	resp, err := api.Post("/documents", map[string]string{"filename": "notes.txt"})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data), "doc-1")
}

func TestAPIClient_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"document not found"}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig("test-key", server.URL)
	require.NoError(t, err)

	_, err = api.Get("/documents/missing")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "document not found", apiErr.Message)
}

func TestAPIClient_NoContentResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig("test-key", server.URL)
	require.NoError(t, err)

	resp, err := api.Delete("/documents/doc-1")
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}

func TestAPIClient_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig("test-key", server.URL)
	require.NoError(t, err)

	_, err = api.Get("/stats")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestAPIClient_NoKeySkipsAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{"status":"ok"}}`))
	}))
	defer server.Close()

	api, err := NewAPIClientWithConfig("", server.URL)
	require.NoError(t, err)

	_, err = api.Get("/health")
	require.NoError(t, err)
}

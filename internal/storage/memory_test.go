package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsense-ai/docsense/internal/domain"
)

func TestMemoryBlobStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	require.NoError(t, store.PutDocumentText(ctx, "doc-1", "some text"))

	text, err := store.GetDocumentText(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "some text", text)
}

func TestMemoryBlobStore_GetMissing(t *testing.T) {
	store := NewMemoryBlobStore()

	_, err := store.GetDocumentText(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrDocumentTextNotFound)
}

func TestMemoryBlobStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	require.NoError(t, store.PutDocumentText(ctx, "doc-1", "text"))
	require.NoError(t, store.DeleteDocumentText(ctx, "doc-1"))

	_, err := store.GetDocumentText(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrDocumentTextNotFound)

	// deleting again is a no-op
	require.NoError(t, store.DeleteDocumentText(ctx, "doc-1"))
}

func TestMemoryBlobStore_DeleteAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	require.NoError(t, store.PutDocumentText(ctx, "doc-1", "a"))
	require.NoError(t, store.PutDocumentText(ctx, "doc-2", "b"))
	require.NoError(t, store.DeleteAllDocumentText(ctx))

	_, err := store.GetDocumentText(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrDocumentTextNotFound)
	_, err = store.GetDocumentText(ctx, "doc-2")
	assert.ErrorIs(t, err, domain.ErrDocumentTextNotFound)
}

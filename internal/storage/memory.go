package storage

import (
	"context"
	"sync"

	"github.com/docsense-ai/docsense/internal/domain"
)

// MemoryBlobStore keeps extracted document text in memory. Used when no S3
// endpoint is configured and in tests. Contents do not survive restarts.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	texts map[string]string
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{texts: make(map[string]string)}
}

func (m *MemoryBlobStore) PutDocumentText(ctx context.Context, documentID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts[documentID] = text
	return nil
}

func (m *MemoryBlobStore) GetDocumentText(ctx context.Context, documentID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.texts[documentID]
	if !ok {
		return "", domain.ErrDocumentTextNotFound
	}
	return text, nil
}

func (m *MemoryBlobStore) DeleteDocumentText(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.texts, documentID)
	return nil
}

func (m *MemoryBlobStore) DeleteAllDocumentText(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = make(map[string]string)
	return nil
}

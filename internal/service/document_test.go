package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsense-ai/docsense/internal/domain"
	"github.com/docsense-ai/docsense/internal/index"
	"github.com/docsense-ai/docsense/internal/index/memory"
	"github.com/docsense-ai/docsense/internal/loader"
	"github.com/docsense-ai/docsense/internal/pagination"
	"github.com/docsense-ai/docsense/internal/storage"
)

// fakeDocumentRepo is an in-memory DocumentRepositoryInterface that records
// the status at each Update call.
type fakeDocumentRepo struct {
	docs          map[string]*domain.Document
	statusHistory []domain.DocumentStatus
	createErr     error
	updateErr     error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*domain.Document)}
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeDocumentRepo) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error) {
	items := make([]*domain.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		cp := *doc
		items = append(items, &cp)
	}
	return &DocumentPageResult{Items: items}, nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, doc *domain.Document) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.statusHistory = append(r.statusHistory, doc.Status)
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) DeleteAll(ctx context.Context) error {
	r.docs = make(map[string]*domain.Document)
	return nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context) (int, error) {
	return len(r.docs), nil
}

// stubChunkEmbedder returns a fixed-shape vector per chunk.
type stubChunkEmbedder struct {
	err   error
	calls int
}

func (s *stubChunkEmbedder) EmbedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		vectors[i] = []float32{1, 0, float32(i)}
	}
	return vectors, nil
}

type fixedUUIDGen struct{ id string }

func (g *fixedUUIDGen) NewString() string { return g.id }

func newTestDocumentService(repo *fakeDocumentRepo, embedder ChunkEmbedder, idx index.Index) (*DocumentService, *storage.MemoryBlobStore) {
	blobs := storage.NewMemoryBlobStore()
	svc := NewDocumentService(repo, blobs, loader.NewTextExtractor(), embedder, idx, DefaultChunkConfig())
	svc.uuidGen = &fixedUUIDGen{id: "doc-1"}
	return svc, blobs
}

func TestDocumentService_Ingest_Success(t *testing.T) {
	repo := newFakeDocumentRepo()
	idx := memory.New()
	svc, blobs := newTestDocumentService(repo, &stubChunkEmbedder{}, idx)
	ctx := context.Background()

	doc, err := svc.Ingest(ctx, "notes.txt", []byte("some document content to ingest"))

	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, domain.DocumentStatusCompleted, doc.Status)
	assert.Equal(t, 1, doc.ChunkCount)
	assert.Equal(t, domain.DocumentFormatText, doc.Format)

	// Status transitions recorded through the repository.
	assert.Equal(t, []domain.DocumentStatus{
		domain.DocumentStatusProcessing,
		domain.DocumentStatusCompleted,
	}, repo.statusHistory)

	text, err := blobs.GetDocumentText(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "some document content to ingest", text)

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.VectorCount)
}

func TestDocumentService_Ingest_UnsupportedFormat(t *testing.T) {
	repo := newFakeDocumentRepo()
	svc, _ := newTestDocumentService(repo, &stubChunkEmbedder{}, memory.New())

	_, err := svc.Ingest(context.Background(), "report.pdf", []byte("content"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Empty(t, repo.docs, "no document should be created for rejected uploads")
}

func TestDocumentService_Ingest_EmptyFilename(t *testing.T) {
	svc, _ := newTestDocumentService(newFakeDocumentRepo(), &stubChunkEmbedder{}, memory.New())

	_, err := svc.Ingest(context.Background(), "", []byte("content"))

	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
}

func TestDocumentService_Ingest_EmbeddingFailureMarksFailed(t *testing.T) {
	repo := newFakeDocumentRepo()
	embedder := &stubChunkEmbedder{err: errors.New("provider down")}
	svc, _ := newTestDocumentService(repo, embedder, memory.New())

	_, err := svc.Ingest(context.Background(), "notes.txt", []byte("some content"))

	require.Error(t, err)
	doc, getErr := repo.GetByID(context.Background(), "doc-1")
	require.NoError(t, getErr)
	assert.Equal(t, domain.DocumentStatusFailed, doc.Status)
}

func TestDocumentService_Delete(t *testing.T) {
	repo := newFakeDocumentRepo()
	idx := memory.New()
	svc, blobs := newTestDocumentService(repo, &stubChunkEmbedder{}, idx)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "notes.txt", []byte("some content to delete later"))
	require.NoError(t, err)

	err = svc.Delete(ctx, "doc-1")
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	_, err = blobs.GetDocumentText(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrDocumentTextNotFound)

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.VectorCount)
}

func TestDocumentService_Delete_NotFound(t *testing.T) {
	svc, _ := newTestDocumentService(newFakeDocumentRepo(), &stubChunkEmbedder{}, memory.New())

	err := svc.Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentService_DeleteAll(t *testing.T) {
	repo := newFakeDocumentRepo()
	idx := memory.New()
	svc, blobs := newTestDocumentService(repo, &stubChunkEmbedder{}, idx)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "notes.txt", []byte("first document content"))
	require.NoError(t, err)

	err = svc.DeleteAll(ctx)
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = blobs.GetDocumentText(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrDocumentTextNotFound)
}

func TestDocumentService_List_InvalidCursor(t *testing.T) {
	svc, _ := newTestDocumentService(newFakeDocumentRepo(), &stubChunkEmbedder{}, memory.New())

	_, err := svc.List(context.Background(), ListDocumentsInput{Cursor: "not base64!!"})

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestDocumentService_Get_EmptyID(t *testing.T) {
	svc, _ := newTestDocumentService(newFakeDocumentRepo(), &stubChunkEmbedder{}, memory.New())

	_, err := svc.Get(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrInvalidDocumentID)
}

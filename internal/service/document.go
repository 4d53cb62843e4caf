package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docsense-ai/docsense/internal/domain"
	"github.com/docsense-ai/docsense/internal/index"
	"github.com/docsense-ai/docsense/internal/pagination"
	"github.com/docsense-ai/docsense/internal/telemetry"
)

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type DocumentPageResult struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

// BlobStore persists extracted document text keyed by document ID.
type BlobStore interface {
	PutDocumentText(ctx context.Context, documentID, text string) error
	GetDocumentText(ctx context.Context, documentID string) (string, error)
	DeleteDocumentText(ctx context.Context, documentID string) error
	DeleteAllDocumentText(ctx context.Context) error
}

// TextExtractorInterface converts an uploaded file into plain text.
type TextExtractorInterface interface {
	Extract(filename string, content []byte) (string, domain.DocumentFormat, error)
}

// ChunkEmbedder produces embedding vectors for document chunks.
type ChunkEmbedder interface {
	EmbedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// DocumentService handles the ingestion pipeline and document lifecycle.
type DocumentService struct {
	repo      DocumentRepositoryInterface
	blobs     BlobStore
	extractor TextExtractorInterface
	embedder  ChunkEmbedder
	idx       index.Index
	chunkCfg  ChunkConfig
	uuidGen   UUIDGenerator
	now       func() time.Time
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(
	repo DocumentRepositoryInterface,
	blobs BlobStore,
	extractor TextExtractorInterface,
	embedder ChunkEmbedder,
	idx index.Index,
	chunkCfg ChunkConfig,
) *DocumentService {
	return &DocumentService{
		repo:      repo,
		blobs:     blobs,
		extractor: extractor,
		embedder:  embedder,
		idx:       idx,
		chunkCfg:  chunkCfg,
		uuidGen:   &DefaultUUIDGenerator{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ingest extracts text from the upload, chunks it, embeds each chunk and
// upserts the vectors. The document moves pending -> processing ->
// completed; any failure after creation leaves it in failed.
func (s *DocumentService) Ingest(ctx context.Context, filename string, content []byte) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Ingest", telemetry.SpanAttributes{
		Operation: "ingest",
	})
	defer span.End()

	if filename == "" {
		return nil, domain.ErrMissingRequiredField
	}

	text, format, err := s.extractor.Extract(filename, content)
	if err != nil {
		return nil, err
	}

	doc := domain.NewDocument(s.uuidGen.NewString(), filename, format, int64(len(content)), s.now())
	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	if err := s.process(ctx, doc, text); err != nil {
		s.markFailed(ctx, doc)
		span.SetError(err)
		return nil, err
	}

	return doc, nil
}

func (s *DocumentService) process(ctx context.Context, doc *domain.Document, text string) error {
	if err := s.blobs.PutDocumentText(ctx, doc.ID, text); err != nil {
		return fmt.Errorf("failed to store document text: %w", err)
	}

	doc.Status = domain.DocumentStatusProcessing
	doc.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	chunks := ChunkDocument(doc.ID, text, s.chunkCfg)
	if len(chunks) == 0 {
		return domain.ErrEmptyDocument
	}

	vectors, err := s.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	records := make([]index.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = index.Record{
			ID:            chunkVectorID(doc.ID, chunk.SequenceIndex),
			DocumentID:    doc.ID,
			Source:        doc.Filename,
			SequenceIndex: chunk.SequenceIndex,
			Content:       chunk.Content,
			Vector:        vectors[i],
		}
	}
	if err := s.idx.Upsert(ctx, records); err != nil {
		return fmt.Errorf("failed to index chunks: %w", err)
	}

	doc.Status = domain.DocumentStatusCompleted
	doc.ChunkCount = len(chunks)
	doc.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

func (s *DocumentService) markFailed(ctx context.Context, doc *domain.Document) {
	doc.Status = domain.DocumentStatusFailed
	doc.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, doc); err != nil {
		telemetry.CaptureError(ctx, err)
	}
}

// Get returns a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if id == "" {
		return nil, domain.ErrInvalidDocumentID
	}
	return s.repo.GetByID(ctx, id)
}

type ListDocumentsInput struct {
	Cursor string
	Limit  int
}

type ListDocumentsOutput struct {
	Items   []*domain.Document
	Cursor  string
	HasMore bool
}

// List returns documents ordered newest first with cursor pagination.
func (s *DocumentService) List(ctx context.Context, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	page, err := s.repo.ListWithCursor(ctx, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return &ListDocumentsOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

// Delete removes a document, its stored text and its index entries.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "delete",
	})
	defer span.End()

	if id == "" {
		return domain.ErrInvalidDocumentID
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.idx.DeleteByFilter(ctx, index.Filter{DocumentID: id}); err != nil {
		return fmt.Errorf("failed to remove index entries: %w", err)
	}
	if err := s.blobs.DeleteDocumentText(ctx, id); err != nil {
		return fmt.Errorf("failed to remove document text: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

// DeleteAll clears every document, stored text and index entry.
func (s *DocumentService) DeleteAll(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.DeleteAll", telemetry.SpanAttributes{
		Operation: "delete_all",
	})
	defer span.End()

	if err := s.idx.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	if err := s.blobs.DeleteAllDocumentText(ctx); err != nil {
		return fmt.Errorf("failed to clear document text: %w", err)
	}
	return s.repo.DeleteAll(ctx)
}

func chunkVectorID(documentID string, sequenceIndex int) string {
	return fmt.Sprintf("%s:%d", documentID, sequenceIndex)
}

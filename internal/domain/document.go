package domain

import (
	"fmt"
	"time"
)

// DocumentStatus represents the ingestion status of a document
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// DocumentFormat represents the source format of an ingested document
type DocumentFormat string

const (
	DocumentFormatText     DocumentFormat = "text"
	DocumentFormatMarkdown DocumentFormat = "markdown"
)

// Document represents an ingested document and its processing metadata
type Document struct {
	ID         string
	Filename   string
	Format     DocumentFormat
	Status     DocumentStatus
	ChunkCount int
	SizeBytes  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewDocument creates a new Document in the pending state
func NewDocument(id, filename string, format DocumentFormat, sizeBytes int64, now time.Time) *Document {
	return &Document{
		ID:        id,
		Filename:  filename,
		Format:    format,
		Status:    DocumentStatusPending,
		SizeBytes: sizeBytes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}

	if !isValidDocumentFormat(d.Format) {
		return fmt.Errorf("document Format is invalid: %s", d.Format)
	}

	return nil
}

func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusPending, DocumentStatusProcessing, DocumentStatusCompleted, DocumentStatusFailed:
		return true
	}
	return false
}

func isValidDocumentFormat(f DocumentFormat) bool {
	switch f {
	case DocumentFormatText, DocumentFormatMarkdown:
		return true
	}
	return false
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDocument(t *testing.T) {
	now := time.Now().UTC()
	doc := NewDocument("doc-1", "report.md", DocumentFormatMarkdown, 2048, now)

	assert.Equal(t, DocumentStatusPending, doc.Status)
	assert.Equal(t, "report.md", doc.Filename)
	assert.Equal(t, int64(2048), doc.SizeBytes)
	assert.Equal(t, now, doc.CreatedAt)
	assert.Equal(t, now, doc.UpdatedAt)
}

func TestValidateDocument(t *testing.T) {
	now := time.Now()

	valid := NewDocument("doc-1", "notes.txt", DocumentFormatText, 10, now)
	assert.NoError(t, ValidateDocument(valid))

	assert.Error(t, ValidateDocument(nil))

	noID := NewDocument("", "notes.txt", DocumentFormatText, 10, now)
	assert.Error(t, ValidateDocument(noID))

	noFilename := NewDocument("doc-1", "", DocumentFormatText, 10, now)
	assert.Error(t, ValidateDocument(noFilename))

	badStatus := NewDocument("doc-1", "notes.txt", DocumentFormatText, 10, now)
	badStatus.Status = DocumentStatus("archived")
	assert.Error(t, ValidateDocument(badStatus))

	badFormat := NewDocument("doc-1", "notes.pdf", DocumentFormat("pdf"), 10, now)
	assert.Error(t, ValidateDocument(badFormat))
}

func TestValidateSummaryLength(t *testing.T) {
	assert.NoError(t, ValidateSummaryLength(SummaryLengthBrief))
	assert.NoError(t, ValidateSummaryLength(SummaryLengthStandard))
	assert.NoError(t, ValidateSummaryLength(SummaryLengthDetailed))
	assert.ErrorIs(t, ValidateSummaryLength(SummaryLength("long")), ErrInvalidSummaryLength)
}

func TestRelevancePercent(t *testing.T) {
	assert.Equal(t, 87, RelevancePercent(0.874))
	assert.Equal(t, 88, RelevancePercent(0.875))
	assert.Equal(t, 0, RelevancePercent(0))
	assert.Equal(t, 100, RelevancePercent(1))
}

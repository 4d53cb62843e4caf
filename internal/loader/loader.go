// Package loader extracts plain text from uploaded document files.
package loader

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/docsense-ai/docsense/internal/domain"
)

// Extractor turns an uploaded file into plain text ready for chunking.
type Extractor interface {
	Extract(filename string, content []byte) (text string, format domain.DocumentFormat, err error)
}

// TextExtractor handles plain text and markdown files. Binary formats
// (PDF, DOCX) are rejected as unsupported.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Extract(filename string, content []byte) (string, domain.DocumentFormat, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return "", "", err
	}

	if len(content) == 0 {
		return "", format, domain.ErrEmptyDocument
	}
	if !utf8.Valid(content) || bytes.ContainsRune(content, 0) {
		return "", format, domain.ErrCorruptedInput
	}

	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return "", format, domain.ErrEmptyDocument
	}

	return text, format, nil
}

// DetectFormat maps a filename extension to a document format.
func DetectFormat(filename string) (domain.DocumentFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text", ".log":
		return domain.DocumentFormatText, nil
	case ".md", ".markdown":
		return domain.DocumentFormatMarkdown, nil
	default:
		return "", domain.ErrUnsupportedFormat
	}
}

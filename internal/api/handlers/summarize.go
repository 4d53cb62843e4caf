package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/docsense-ai/docsense/internal/api"
	"github.com/docsense-ai/docsense/internal/domain"
)

type SummaryService interface {
	SummarizeDocument(ctx context.Context, documentID string, length domain.SummaryLength) (*domain.Summary, error)
	SummarizeText(ctx context.Context, text string, length domain.SummaryLength) (*domain.Summary, error)
}

type SummarizeHandler struct {
	svc SummaryService
}

func NewSummarizeHandler(svc SummaryService) *SummarizeHandler {
	return &SummarizeHandler{svc: svc}
}

type SummarizeRequest struct {
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
	Length     string `json:"length"`
}

// Summarize accepts either a document ID or raw text, not both.
func (h *SummarizeHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DocumentID == "" && req.Text == "" {
		api.Error(w, http.StatusBadRequest, "document_id or text is required")
		return
	}
	if req.DocumentID != "" && req.Text != "" {
		api.Error(w, http.StatusBadRequest, "document_id and text are mutually exclusive")
		return
	}

	length := domain.SummaryLength(req.Length)
	if req.Length == "" {
		length = domain.SummaryLengthStandard
	}

	var (
		summary *domain.Summary
		err     error
	)
	if req.DocumentID != "" {
		summary, err = h.svc.SummarizeDocument(r.Context(), req.DocumentID, length)
	} else {
		summary, err = h.svc.SummarizeText(r.Context(), req.Text, length)
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, summary)
}

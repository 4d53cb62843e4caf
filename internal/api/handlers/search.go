package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/docsense-ai/docsense/internal/api"
	"github.com/docsense-ai/docsense/internal/domain"
	"github.com/docsense-ai/docsense/internal/service"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error)
}

type AnswerService interface {
	Ask(ctx context.Context, input service.AskInput) (*domain.Answer, error)
}

type SearchHandler struct {
	search  SearchService
	answers AnswerService
}

func NewSearchHandler(search SearchService, answers AnswerService) *SearchHandler {
	return &SearchHandler{search: search, answers: answers}
}

type SearchRequest struct {
	Query      string  `json:"query"`
	TopK       int     `json:"top_k"`
	MinScore   float32 `json:"min_score"`
	DocumentID string  `json:"document_id"`
	Source     string  `json:"source"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.search.Search(r.Context(), service.SearchInput{
		Query:      req.Query,
		TopK:       req.TopK,
		MinScore:   req.MinScore,
		DocumentID: req.DocumentID,
		Source:     req.Source,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, out)
}

type AskRequest struct {
	Question   string  `json:"question"`
	TopK       int     `json:"top_k"`
	MinScore   float32 `json:"min_score"`
	DocumentID string  `json:"document_id"`
}

func (h *SearchHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.answers.Ask(r.Context(), service.AskInput{
		Question:   req.Question,
		TopK:       req.TopK,
		MinScore:   req.MinScore,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, answer)
}

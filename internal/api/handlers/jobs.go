package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docsense-ai/docsense/internal/api"
	"github.com/docsense-ai/docsense/internal/domain"
)

type JobService interface {
	Submit(ctx context.Context, documentIDs []string, length domain.SummaryLength) (*domain.BatchJob, error)
	Get(ctx context.Context, id string) (*domain.BatchJob, error)
	Cancel(ctx context.Context, id string) error
}

type JobHandler struct {
	svc JobService
}

func NewJobHandler(svc JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

type SubmitJobRequest struct {
	DocumentIDs []string `json:"document_ids"`
	Length      string   `json:"length"`
}

func (h *JobHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	length := domain.SummaryLength(req.Length)
	if req.Length == "" {
		length = domain.SummaryLengthStandard
	}

	job, err := h.svc.Submit(r.Context(), req.DocumentIDs, length)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, job)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	job, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, job)
}

func (h *JobHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Cancel(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	job, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, job)
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docsense-ai/docsense/internal/api"
	"github.com/docsense-ai/docsense/internal/api/handlers"
	"github.com/docsense-ai/docsense/internal/api/middleware"
)

type RouterConfig struct {
	// APIKey enables bearer authentication when non-empty.
	APIKey           string
	DocumentHandler  *handlers.DocumentHandler
	SearchHandler    *handlers.SearchHandler
	SummarizeHandler *handlers.SummarizeHandler
	JobHandler       *handlers.JobHandler
	StatsHandler     *handlers.StatsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 10 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.StaticBearerAuth(cfg.APIKey))

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", cfg.DocumentHandler.Ingest)
			r.Get("/", cfg.DocumentHandler.List)
			r.Get("/{id}", cfg.DocumentHandler.Get)
			r.Delete("/{id}", cfg.DocumentHandler.Delete)
			r.Delete("/", cfg.DocumentHandler.DeleteAll)
		})

		r.Post("/search", cfg.SearchHandler.Search)
		r.Post("/search/answer", cfg.SearchHandler.Ask)

		r.Post("/summarize", cfg.SummarizeHandler.Summarize)

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/summarize", cfg.JobHandler.Submit)
			r.Get("/{id}", cfg.JobHandler.Get)
			r.Post("/{id}/cancel", cfg.JobHandler.Cancel)
		})

		r.Get("/stats", cfg.StatsHandler.Get)
	})

	return r
}

package httpapi

import (
	"net/http"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func newRouter(log logger.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, AccessLog(log))
	return r
}

// NewIngestRouter serves the upload front door.
func NewIngestRouter(h *IngestHandler, log logger.Logger) http.Handler {
	r := newRouter(log)
	r.Get("/healthz", h.Health)
	r.Post("/transcribe", h.Transcribe)
	return r
}

// NewWorkerRouter serves the trigger, listing and notification endpoints.
func NewWorkerRouter(h *WorkerHandler, log logger.Logger) http.Handler {
	r := newRouter(log)
	r.Get("/healthz", h.Health)
	r.Post("/record", h.Record)
	r.Get("/sites", h.Sites)
	r.Get("/directories/{site_id}", h.Directories)
	r.Get("/ws/{client_id}", h.Channel)
	return r
}

package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/KugaChihiro/vr-queue/internal/delivery"
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/internal/notify"
	"github.com/KugaChihiro/vr-queue/internal/tasks"
	"github.com/KugaChihiro/vr-queue/internal/worker"
	"github.com/go-chi/chi/v5"
)

const (
	sitesErrorPrefix       = "サイト取得中にエラーが発生しました: "
	directoriesErrorPrefix = "ディレクトリ取得中にエラーが発生しました: "
)

var errDeliveryDisabled = errors.New("delivery is not configured")

// Dispatcher starts pipeline runs from the queue.
type Dispatcher interface {
	DispatchOne(ctx context.Context) (*tasks.Task, error)
	ActiveTasks() int
}

// WorkerHandler exposes the worker's trigger, listing and notification endpoints.
type WorkerHandler struct {
	dispatcher Dispatcher
	gateway    delivery.Gateway
	channels   notify.Handler
	logger     logger.Logger
}

// NewWorkerHandler creates a WorkerHandler. gateway may be nil when delivery is disabled.
func NewWorkerHandler(d Dispatcher, gateway delivery.Gateway, channels notify.Handler, log logger.Logger) *WorkerHandler {
	return &WorkerHandler{
		dispatcher: d,
		gateway:    gateway,
		channels:   channels,
		logger:     log,
	}
}

func (h *WorkerHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"active_tasks": h.dispatcher.ActiveTasks(),
	})
}

// Record dequeues one job and starts it in the background.
func (h *WorkerHandler) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	task, err := h.dispatcher.DispatchOne(ctx)
	if errors.Is(err, worker.ErrNoCapacity) {
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if err != nil {
		h.logger.Error(ctx, "Dispatch failed: %+v", err)
		writeTrace(w, http.StatusInternalServerError, err)
		return
	}
	if task == nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "no pending jobs"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "processing started",
		"task_id": task.ID,
	})
}

func (h *WorkerHandler) Sites(w http.ResponseWriter, r *http.Request) {
	if h.gateway == nil {
		writeDetail(w, http.StatusInternalServerError, sitesErrorPrefix+errDeliveryDisabled.Error())
		return
	}
	sites, err := h.gateway.ListSites(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "List sites failed: %v", err)
		writeDetail(w, http.StatusInternalServerError, sitesErrorPrefix+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

func (h *WorkerHandler) Directories(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "site_id")
	if h.gateway == nil {
		writeDetail(w, http.StatusInternalServerError, directoriesErrorPrefix+errDeliveryDisabled.Error())
		return
	}
	folders, err := h.gateway.ListFolders(r.Context(), siteID)
	if err != nil {
		h.logger.Error(r.Context(), "List folders of %s failed: %v", siteID, err)
		writeDetail(w, http.StatusInternalServerError, directoriesErrorPrefix+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

// Channel upgrades to the client's notification channel.
func (h *WorkerHandler) Channel(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "client_id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, errors.New("client_id is required"))
		return
	}
	h.channels.ServeClient(w, r, clientID)
}

package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/KugaChihiro/vr-queue/internal/ingestion"
	"github.com/KugaChihiro/vr-queue/internal/logger"
)

const multipartMemory = 32 << 20

// IngestHandler accepts recordings over multipart upload.
type IngestHandler struct {
	service        ingestion.Service
	maxUploadBytes int64
	logger         logger.Logger
}

// NewIngestHandler creates an IngestHandler. maxUploadBytes <= 0 means no limit.
func NewIngestHandler(svc ingestion.Service, maxUploadBytes int64, log logger.Logger) *IngestHandler {
	return &IngestHandler{
		service:        svc,
		maxUploadBytes: maxUploadBytes,
		logger:         log,
	}
}

func (h *IngestHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Transcribe takes the form fields file, client_id, project and project_directory.
func (h *IngestHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", h.maxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("file is required: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	desc, err := h.service.Ingest(ctx, ingestion.Upload{
		FileName:         header.Filename,
		Data:             data,
		Project:          r.FormValue("project"),
		ProjectDirectory: r.FormValue("project_directory"),
		ClientID:         r.FormValue("client_id"),
	})
	switch {
	case errors.Is(err, ingestion.ErrUnsupportedFormat):
		writeError(w, http.StatusUnsupportedMediaType, err)
		return
	case errors.Is(err, ingestion.ErrMissingField):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		h.logger.Error(ctx, "Ingest failed: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "upload accepted, processing will start shortly",
		"file_path": desc.SourceReference,
		"client_id": desc.ClientID,
	})
}

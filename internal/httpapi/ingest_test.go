package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KugaChihiro/vr-queue/internal/blobstore"
	"github.com/KugaChihiro/vr-queue/internal/ingestion"
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/internal/queue"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, fileName string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("media-bytes"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newIngestServer(t *testing.T) (http.Handler, queue.Mediator) {
	t.Helper()
	store, err := blobstore.NewLocal(t.TempDir())
	require.NoError(t, err)
	q, err := queue.NewLocal(queue.LocalOptions{InMemory: true, Clock: clockwork.NewFakeClock()}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })

	h := NewIngestHandler(ingestion.New(store, q, logger.Nop()), 1<<20, logger.Nop())
	return NewIngestRouter(h, logger.Nop()), q
}

var jobFields = map[string]string{"project": "P", "project_directory": "D", "client_id": "C1"}

func TestTranscribeAccepted(t *testing.T) {
	router, q := newIngestServer(t)
	body, ct := multipartBody(t, "rec.mp4", jobFields)

	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "C1", resp["client_id"])
	assert.NotEmpty(t, resp["message"])

	msg, err := q.Dequeue(context.Background(), 0)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "rec.mp4", msg.Descriptor.BlobName())
	assert.Equal(t, "C1", msg.Descriptor.ClientID)
}

func TestTranscribeRejected(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		fields map[string]string
		code   int
	}{
		{"unsupported format", "notes.txt", jobFields, http.StatusUnsupportedMediaType},
		{"missing file", "", jobFields, http.StatusBadRequest},
		{"missing project", "rec.mp4", map[string]string{"project_directory": "D"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, q := newIngestServer(t)
			body, ct := multipartBody(t, tt.file, tt.fields)

			req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)

			msg, err := q.Dequeue(context.Background(), 0)
			require.NoError(t, err)
			assert.Nil(t, msg, "rejected uploads are never enqueued")
		})
	}
}

func TestIngestHealth(t *testing.T) {
	router, _ := newIngestServer(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

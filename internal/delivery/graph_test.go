package delivery

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(t *testing.T, mux *http.ServeMux) Gateway {
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewWithClient(srv.URL+"/v1.0/", srv.Client(), logger.Nop())
}

func TestListSites(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1.0/sites", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "*", r.URL.Query().Get("search"))
		_, _ = io.WriteString(w, `{"value":[{"id":"s1","name":"proj","displayName":"Project","webUrl":"https://x/sites/proj"}]}`)
	})
	g := newGraph(t, mux)

	sites, err := g.ListSites(context.Background())
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, Site{ID: "s1", Name: "proj", DisplayName: "Project", WebURL: "https://x/sites/proj"}, sites[0])
}

func TestListSitesError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1.0/sites", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	g := newGraph(t, mux)

	_, err := g.ListSites(context.Background())
	assert.True(t, errors.Is(err, ErrListing))
	assert.Contains(t, err.Error(), "403")
}

func TestListFoldersSkipsFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1.0/sites/{id}/drive/root/children", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "host,abc,def", r.PathValue("id"))
		_, _ = io.WriteString(w, `{"value":[
			{"id":"f1","name":"議事録","folder":{"childCount":2}},
			{"id":"x1","name":"readme.txt","file":{}},
			{"id":"f2","name":"Specs","folder":{}}
		]}`)
	})
	g := newGraph(t, mux)

	folders, err := g.ListFolders(context.Background(), "host,abc,def")
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "議事録", folders[0].Name)
	assert.Equal(t, "f2", folders[1].ID)

	_, err = g.ListFolders(context.Background(), "")
	assert.True(t, errors.Is(err, ErrListing))
}

func TestUploadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rec_summary.docx")
	require.NoError(t, os.WriteFile(path, []byte("docx-bytes"), 0o644))

	var gotPath string
	var gotBody []byte
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v1.0/sites/", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"new"}`)
	})
	g := newGraph(t, mux)

	require.NoError(t, g.UploadFile(context.Background(), "s1", "Meetings/2024", path))
	assert.Equal(t, "/v1.0/sites/s1/drive/root:/Meetings/2024/rec_summary.docx:/content", gotPath)
	assert.Equal(t, "docx-bytes", string(gotBody))
}

func TestUploadFileFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v1.0/sites/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusInsufficientStorage)
	})
	g := newGraph(t, mux)

	path := filepath.Join(t.TempDir(), "a.docx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	tests := []struct {
		name string
		site string
		path string
	}{
		{"server rejects", "s1", path},
		{"missing file", "s1", filepath.Join(t.TempDir(), "missing.docx")},
		{"empty site", "", path},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.UploadFile(context.Background(), tt.site, "D", tt.path)
			assert.True(t, errors.Is(err, ErrDelivery), "got %v", err)
		})
	}
}

func TestEscapeItemPath(t *testing.T) {
	assert.Equal(t, "a.docx", escapeItemPath("", "a.docx"))
	assert.Equal(t, "A/B%20C/x%20y.docx", escapeItemPath("/A/B C/", "x y.docx"))
}

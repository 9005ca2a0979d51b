package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/blobstore"
	"github.com/KugaChihiro/vr-queue/internal/delivery"
	"github.com/KugaChihiro/vr-queue/internal/document"
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/internal/media"
	"github.com/KugaChihiro/vr-queue/internal/models"
	"github.com/KugaChihiro/vr-queue/internal/notify"
	"github.com/KugaChihiro/vr-queue/internal/summarizer"
	"github.com/KugaChihiro/vr-queue/internal/transcription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory blobstore that can fail selected operations.
type memStore struct {
	mu         sync.Mutex
	blobs      map[string][]byte
	deletes    []string
	failUpload bool
	failDelete map[string]int
}

func newMemStore(seed map[string][]byte) *memStore {
	return &memStore{blobs: seed, failDelete: map[string]int{}}
}

func (s *memStore) Upload(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpload {
		return "", fmt.Errorf("%w: quota", blobstore.ErrUpload)
	}
	s.blobs[name] = data
	return "https://store/cont/" + name, nil
}

func (s *memStore) Download(_ context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", blobstore.ErrDownload, name)
	}
	return data, nil
}

func (s *memStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[name] > 0 {
		s.failDelete[name]--
		return fmt.Errorf("%w: transient", blobstore.ErrDelete)
	}
	s.deletes = append(s.deletes, name)
	delete(s.blobs, name)
	return nil
}

func (s *memStore) remaining() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for name := range s.blobs {
		names = append(names, name)
	}
	return names
}

type fakeExtractor struct{ err error }

func (f *fakeExtractor) Extract(_ context.Context, c models.MediaArtifact) (models.MediaArtifact, error) {
	if f.err != nil {
		return models.MediaArtifact{}, f.err
	}
	return models.MediaArtifact{Name: media.AudioName(c.Name), Bytes: []byte("RIFF"), Kind: models.ArtifactAudio}, nil
}

type fakeTranscriber struct {
	submitErr error
	awaitErr  error
	fetchErr  error
	gotReq    transcription.Request
}

func (f *fakeTranscriber) Submit(_ context.Context, req transcription.Request) (models.TranscriptionJob, error) {
	f.gotReq = req
	if f.submitErr != nil {
		return models.TranscriptionJob{}, f.submitErr
	}
	return models.TranscriptionJob{JobURL: "https://speech/jobs/1", Status: models.TranscriptionNotStarted}, nil
}

func (f *fakeTranscriber) Poll(_ context.Context, job models.TranscriptionJob) (models.TranscriptionJob, error) {
	return job, nil
}

func (f *fakeTranscriber) AwaitCompletion(context.Context, models.TranscriptionJob, int, time.Duration) (string, error) {
	if f.awaitErr != nil {
		return "", f.awaitErr
	}
	return "https://speech/jobs/1/files", nil
}

func (f *fakeTranscriber) FetchResult(context.Context, string) (string, error) {
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	return "本日の議題は予算です。", nil
}

type fakeSummarizer struct{ err error }

func (f *fakeSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "# 要約\n- " + transcript, nil
}

type failingProducer struct{}

func (failingProducer) Render(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: disk full", document.ErrRender)
}

func (failingProducer) Cleanup(context.Context, string) {}

// recordingGateway checks that the document exists when delivery happens.
type recordingGateway struct {
	err         error
	site        string
	folder      string
	path        string
	existedThen bool
}

func (g *recordingGateway) ListSites(context.Context) ([]delivery.Site, error) { return nil, nil }

func (g *recordingGateway) ListFolders(context.Context, string) ([]delivery.Folder, error) {
	return nil, nil
}

func (g *recordingGateway) UploadFile(_ context.Context, site, folder, path string) error {
	g.site, g.folder, g.path = site, folder, path
	_, err := os.Stat(path)
	g.existedThen = err == nil
	return g.err
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  map[string][]string
	known map[string]bool
}

func (n *recordingNotifier) Notify(_ context.Context, clientID, text string) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.known[clientID] {
		return false, nil
	}
	n.sent[clientID] = append(n.sent[clientID], text)
	return true, nil
}

type harness struct {
	store    *memStore
	extract  *fakeExtractor
	speech   *fakeTranscriber
	summary  *fakeSummarizer
	gateway  *recordingGateway
	notifier *recordingNotifier
	tempDir  string
	deps     Deps
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		store:    newMemStore(map[string][]byte{"rec.mp4": []byte("mp4-bytes")}),
		extract:  &fakeExtractor{},
		speech:   &fakeTranscriber{},
		summary:  &fakeSummarizer{},
		gateway:  &recordingGateway{},
		notifier: &recordingNotifier{sent: map[string][]string{}, known: map[string]bool{"C1": true}},
		tempDir:  t.TempDir(),
	}
	h.deps = Deps{
		Store:       h.store,
		Extractor:   h.extract,
		Transcriber: h.speech,
		Summarizer:  h.summary,
		Documents:   document.New(h.tempDir, logger.Nop()),
		Delivery:    h.gateway,
		Notifier:    h.notifier,
	}
	return h
}

func (h *harness) run(desc models.JobDescriptor) (models.PipelineResult, error) {
	o := New(h.deps, Options{Language: "ja-JP", Diarization: true, PunctuationMode: "DictatedAndAutomatic"}, logger.Nop())
	return o.Run(context.Background(), desc)
}

func (h *harness) leftoverFiles(t *testing.T) []string {
	var files []string
	err := filepath.WalkDir(h.tempDir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files = append(files, path)
		}
		return err
	})
	require.NoError(t, err)
	return files
}

var testDescriptor = models.JobDescriptor{
	Project:          "P",
	ProjectDirectory: "D",
	SourceReference:  "https://store/cont/rec.mp4",
	ClientID:         "C1",
}

func TestRunSuccess(t *testing.T) {
	h := newHarness(t)

	result, err := h.run(testDescriptor)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Transcript)
	assert.NotEmpty(t, result.Summary)
	assert.Equal(t, "rec_summary.docx", filepath.Base(result.DocumentPath))

	assert.True(t, h.gateway.existedThen, "document must exist when delivery is attempted")
	assert.Equal(t, "P", h.gateway.site)
	assert.Equal(t, "D", h.gateway.folder)
	assert.Equal(t, result.DocumentPath, h.gateway.path)

	assert.Equal(t, "https://store/cont/rec.wav", h.speech.gotReq.MediaURL)
	assert.Equal(t, "ja-JP", h.speech.gotReq.Language)

	assert.Equal(t, []string{result.Summary}, h.notifier.sent["C1"])

	assert.Empty(t, h.store.remaining(), "no blobs may outlive the run")
	assert.Equal(t, []string{"rec.mp4", "rec.wav"}, h.store.deletes)
	assert.Empty(t, h.leftoverFiles(t))
}

func TestRunFailuresLeaveNoBlobs(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(h *harness)
		stage    Stage
		sentinel error
	}{
		{
			name:     "missing source",
			setup:    func(h *harness) { h.store.blobs = map[string][]byte{} },
			stage:    StageDownload,
			sentinel: blobstore.ErrDownload,
		},
		{
			name:     "extraction",
			setup:    func(h *harness) { h.extract.err = fmt.Errorf("%w: exit 1", media.ErrExtraction) },
			stage:    StageExtract,
			sentinel: media.ErrExtraction,
		},
		{
			name:     "audio upload",
			setup:    func(h *harness) { h.store.failUpload = true },
			stage:    StageUpload,
			sentinel: blobstore.ErrUpload,
		},
		{
			name:     "submission",
			setup:    func(h *harness) { h.speech.submitErr = fmt.Errorf("%w: 401", transcription.ErrSubmission) },
			stage:    StageTranscribe,
			sentinel: transcription.ErrSubmission,
		},
		{
			name:     "job failed",
			setup:    func(h *harness) { h.speech.awaitErr = fmt.Errorf("%w: Failed", transcription.ErrJobFailed) },
			stage:    StageTranscribe,
			sentinel: transcription.ErrJobFailed,
		},
		{
			name:     "job timeout",
			setup:    func(h *harness) { h.speech.awaitErr = fmt.Errorf("%w: 30 attempts", transcription.ErrJobTimeout) },
			stage:    StageTranscribe,
			sentinel: transcription.ErrJobTimeout,
		},
		{
			name:     "result unavailable",
			setup:    func(h *harness) { h.speech.fetchErr = fmt.Errorf("%w: empty", transcription.ErrResultUnavailable) },
			stage:    StageTranscribe,
			sentinel: transcription.ErrResultUnavailable,
		},
		{
			name:     "summarization",
			setup:    func(h *harness) { h.summary.err = fmt.Errorf("%w: 500", summarizer.ErrSummarization) },
			stage:    StageSummarize,
			sentinel: summarizer.ErrSummarization,
		},
		{
			name:     "render",
			setup:    func(h *harness) { h.deps.Documents = failingProducer{} },
			stage:    StageRender,
			sentinel: document.ErrRender,
		},
		{
			name:     "delivery",
			setup:    func(h *harness) { h.gateway.err = fmt.Errorf("%w: 403", delivery.ErrDelivery) },
			stage:    StageDeliver,
			sentinel: delivery.ErrDelivery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)

			_, err := h.run(testDescriptor)
			require.Error(t, err)

			var stageErr *StageError
			require.True(t, errors.As(err, &stageErr))
			assert.Equal(t, tt.stage, stageErr.Stage)
			assert.NotEmpty(t, stageErr.JobID)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)

			assert.Empty(t, h.store.remaining(), "no blobs may outlive the run")
			assert.Empty(t, h.leftoverFiles(t), "no local documents may outlive the run")
			assert.Empty(t, h.notifier.sent["C1"], "failed runs do not push a summary")

			seen := map[string]int{}
			for _, name := range h.store.deletes {
				seen[name]++
			}
			for name, n := range seen {
				assert.Equal(t, 1, n, "blob %s deleted more than once", name)
			}
		})
	}
}

func TestRunRetriesFailedDeleteAtEnd(t *testing.T) {
	h := newHarness(t)
	h.store.failDelete["rec.mp4"] = 1

	_, err := h.run(testDescriptor)
	require.NoError(t, err)
	assert.Empty(t, h.store.remaining())
}

func TestRunCleanupFailureDoesNotMaskError(t *testing.T) {
	h := newHarness(t)
	h.summary.err = fmt.Errorf("%w: 500", summarizer.ErrSummarization)
	h.store.failDelete["rec.wav"] = 5

	_, err := h.run(testDescriptor)
	assert.True(t, errors.Is(err, summarizer.ErrSummarization))
	assert.False(t, errors.Is(err, blobstore.ErrDelete))
}

func TestRunWithoutOptionalCollaborators(t *testing.T) {
	h := newHarness(t)
	h.deps.Delivery = nil
	h.deps.Notifier = nil

	result, err := h.run(testDescriptor)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Summary)
	assert.Empty(t, h.store.remaining())
}

func TestRunUnknownClientIsNotAnError(t *testing.T) {
	h := newHarness(t)
	desc := testDescriptor
	desc.ClientID = "nobody"

	_, err := h.run(desc)
	require.NoError(t, err)
	assert.Empty(t, h.notifier.sent)
}

func TestRunInvalidReference(t *testing.T) {
	h := newHarness(t)
	desc := testDescriptor
	desc.SourceReference = ""

	_, err := h.run(desc)
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageDownload, stageErr.Stage)
	assert.True(t, errors.Is(err, blobstore.ErrInvalidName))
	assert.Len(t, h.store.remaining(), 1, "an unresolvable reference touches nothing")
}

func TestRunNotifiesRegisteredChannelOnce(t *testing.T) {
	h := newHarness(t)
	reg := notify.NewRegistry()
	defer reg.Close()
	h.deps.Notifier = reg

	ch := &countingChannel{}
	require.NoError(t, reg.Register("C1", ch))

	result, err := h.run(testDescriptor)
	require.NoError(t, err)
	assert.Equal(t, []string{result.Summary}, ch.sent)
}

type countingChannel struct{ sent []string }

func (c *countingChannel) Send(_ context.Context, text string) error {
	c.sent = append(c.sent, text)
	return nil
}

func (c *countingChannel) Close() error { return nil }

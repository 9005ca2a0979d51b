package transcription

import (
	"context"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/models"
)

// Request describes one transcription submission.
type Request struct {
	MediaURL        string
	Language        string
	Diarization     bool
	PunctuationMode string
}

// Client drives a long-running remote transcription job.
type Client interface {
	// Submit creates the remote job and returns its handle.
	Submit(ctx context.Context, req Request) (models.TranscriptionJob, error)
	// Poll performs a single status check.
	Poll(ctx context.Context, job models.TranscriptionJob) (models.TranscriptionJob, error)
	// AwaitCompletion polls every interval, at most maxAttempts times, and
	// returns the result listing URL once the job succeeded.
	AwaitCompletion(ctx context.Context, job models.TranscriptionJob, maxAttempts int, interval time.Duration) (string, error)
	// FetchResult resolves the listing and returns the combined display text.
	FetchResult(ctx context.Context, resultListingURL string) (string, error)
}

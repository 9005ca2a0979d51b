package transcription

import (
	"net/http"
	"strings"
	"time"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/jonboulle/clockwork"
)

const apiPath = "/speechtotext/v3.2/transcriptions"

// Options configures the speech REST client.
type Options struct {
	Endpoint   string
	Key        string
	HTTPClient *http.Client
	Clock      clockwork.Clock
}

type implClient struct {
	endpoint   string
	key        string
	httpClient *http.Client
	clock      clockwork.Clock
	logger     logger.Logger
}

// New creates a Client for the batch transcription REST API.
func New(opts Options, log logger.Logger) Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &implClient{
		endpoint:   strings.TrimRight(opts.Endpoint, "/"),
		key:        opts.Key,
		httpClient: httpClient,
		clock:      clock,
		logger:     log,
	}
}

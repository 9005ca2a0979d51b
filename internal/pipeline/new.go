package pipeline

import (
	"time"

	"github.com/KugaChihiro/vr-queue/internal/blobstore"
	"github.com/KugaChihiro/vr-queue/internal/config"
	"github.com/KugaChihiro/vr-queue/internal/delivery"
	"github.com/KugaChihiro/vr-queue/internal/document"
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/internal/media"
	"github.com/KugaChihiro/vr-queue/internal/notify"
	"github.com/KugaChihiro/vr-queue/internal/summarizer"
	"github.com/KugaChihiro/vr-queue/internal/transcription"
)

// Deps are the collaborators of a run. Delivery and Notifier may be nil.
type Deps struct {
	Store       blobstore.Store
	Extractor   media.Extractor
	Transcriber transcription.Client
	Summarizer  summarizer.Summarizer
	Documents   document.Producer
	Delivery    delivery.Gateway
	Notifier    notify.Notifier
}

// Options tune the transcription step.
type Options struct {
	Language        string
	Diarization     bool
	PunctuationMode string
	PollInterval    time.Duration
	MaxAttempts     int
}

// OptionsFromConfig reads Options from the speech section.
func OptionsFromConfig(cfg config.SpeechConfig) Options {
	opts := Options{
		Language:        cfg.Locale,
		Diarization:     true,
		PunctuationMode: cfg.PunctuationMode,
		PollInterval:    cfg.PollInterval,
		MaxAttempts:     cfg.MaxAttempts,
	}
	if cfg.Diarization != nil {
		opts.Diarization = *cfg.Diarization
	}
	return opts
}

type implOrchestrator struct {
	deps   Deps
	opts   Options
	logger logger.Logger
}

// New creates a new Orchestrator instance
func New(deps Deps, opts Options, log logger.Logger) Orchestrator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 30
	}
	return &implOrchestrator{
		deps:   deps,
		opts:   opts,
		logger: log,
	}
}

package media

import (
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/KugaChihiro/vr-queue/pkg/executor"
)

// Options configures the ffmpeg based extractor.
type Options struct {
	BinaryPath string
	SampleRate int
	Channels   int
	TempDir    string
}

type implExtractor struct {
	opts     Options
	executor executor.Executor
	logger   logger.Logger
}

// New creates a new Extractor instance
func New(opts Options, exec executor.Executor, log logger.Logger) Extractor {
	if opts.BinaryPath == "" {
		opts.BinaryPath = "ffmpeg"
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = 16000
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	return &implExtractor{
		opts:     opts,
		executor: exec,
		logger:   log,
	}
}

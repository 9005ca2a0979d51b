package document

import "github.com/KugaChihiro/vr-queue/internal/logger"

type implProducer struct {
	tempDir string
	logger  logger.Logger
}

// New creates a Producer that writes documents under tempDir.
func New(tempDir string, log logger.Logger) Producer {
	return &implProducer{
		tempDir: tempDir,
		logger:  log,
	}
}

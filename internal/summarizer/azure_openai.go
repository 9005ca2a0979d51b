package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/tmc/langchaingo/llms"
)

type azureOpenAISummarizer struct {
	llm    llms.Model
	logger logger.Logger
}

func (s *azureOpenAISummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	prompt, err := buildPrompt(transcript)
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "Summarizing transcript (%d chars)", len(transcript))

	text, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummarization, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrSummarization)
	}
	return text, nil
}

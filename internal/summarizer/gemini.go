package summarizer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/KugaChihiro/vr-queue/internal/logger"
	"google.golang.org/genai"
)

type geminiSummarizer struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	logger     logger.Logger
	model      string
}

// Summarize sends the transcript to Gemini and returns the summary text.
// Rotates API keys on 429 / quota errors.
func (s *geminiSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	prompt, err := buildPrompt(transcript)
	if err != nil {
		return "", err
	}

	attempts := len(s.apiKeys)
	var lastErr error

	for range attempts {
		idx, key := s.key()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			s.rotateKey(idx)
			continue
		}

		result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
		if err != nil {
			if isRateLimited(err) {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				s.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("%w: generate content: %w", ErrSummarization, err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text strings.Builder
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if out := strings.TrimSpace(text.String()); out != "" {
				return out, nil
			}
		}

		return "", fmt.Errorf("%w: empty response from Gemini", ErrSummarization)
	}

	return "", fmt.Errorf("%w: all API keys exhausted: %w", ErrSummarization, lastErr)
}

func (s *geminiSummarizer) key() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey, s.apiKeys[s.currentKey]
}

// rotateKey advances past the key at idx unless another job already did.
func (s *geminiSummarizer) rotateKey(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == idx {
		s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

package summarizer

import (
	"fmt"
	"net/http"

	"github.com/KugaChihiro/vr-queue/internal/config"
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"github.com/tmc/langchaingo/llms/openai"
)

// New builds the Summarizer selected by cfg.Provider.
func New(cfg config.SummarizerConfig, log logger.Logger) (Summarizer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(cfg.GeminiKeys, cfg.Model, log)
	case config.ProviderAzureOpenAI, "":
		return NewAzureOpenAI(cfg.Endpoint, cfg.Key, cfg.Deployment, cfg.APIVersion, nil, log)
	default:
		return nil, fmt.Errorf("unsupported summarizer provider %q", cfg.Provider)
	}
}

// NewAzureOpenAI creates a Summarizer that calls an Azure OpenAI chat deployment.
func NewAzureOpenAI(endpoint, key, deployment, apiVersion string, httpClient *http.Client, log logger.Logger) (Summarizer, error) {
	opts := []openai.Option{
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithBaseURL(endpoint),
		openai.WithToken(key),
		openai.WithModel(deployment),
		openai.WithAPIVersion(apiVersion),
	}
	if httpClient != nil {
		opts = append(opts, openai.WithHTTPClient(httpClient))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create azure openai client: %w", err)
	}
	return &azureOpenAISummarizer{
		llm:    llm,
		logger: log,
	}, nil
}

// NewGemini creates a Summarizer that rotates through the supplied Gemini API keys.
func NewGemini(apiKeys []string, model string, log logger.Logger) (Summarizer, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("at least one gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &geminiSummarizer{
		apiKeys: apiKeys,
		logger:  log,
		model:   model,
	}, nil
}

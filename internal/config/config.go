package config

import (
	"fmt"
	"time"
)

// Backends
const (
	BackendAzure = "azure"
	BackendLocal = "local"

	ProviderAzureOpenAI = "azure-openai"
	ProviderGemini      = "gemini"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	Queue       QueueConfig       `yaml:"queue"`
	Speech      SpeechConfig      `yaml:"speech"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Delivery    DeliveryConfig    `yaml:"delivery"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Worker      WorkerConfig      `yaml:"worker"`
	Ingest      IngestConfig      `yaml:"ingest"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

type StorageConfig struct {
	Backend          string `yaml:"backend"`
	ConnectionString string `yaml:"connection_string"`
	Container        string `yaml:"container"`
	LocalPath        string `yaml:"local_path"`
}

type QueueConfig struct {
	Backend           string        `yaml:"backend"`
	ConnectionString  string        `yaml:"connection_string"`
	Name              string        `yaml:"name"`
	LocalPath         string        `yaml:"local_path"`
	VisibilityTimeout time.Duration `yaml:"visibility_timeout"`
}

type SpeechConfig struct {
	Endpoint        string        `yaml:"endpoint"`
	Key             string        `yaml:"key"`
	Locale          string        `yaml:"locale"`
	Diarization     *bool         `yaml:"diarization"`
	PunctuationMode string        `yaml:"punctuation_mode"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	MaxAttempts     int           `yaml:"max_attempts"`
}

type SummarizerConfig struct {
	Provider   string   `yaml:"provider"`
	Endpoint   string   `yaml:"endpoint"`
	Key        string   `yaml:"key"`
	Deployment string   `yaml:"deployment"`
	APIVersion string   `yaml:"api_version"`
	GeminiKeys []string `yaml:"gemini_keys"`
	Model      string   `yaml:"model"`
}

type DeliveryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TenantID     string `yaml:"tenant_id"`
	GraphBaseURL string `yaml:"graph_base_url"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
}

type PathsConfig struct {
	Temp  string `yaml:"temp"`
	Watch string `yaml:"watch"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type WorkerConfig struct {
	DrainInterval time.Duration `yaml:"drain_interval"`
}

type IngestConfig struct {
	DefaultProject   string `yaml:"default_project"`
	DefaultDirectory string `yaml:"default_directory"`
}

// Validate fills defaults and checks the values every service needs.
func (c *Config) Validate() error {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendAzure
	}
	if c.Queue.Backend == "" {
		c.Queue.Backend = BackendAzure
	}

	switch c.Storage.Backend {
	case BackendAzure:
		if c.Storage.ConnectionString == "" {
			return fmt.Errorf("storage.connection_string is required")
		}
		if c.Storage.Container == "" {
			return fmt.Errorf("storage.container is required")
		}
	case BackendLocal:
		if c.Storage.LocalPath == "" {
			c.Storage.LocalPath = "data/blobs"
		}
	default:
		return fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend)
	}

	switch c.Queue.Backend {
	case BackendAzure:
		if c.Queue.ConnectionString == "" {
			return fmt.Errorf("queue.connection_string is required")
		}
		if c.Queue.Name == "" {
			return fmt.Errorf("queue.name is required")
		}
	case BackendLocal:
		if c.Queue.LocalPath == "" {
			c.Queue.LocalPath = "data/queue"
		}
	default:
		return fmt.Errorf("queue.backend %q is not supported", c.Queue.Backend)
	}

	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Minute
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 5 * time.Minute
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 2 << 30
	}
	if c.Queue.VisibilityTimeout == 0 {
		c.Queue.VisibilityTimeout = time.Hour
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	return nil
}

// MinLease is the shortest queue visibility window the worker accepts. Leases
// are renewed every half window, so shorter ones leave no room for a slow renewal.
const MinLease = 30 * time.Second

// ValidateWorker checks the values only the worker needs and fills pipeline defaults.
func (c *Config) ValidateWorker() error {
	if c.Queue.VisibilityTimeout > 0 && c.Queue.VisibilityTimeout < MinLease {
		return fmt.Errorf("queue.visibility_timeout must be at least %s", MinLease)
	}
	if c.Speech.Endpoint == "" {
		return fmt.Errorf("speech.endpoint is required")
	}
	if c.Speech.Key == "" {
		return fmt.Errorf("speech.key is required")
	}
	if c.Speech.Locale == "" {
		c.Speech.Locale = "ja-JP"
	}
	if c.Speech.Diarization == nil {
		enabled := true
		c.Speech.Diarization = &enabled
	}
	if c.Speech.PunctuationMode == "" {
		c.Speech.PunctuationMode = "DictatedAndAutomatic"
	}
	if c.Speech.PollInterval == 0 {
		c.Speech.PollInterval = 10 * time.Second
	}
	if c.Speech.MaxAttempts == 0 {
		c.Speech.MaxAttempts = 30
	}

	if c.Summarizer.Provider == "" {
		c.Summarizer.Provider = ProviderAzureOpenAI
	}
	switch c.Summarizer.Provider {
	case ProviderAzureOpenAI:
		if c.Summarizer.Endpoint == "" {
			return fmt.Errorf("summarizer.endpoint is required")
		}
		if c.Summarizer.Key == "" {
			return fmt.Errorf("summarizer.key is required")
		}
		if c.Summarizer.Deployment == "" {
			c.Summarizer.Deployment = "gpt-4o"
		}
		if c.Summarizer.APIVersion == "" {
			c.Summarizer.APIVersion = "2024-06-01"
		}
	case ProviderGemini:
		if len(c.Summarizer.GeminiKeys) == 0 {
			return fmt.Errorf("summarizer.gemini_keys is required")
		}
		if c.Summarizer.Model == "" {
			c.Summarizer.Model = "gemini-2.5-flash"
		}
	default:
		return fmt.Errorf("summarizer.provider %q is not supported", c.Summarizer.Provider)
	}

	if c.Delivery.Enabled {
		if c.Delivery.ClientID == "" || c.Delivery.ClientSecret == "" || c.Delivery.TenantID == "" {
			return fmt.Errorf("delivery.client_id, delivery.client_secret and delivery.tenant_id are required")
		}
	}
	if c.Delivery.GraphBaseURL == "" {
		c.Delivery.GraphBaseURL = "https://graph.microsoft.com/v1.0"
	}

	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.FFmpeg.Channels == 0 {
		c.FFmpeg.Channels = 1
	}

	return nil
}

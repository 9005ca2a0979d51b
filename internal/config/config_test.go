package config

import (
	"os"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid azure config",
			config: Config{
				Storage: StorageConfig{ConnectionString: "UseDevelopmentStorage=true", Container: "container-vr-dev"},
				Queue:   QueueConfig{ConnectionString: "UseDevelopmentStorage=true", Name: "vr-queue"},
			},
			wantErr: false,
		},
		{
			name: "missing container",
			config: Config{
				Storage: StorageConfig{ConnectionString: "UseDevelopmentStorage=true"},
				Queue:   QueueConfig{ConnectionString: "UseDevelopmentStorage=true", Name: "vr-queue"},
			},
			wantErr: true,
		},
		{
			name: "missing queue name",
			config: Config{
				Storage: StorageConfig{ConnectionString: "UseDevelopmentStorage=true", Container: "c"},
				Queue:   QueueConfig{ConnectionString: "UseDevelopmentStorage=true"},
			},
			wantErr: true,
		},
		{
			name: "local backends need nothing",
			config: Config{
				Storage: StorageConfig{Backend: BackendLocal},
				Queue:   QueueConfig{Backend: BackendLocal},
			},
			wantErr: false,
		},
		{
			name: "unknown backend",
			config: Config{
				Storage: StorageConfig{Backend: "s3"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{
		Storage: StorageConfig{Backend: BackendLocal},
		Queue:   QueueConfig{Backend: BackendLocal},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Server.Port != "8000" {
		t.Errorf("Port = %v, want 8000", cfg.Server.Port)
	}
	if cfg.Performance.MaxConcurrent != 2 {
		t.Errorf("MaxConcurrent = %v, want 2", cfg.Performance.MaxConcurrent)
	}
	if cfg.Queue.VisibilityTimeout != time.Hour {
		t.Errorf("VisibilityTimeout = %v, want 1h", cfg.Queue.VisibilityTimeout)
	}
}

func TestValidateWorker(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "azure openai",
			config: Config{
				Speech:     SpeechConfig{Endpoint: "https://speech", Key: "k"},
				Summarizer: SummarizerConfig{Endpoint: "https://aoai", Key: "k"},
			},
		},
		{
			name: "gemini without keys",
			config: Config{
				Speech:     SpeechConfig{Endpoint: "https://speech", Key: "k"},
				Summarizer: SummarizerConfig{Provider: ProviderGemini},
			},
			wantErr: true,
		},
		{
			name: "missing speech key",
			config: Config{
				Speech:     SpeechConfig{Endpoint: "https://speech"},
				Summarizer: SummarizerConfig{Endpoint: "https://aoai", Key: "k"},
			},
			wantErr: true,
		},
		{
			name: "lease too short to renew",
			config: Config{
				Queue:      QueueConfig{VisibilityTimeout: 10 * time.Second},
				Speech:     SpeechConfig{Endpoint: "https://speech", Key: "k"},
				Summarizer: SummarizerConfig{Endpoint: "https://aoai", Key: "k"},
			},
			wantErr: true,
		},
		{
			name: "minimum lease",
			config: Config{
				Queue:      QueueConfig{VisibilityTimeout: MinLease},
				Speech:     SpeechConfig{Endpoint: "https://speech", Key: "k"},
				Summarizer: SummarizerConfig{Endpoint: "https://aoai", Key: "k"},
			},
		},
		{
			name: "delivery enabled without secret",
			config: Config{
				Speech:     SpeechConfig{Endpoint: "https://speech", Key: "k"},
				Summarizer: SummarizerConfig{Endpoint: "https://aoai", Key: "k"},
				Delivery:   DeliveryConfig{Enabled: true, ClientID: "id", TenantID: "t"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.ValidateWorker()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWorker() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWorkerDefaults(t *testing.T) {
	cfg := Config{
		Speech:     SpeechConfig{Endpoint: "https://speech", Key: "k"},
		Summarizer: SummarizerConfig{Endpoint: "https://aoai", Key: "k"},
	}
	if err := cfg.ValidateWorker(); err != nil {
		t.Fatalf("ValidateWorker() error = %v", err)
	}

	if cfg.Speech.Locale != "ja-JP" {
		t.Errorf("Locale = %v, want ja-JP", cfg.Speech.Locale)
	}
	if cfg.Speech.Diarization == nil || !*cfg.Speech.Diarization {
		t.Error("Diarization should default to true")
	}
	if cfg.Speech.PollInterval != 10*time.Second || cfg.Speech.MaxAttempts != 30 {
		t.Errorf("poll budget = %v x %d, want 10s x 30", cfg.Speech.PollInterval, cfg.Speech.MaxAttempts)
	}
	if cfg.FFmpeg.SampleRate != 16000 || cfg.FFmpeg.Channels != 1 {
		t.Errorf("ffmpeg = %d Hz / %d ch, want 16000 / 1", cfg.FFmpeg.SampleRate, cfg.FFmpeg.Channels)
	}
}

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
storage:
  backend: "local"
  local_path: "data/blobs"

queue:
  backend: "local"
  visibility_timeout: "30m"

speech:
  poll_interval: "5s"
  max_attempts: 12

logging:
  level: "debug"
  format: "text"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.LocalPath != "data/blobs" {
		t.Errorf("LocalPath = %v, want %v", cfg.Storage.LocalPath, "data/blobs")
	}
	if cfg.Queue.VisibilityTimeout != 30*time.Minute {
		t.Errorf("VisibilityTimeout = %v, want 30m", cfg.Queue.VisibilityTimeout)
	}
	if cfg.Speech.PollInterval != 5*time.Second || cfg.Speech.MaxAttempts != 12 {
		t.Errorf("poll budget = %v x %d, want 5s x 12", cfg.Speech.PollInterval, cfg.Speech.MaxAttempts)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AZ_BLOB_CONNECTION", "conn")
	t.Setenv("AZ_CONTAINER_NAME", "container-vr-dev")
	t.Setenv("CONNECTION_STRING", "qconn")
	t.Setenv("QUEUE_NAME", "vr-queue")
	t.Setenv("GEMINI_API_KEYS", "k1, k2 ,")
	t.Setenv("CLIENT_ID", "id")
	t.Setenv("CLIENT_SECRET", "secret")
	t.Setenv("TENANT_ID", "tenant")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Container != "container-vr-dev" || cfg.Queue.Name != "vr-queue" {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Storage, cfg.Queue)
	}
	if len(cfg.Summarizer.GeminiKeys) != 2 || cfg.Summarizer.GeminiKeys[1] != "k2" {
		t.Errorf("GeminiKeys = %v, want [k1 k2]", cfg.Summarizer.GeminiKeys)
	}
	if !cfg.Delivery.Enabled {
		t.Error("Delivery should be enabled when credentials are present")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

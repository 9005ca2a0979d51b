package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the optional YAML file at path, applies environment overrides and validates.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(c *Config) {
	setString(&c.Storage.ConnectionString, "AZ_BLOB_CONNECTION")
	setString(&c.Storage.Container, "AZ_CONTAINER_NAME")
	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Queue.ConnectionString, "CONNECTION_STRING")
	setString(&c.Queue.Name, "QUEUE_NAME")
	setString(&c.Queue.Backend, "QUEUE_BACKEND")
	setString(&c.Speech.Endpoint, "AZ_SPEECH_ENDPOINT")
	setString(&c.Speech.Key, "AZ_SPEECH_KEY")
	setString(&c.Summarizer.Endpoint, "AZ_OPENAI_ENDPOINT")
	setString(&c.Summarizer.Key, "AZ_OPENAI_KEY")
	setString(&c.Summarizer.Deployment, "AZ_OPENAI_DEPLOYMENT")
	setString(&c.Summarizer.Provider, "SUMMARIZER_PROVIDER")
	setString(&c.Delivery.ClientID, "CLIENT_ID")
	setString(&c.Delivery.ClientSecret, "CLIENT_SECRET")
	setString(&c.Delivery.TenantID, "TENANT_ID")
	setString(&c.Server.Port, "PORT")
	setString(&c.Logging.Level, "LOG_LEVEL")

	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEYS")); v != "" {
		var keys []string
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		c.Summarizer.GeminiKeys = keys
	}
	if c.Delivery.ClientID != "" && c.Delivery.ClientSecret != "" && c.Delivery.TenantID != "" {
		c.Delivery.Enabled = true
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

package delivery

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/KugaChihiro/vr-queue/internal/config"
	"github.com/KugaChihiro/vr-queue/internal/logger"
	"golang.org/x/oauth2/clientcredentials"
)

const graphScope = "https://graph.microsoft.com/.default"

type implGateway struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// New creates a Graph-backed Gateway authenticated with the app's client credentials.
func New(cfg config.DeliveryConfig, log logger.Logger) Gateway {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		Scopes:       []string{graphScope},
	}
	return NewWithClient(cfg.GraphBaseURL, cc.Client(context.Background()), log)
}

// NewWithClient creates a Gateway that sends requests to baseURL using client as-is.
func NewWithClient(baseURL string, client *http.Client, log logger.Logger) Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &implGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  log,
	}
}

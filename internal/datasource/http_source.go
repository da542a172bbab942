package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yourusername/choice-sim/internal/config"
	"github.com/yourusername/choice-sim/internal/logit"
)

// HTTPSource fetches an observation table from an HTTP endpoint returning a
// JSON body of the form {"variables": {"X1": [..], "X2": [..]}}.
type HTTPSource struct {
	name   string
	url    string
	apiKey string
	client *RateLimitedHTTPClient
}

type observationPayload struct {
	Variables map[string][]float64 `json:"variables"`
}

// NewHTTPSource creates an HTTP observation source
func NewHTTPSource(cfg config.HTTPSourceConfig, client *RateLimitedHTTPClient) *HTTPSource {
	return &HTTPSource{
		name:   cfg.Name,
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: client,
	}
}

// Name returns the source name
func (s *HTTPSource) Name() string {
	return s.name
}

// FetchObservations retrieves and decodes the observation table
func (s *HTTPSource) FetchObservations(ctx context.Context) (logit.ObservationTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build observation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch observations from %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("observation endpoint %s returned status %d", s.url, resp.StatusCode)
	}

	var payload observationPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode observation payload: %w", err)
	}
	if len(payload.Variables) == 0 {
		return nil, fmt.Errorf("observation endpoint %s returned no variables", s.url)
	}

	return logit.ObservationTable(payload.Variables), nil
}

// ClientConfigFromSource builds HTTP client settings from source configuration
func ClientConfigFromSource(cfg config.HTTPSourceConfig) HTTPClientConfig {
	clientCfg := DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		clientCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries > 0 {
		clientCfg.MaxRetries = cfg.MaxRetries
	}
	if cfg.RateLimit > 0 {
		clientCfg.RateLimit = cfg.RateLimit
	}
	return clientCfg
}

package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/urbanpulse/sentinel/infra/logger"
	"github.com/urbanpulse/sentinel/infra/resilience"
)

// Client calls the live scenario-execution endpoint.
type Client struct {
	http   *resilience.Client
	url    string
	apiKey string
	log    logger.Logger
}

// NewClient creates a live upstream client.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		http: resilience.NewClient(resilience.Config{
			Name:    "upstream",
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}),
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		log:    logger.New("upstream-client"),
	}
}

// Execute posts the scenario identifier and decodes the arbitrary JSON
// response. The payload's shape is upstream's business; the normalizer
// canonicalizes it.
func (c *Client) Execute(ctx context.Context, name string) (map[string]any, error) {
	body, err := json.Marshal(map[string]string{"scenario": name})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("upstream: execute %q: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream: execute %q: status %d", name, resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("upstream: decode payload: %w", err)
	}
	c.log.Debugf("scenario %s executed, %d top-level fields", name, len(payload))
	return payload, nil
}

// Package procurement implements the order-confirmation boundary. The
// dispatch controller invokes it at most once per accepted attempt.
package procurement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/urbanpulse/sentinel/core/dispatch"
	"github.com/urbanpulse/sentinel/infra/logger"
	"github.com/urbanpulse/sentinel/infra/resilience"
)

// Config tunes the procurement client.
type Config struct {
	URL            string `json:"url"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("procurement url is required")
	}
	return nil
}

// Client confirms purchase orders against the external supply-chain system.
type Client struct {
	http   *resilience.Client
	url    string
	apiKey string
	log    logger.Logger
}

// NewClient creates a procurement client.
func NewClient(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		http: resilience.NewClient(resilience.Config{
			Name:    "procurement",
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}),
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		log:    logger.New("procurement-client"),
	}, nil
}

type orderRequest struct {
	Qty            int    `json:"qty"`
	IdempotencyKey string `json:"idempotency_key"`
}

type orderResponse struct {
	POID   string `json:"po_id"`
	Status string `json:"status"`
}

// ConfirmOrder places one order for the given quantity. Any non-2xx status
// is an error; the caller surfaces it as a dispatch failure.
func (c *Client) ConfirmOrder(ctx context.Context, qty int) (dispatch.Confirmation, error) {
	if qty <= 0 {
		return dispatch.Confirmation{}, fmt.Errorf("procurement: quantity must be positive, got %d", qty)
	}
	body, err := json.Marshal(orderRequest{Qty: qty, IdempotencyKey: uuid.NewString()})
	if err != nil {
		return dispatch.Confirmation{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return dispatch.Confirmation{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return dispatch.Confirmation{}, fmt.Errorf("procurement: confirm order: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return dispatch.Confirmation{}, fmt.Errorf("procurement: confirm order: status %d", resp.StatusCode)
	}

	var or orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return dispatch.Confirmation{}, fmt.Errorf("procurement: decode confirmation: %w", err)
	}
	c.log.Infof("order confirmed: po_id=%s status=%s qty=%d", or.POID, or.Status, qty)
	return dispatch.Confirmation{POID: or.POID, Status: or.Status}, nil
}

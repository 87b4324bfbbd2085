// Package upstream implements the scenario-execution boundary: given a
// scenario identifier, it returns the raw upstream payload the normalizer
// canonicalizes. A live HTTP client and a scenario-backed mock share the
// Connector interface, selected by configuration.
package upstream

import (
	"context"
	"fmt"
	"strings"

	"github.com/urbanpulse/sentinel/scenario"
)

// Connector executes a named scenario against the upstream system and
// returns its decoded JSON payload.
type Connector interface {
	Execute(ctx context.Context, name string) (map[string]any, error)
}

// Config selects and tunes the connector.
type Config struct {
	// Mode is "client" for the live upstream or "mock" for scenario-backed
	// responses.
	Mode string `json:"mode"`
	// URL is the scenario-execution endpoint in client mode.
	URL string `json:"url"`
	// APIKey is sent as x-api-key when set.
	APIKey string `json:"api_key"`
	// ScenarioFile optionally overrides the built-in scenario set in mock
	// mode.
	ScenarioFile string `json:"scenario_file"`
	// TimeoutSeconds bounds one upstream call in client mode.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "mock"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
}

// Validate checks mandatory fields per mode.
func (c Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "mock":
		return nil
	case "client":
		if c.URL == "" {
			return fmt.Errorf("upstream url is required in client mode")
		}
		return nil
	default:
		return fmt.Errorf("unknown upstream mode %q", c.Mode)
	}
}

// NewConnector creates a connector depending on cfg.Mode.
func NewConnector(cfg Config) (Connector, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.ToLower(cfg.Mode) == "mock" {
		defs := scenario.Builtin()
		if cfg.ScenarioFile != "" {
			loaded, err := scenario.Load(cfg.ScenarioFile)
			if err != nil {
				return nil, fmt.Errorf("load scenarios: %w", err)
			}
			defs = loaded
		}
		return NewMock(defs), nil
	}
	return NewClient(cfg), nil
}

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/urbanpulse/sentinel/core/dispatch"
	"github.com/urbanpulse/sentinel/core/risk"
	"github.com/urbanpulse/sentinel/infra/metrics"
	"github.com/urbanpulse/sentinel/infra/notify"
	"github.com/urbanpulse/sentinel/infra/procurement"
	"github.com/urbanpulse/sentinel/infra/upstream"
)

// Config is the root configuration for the sentinel service.
type Config struct {
	Upstream    upstream.Config    `json:"upstream"`
	Procurement procurement.Config `json:"procurement"`
	Dispatch    dispatch.Config    `json:"dispatch"`
	Risk        risk.Config        `json:"risk"`
	Metrics     metrics.Config     `json:"metrics"`
	Notify      notify.Config      `json:"notify"`
	Cycle       CycleConfig        `json:"cycle"`
}

// CycleConfig drives the optional periodic cycle runner. When Scenario is
// empty the service only reacts to explicit invocations.
type CycleConfig struct {
	Scenario        string `json:"scenario"`
	IntervalSeconds int    `json:"interval_seconds"`
	// Surface identifies the acting caller context passed to the dispatch
	// controller. Leave empty to run cycles in observe-only mode.
	Surface string `json:"surface"`
}

// SetDefaults applies sane defaults.
func (c *CycleConfig) SetDefaults() {
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = 60
	}
}

// Load reads the configuration file and applies environment overrides with
// the SENTINEL_ prefix (e.g. SENTINEL_UPSTREAM__MODE=mock).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("SENTINEL_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sentinel_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Upstream.SetDefaults()
	cfg.Dispatch.SetDefaults()
	cfg.Risk.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Notify.SetDefaults()
	cfg.Cycle.SetDefaults()
	if err := cfg.Upstream.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Risk.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Notify.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

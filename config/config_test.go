package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
upstream:
  mode: mock
dispatch:
  cooldown_seconds: 6
  default_qty: 750
risk:
  nudge_policy: spike
metrics:
  prometheus_enabled: true
  prometheus_addr: ":9191"
cycle:
  scenario: severe_haze
  surface: sentinel-daemon
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"upstream mode", cfg.Upstream.Mode, "mock"},
		{"upstream timeout default", cfg.Upstream.TimeoutSeconds, 15},
		{"cooldown", cfg.Dispatch.CooldownSeconds, 6},
		{"default qty", cfg.Dispatch.DefaultQty, 750},
		{"nudge policy", string(cfg.Risk.NudgePolicy), "spike"},
		{"prom enabled", cfg.Metrics.PrometheusEnabled, true},
		{"prom addr", cfg.Metrics.PrometheusAddr, ":9191"},
		{"cycle scenario", cfg.Cycle.Scenario, "severe_haze"},
		{"cycle interval default", cfg.Cycle.IntervalSeconds, 60},
		{"cycle surface", cfg.Cycle.Surface, "sentinel-daemon"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "upstream": {"mode": "client", "url": "http://upstream.local/run"},
  "dispatch": {"cooldown_seconds": 4}
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Upstream.Mode != "client" || cfg.Upstream.URL != "http://upstream.local/run" {
		t.Errorf("upstream = %+v", cfg.Upstream)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `{}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"mode", cfg.Upstream.Mode, "mock"},
		{"cooldown", cfg.Dispatch.CooldownSeconds, 4},
		{"default qty", cfg.Dispatch.DefaultQty, 500},
		{"nudge policy", string(cfg.Risk.NudgePolicy), "early-warning"},
		{"prom addr", cfg.Metrics.PrometheusAddr, ":9090"},
		{"interval", cfg.Cycle.IntervalSeconds, 60},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
upstream:
  mode: mock
cycle:
  scenario: low_haze
`)
	t.Setenv("SENTINEL_CYCLE__SCENARIO", "severe_haze")
	t.Setenv("SENTINEL_DISPATCH__COOLDOWN_SECONDS", "9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cycle.Scenario != "severe_haze" {
		t.Errorf("scenario = %q, want env override", cfg.Cycle.Scenario)
	}
	if cfg.Dispatch.CooldownSeconds != 9 {
		t.Errorf("cooldown = %d, want env override 9", cfg.Dispatch.CooldownSeconds)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	if _, err := Load(writeConfig(t, "config.toml", `x = 1`)); err == nil {
		t.Errorf("expected error for unsupported format")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "config.yaml", `
upstream:
  mode: client
`)); err == nil {
		t.Errorf("expected error for client mode without url")
	}
	if _, err := Load(writeConfig(t, "config.yaml", `
risk:
  nudge_policy: sometimes
`)); err == nil {
		t.Errorf("expected error for unknown nudge policy")
	}
}

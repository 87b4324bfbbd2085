// Package scenario defines named demo situations used when the upstream
// scenario-execution boundary runs in mock mode. Definitions load from YAML
// files or from the built-in set.
package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DistrictDef is one district's readings within a scenario.
type DistrictDef struct {
	District      string  `yaml:"district"`
	PSI           float64 `yaml:"psi"`
	WindSpeed     float64 `yaml:"wind_speed"`
	WindDirection string  `yaml:"wind_direction"`
	SpikeFlag     bool    `yaml:"spike_flag,omitempty"`
}

// ForecastDef is a predicted reading within a scenario.
type ForecastDef struct {
	District       string  `yaml:"district"`
	PSIPred        float64 `yaml:"psi_pred"`
	Confidence     float64 `yaml:"confidence"`
	HorizonMinutes int     `yaml:"horizon_minutes"`
}

// Def is one named scenario.
type Def struct {
	Name           string        `yaml:"name"`
	Description    string        `yaml:"description,omitempty"`
	Districts      []DistrictDef `yaml:"districts"`
	Forecasts      []ForecastDef `yaml:"forecasts,omitempty"`
	Autonomous     bool          `yaml:"autonomous,omitempty"`
	RecommendedQty string        `yaml:"recommended_qty,omitempty"`
}

// Load reads scenario definitions from a YAML file keyed by scenario name.
func Load(path string) (map[string]Def, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var defs map[string]Def
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, err
	}
	for name, d := range defs {
		if d.Name == "" {
			d.Name = name
			defs[name] = d
		}
	}
	return defs, nil
}

// Payload renders the scenario as an upstream-shaped JSON object, the same
// shape a live scenario-execution service would return.
func (d Def) Payload(now time.Time) map[string]any {
	maxPSI := 0.0
	var affected []any
	observations := make([]any, 0, len(d.Districts))
	for _, dd := range d.Districts {
		if dd.PSI > maxPSI {
			maxPSI = dd.PSI
		}
		if dd.PSI > 100 {
			affected = append(affected, dd.District)
		}
		observations = append(observations, map[string]any{
			"timestamp":      now.Format(time.RFC3339),
			"district":       dd.District,
			"psi_current":    dd.PSI,
			"wind_speed":     dd.WindSpeed,
			"wind_direction": dd.WindDirection,
			"spike_flag":     dd.SpikeFlag,
		})
	}
	forecasts := make([]any, 0, len(d.Forecasts))
	for _, f := range d.Forecasts {
		start := now.Add(time.Duration(f.HorizonMinutes) * time.Minute)
		forecasts = append(forecasts, map[string]any{
			"district":     f.District,
			"window_start": start.Format(time.RFC3339),
			"window_end":   start.Add(time.Hour).Format(time.RFC3339),
			"psi_pred":     f.PSIPred,
			"confidence":   f.Confidence,
		})
	}

	level, surge := severity(maxPSI)
	payload := map[string]any{
		"status":       "OK",
		"description":  d.Description,
		"observations": observations,
		"forecasts":    forecasts,
		"risk_assessment": map[string]any{
			"risk_level":       level,
			"current_psi":      maxPSI,
			"predicted_surge":  surge,
			"affected_regions": affected,
			"trigger_reason":   fmt.Sprintf("scenario %s", d.Name),
		},
		"healthcare_alerts": map[string]any{
			"clinics_alerted": clinicsFor(affected),
			"alert_message":   fmt.Sprintf("ALERT: prepare for +%d%% patient surge (PSI %.0f)", int(surge*100), maxPSI),
		},
		"supply_chain_actions": map[string]any{
			"autonomous":      d.Autonomous,
			"recommended_qty": d.RecommendedQty,
			"action":          "purchase order recommended",
		},
		"logs": []any{
			map[string]any{"timestamp": now.Format(time.RFC3339), "agent": "sentinel-mock", "action": "run_cycle"},
		},
	}
	return payload
}

func severity(maxPSI float64) (string, float64) {
	switch {
	case maxPSI > 200:
		return "CRITICAL", 0.75
	case maxPSI > 150:
		return "HIGH", 0.45
	case maxPSI > 100:
		return "MODERATE", 0.25
	default:
		return "LOW", 0.05
	}
}

// clinicMapping mirrors the demo clinic directory per district.
var clinicMapping = map[string][]string{
	"central": {"Singapore General Hospital", "Raffles Medical", "Tan Tock Seng Hospital"},
	"east":    {"Changi General Hospital", "Bedok Polyclinic"},
	"north":   {"Khoo Teck Puat Hospital", "Yishun Polyclinic"},
	"south":   {"National University Hospital", "Alexandra Hospital"},
	"west":    {"Ng Teng Fong General Hospital", "Jurong Polyclinic"},
}

func clinicsFor(affected []any) []any {
	var out []any
	for _, a := range affected {
		district, ok := a.(string)
		if !ok {
			continue
		}
		for _, c := range clinicMapping[district] {
			out = append(out, c)
		}
	}
	return out
}

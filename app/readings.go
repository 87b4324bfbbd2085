package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/urbanpulse/sentinel/core/model"
)

// Wire shapes for the optional raw readings an upstream payload may carry.
// Absent or null fields stay nil; the classifier decides how to react.
type observationDTO struct {
	Timestamp      string   `json:"timestamp"`
	District       string   `json:"district"`
	PSI            *float64 `json:"psi_current"`
	PM25           *float64 `json:"pm25_current"`
	WindSpeed      *float64 `json:"wind_speed"`
	WindDirection  *string  `json:"wind_direction"`
	Humidity       *float64 `json:"humidity"`
	Temperature    *float64 `json:"temperature"`
	SpikeFlag      bool     `json:"spike_flag"`
	SpikeMagnitude float64  `json:"spike_magnitude"`
}

type forecastDTO struct {
	District    string  `json:"district"`
	WindowStart string  `json:"window_start"`
	WindowEnd   string  `json:"window_end"`
	PM25Pred    float64 `json:"pm25_pred"`
	PSIPred     float64 `json:"psi_pred"`
	Confidence  float64 `json:"confidence"`
}

// decodeReadings extracts observations and forecasts from the raw payload.
// Both sections are optional; a payload without them yields empty slices.
func decodeReadings(raw map[string]any) ([]model.Observation, []model.Forecast, error) {
	var obsDTOs []observationDTO
	if err := reencode(raw["observations"], &obsDTOs); err != nil {
		return nil, nil, fmt.Errorf("decode observations: %w", err)
	}
	var fcDTOs []forecastDTO
	if err := reencode(raw["forecasts"], &fcDTOs); err != nil {
		return nil, nil, fmt.Errorf("decode forecasts: %w", err)
	}

	observations := make([]model.Observation, 0, len(obsDTOs))
	for _, d := range obsDTOs {
		observations = append(observations, model.Observation{
			Timestamp:      parseTime(d.Timestamp),
			District:       d.District,
			PSI:            d.PSI,
			PM25:           d.PM25,
			WindSpeed:      d.WindSpeed,
			WindDirection:  d.WindDirection,
			Humidity:       d.Humidity,
			Temperature:    d.Temperature,
			SpikeFlag:      d.SpikeFlag,
			SpikeMagnitude: d.SpikeMagnitude,
		})
	}
	forecasts := make([]model.Forecast, 0, len(fcDTOs))
	for _, d := range fcDTOs {
		forecasts = append(forecasts, model.Forecast{
			District:    d.District,
			WindowStart: parseTime(d.WindowStart),
			WindowEnd:   parseTime(d.WindowEnd),
			PM25Pred:    d.PM25Pred,
			PSIPred:     d.PSIPred,
			Confidence:  d.Confidence,
		})
	}
	return observations, forecasts, nil
}

// reencode round-trips an arbitrary decoded value into dst. A nil value is a
// no-op.
func reencode(v any, dst any) error {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// parseTime is lenient: an unparsable timestamp yields the zero time, which
// the classifier rejects as a missing field rather than guessing.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseLevel maps an upstream risk label onto the internal scale. Unknown
// labels map to Healthy so a malformed payload cannot trigger actions.
func parseLevel(s string) model.RiskLevel {
	switch strings.ToUpper(s) {
	case "UNHEALTHY", "HIGH", "CRITICAL", "SEVERE":
		return model.RiskUnhealthy
	case "MODERATE":
		return model.RiskModerate
	default:
		return model.RiskHealthy
	}
}

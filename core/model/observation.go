package model

import "time"

// RiskLevel classifies a district's health risk derived from air quality readings.
type RiskLevel int

const (
	RiskHealthy RiskLevel = iota
	RiskModerate
	RiskUnhealthy
)

// String returns a human-readable representation of the risk level.
func (l RiskLevel) String() string {
	switch l {
	case RiskHealthy:
		return "Healthy"
	case RiskModerate:
		return "Moderate"
	case RiskUnhealthy:
		return "Unhealthy"
	default:
		return "unknown"
	}
}

// ActionCode identifies a downstream mitigation action.
type ActionCode string

const (
	ActionAlertClinic  ActionCode = "ALERT_CLINIC"
	ActionHVACRecycle  ActionCode = "HVAC_RECYCLE_MODE"
	ActionCitizenNudge ActionCode = "CITIZEN_NUDGE"
)

// Observation is a single environmental reading for one district. Required
// fields that were absent upstream stay nil; they are never guessed or
// defaulted here, the classifier decides how to react.
type Observation struct {
	Timestamp     time.Time
	District      string
	PSI           *float64 // 24h Pollutant Standards Index, nil when only PM2.5 was reported
	PM25          *float64 // 1h PM2.5 concentration in µg/m³, nil when only PSI was reported
	WindSpeed     *float64 // m/s
	WindDirection *string  // compass sector, e.g. "NE"
	Humidity      *float64 // optional, percent
	Temperature   *float64 // optional, °C
	SpikeFlag     bool
	// SpikeMagnitude is the percentage rise over the previous reading when
	// SpikeFlag is set.
	SpikeMagnitude float64
}

// Forecast is a predicted air quality value for a district over a time window.
// A district may carry several forecasts for different windows; no ordering is
// guaranteed.
type Forecast struct {
	District    string
	WindowStart time.Time
	WindowEnd   time.Time
	PM25Pred    float64
	PSIPred     float64
	Confidence  float64 // model confidence in [0,1]
}

// RiskAssessment is the classifier's verdict for one district. It is never
// mutated after computation, only recomputed from fresh input.
type RiskAssessment struct {
	District      string
	Level         RiskLevel
	CurrentPSI    float64
	Notes         string
	TriggerReason string
}

// TriggerDecision states whether automated action is warranted and which
// actions apply. Actions and ReasonCodes are ordered and duplicate-free.
type TriggerDecision struct {
	TriggerActions bool
	Actions        []ActionCode
	Priority       string
	ReasonCodes    []string
}

// Package risk implements the threshold and early-warning classifier. It is a
// pure function of its inputs and safe to call concurrently for different
// districts.
package risk

import (
	"fmt"
	"time"

	"github.com/urbanpulse/sentinel/core/model"
)

// Classification thresholds on the current PSI value, first match wins.
const (
	psiHealthyCeil  = 50  // <= 50 Healthy
	psiModerateCeil = 100 // 51..100 Moderate, above Unhealthy
)

// Early-warning override parameters. Both bounds are inclusive.
const (
	earlyWarningRatio      = 1.20
	earlyWarningConfidence = 0.70
	earlyWarningHorizon    = 2 * time.Hour
)

// Reason codes attached to trigger decisions, in attachment order.
const (
	ReasonPSIUnhealthy = "PSI_UNHEALTHY"
	ReasonEarlyWarning = "EARLY_WARNING"
	ReasonSpike        = "PSI_SPIKE"
)

// Trigger decision priorities derived from the risk level.
const (
	PriorityRoutine  = "routine"
	PriorityElevated = "elevated"
	PriorityUrgent   = "urgent"
)

// NudgePolicy controls when a Moderate assessment carries CITIZEN_NUDGE.
type NudgePolicy string

const (
	// NudgeOnEarlyWarning includes the nudge when the early-warning override
	// fired or the observation carries an explicit spike flag.
	NudgeOnEarlyWarning NudgePolicy = "early-warning"
	// NudgeOnSpike includes the nudge only on an explicit spike flag.
	NudgeOnSpike NudgePolicy = "spike"
	// NudgeAlways includes the nudge on every Moderate assessment.
	NudgeAlways NudgePolicy = "always"
)

// Config holds classifier tuning.
type Config struct {
	NudgePolicy NudgePolicy `json:"nudge_policy"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.NudgePolicy == "" {
		c.NudgePolicy = NudgeOnEarlyWarning
	}
}

// Validate checks the configured policy.
func (c Config) Validate() error {
	switch c.NudgePolicy {
	case NudgeOnEarlyWarning, NudgeOnSpike, NudgeAlways:
		return nil
	default:
		return fmt.Errorf("unknown nudge policy %q", c.NudgePolicy)
	}
}

// MissingFieldError reports a required observation field that was absent.
// Classification is aborted; the caller decides whether to retry with fresher
// data.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("risk: observation missing required field %s", e.Field)
}

// Classify derives a RiskAssessment and TriggerDecision for one district from
// its current observation and zero or more forecasts. The current PSI comes
// from the observation directly, or is estimated from PM2.5 when PSI is
// absent. Forecasts for other districts are ignored.
func Classify(obs model.Observation, forecasts []model.Forecast, cfg Config) (model.RiskAssessment, model.TriggerDecision, error) {
	cfg.SetDefaults()
	if err := validate(obs); err != nil {
		return model.RiskAssessment{}, model.TriggerDecision{}, err
	}

	current := currentPSI(obs)
	level := levelFor(current)
	warned := earlyWarning(obs, current, forecasts)
	if warned && level < model.RiskModerate {
		level = model.RiskModerate
	}

	assessment := model.RiskAssessment{
		District:   obs.District,
		Level:      level,
		CurrentPSI: current,
		Notes:      notes(current, warned),
	}
	decision := decide(obs, level, warned, cfg)
	assessment.TriggerReason = reasonText(level, warned, current)
	return assessment, decision, nil
}

func validate(obs model.Observation) error {
	switch {
	case obs.Timestamp.IsZero():
		return &MissingFieldError{Field: "timestamp"}
	case obs.District == "":
		return &MissingFieldError{Field: "district"}
	case obs.WindSpeed == nil:
		return &MissingFieldError{Field: "wind_speed"}
	case obs.WindDirection == nil:
		return &MissingFieldError{Field: "wind_direction"}
	case obs.PSI == nil && obs.PM25 == nil:
		return &MissingFieldError{Field: "psi_current/pm25_current"}
	}
	return nil
}

func currentPSI(obs model.Observation) float64 {
	if obs.PSI != nil {
		return *obs.PSI
	}
	return PM25ToPSI(*obs.PM25)
}

func levelFor(psi float64) model.RiskLevel {
	switch {
	case psi > psiModerateCeil:
		return model.RiskUnhealthy
	case psi > psiHealthyCeil:
		return model.RiskModerate
	default:
		return model.RiskHealthy
	}
}

// earlyWarning reports whether any same-district forecast inside the horizon
// predicts a rise of at least earlyWarningRatio with sufficient confidence.
func earlyWarning(obs model.Observation, current float64, forecasts []model.Forecast) bool {
	deadline := obs.Timestamp.Add(earlyWarningHorizon)
	for _, f := range forecasts {
		if f.District != obs.District {
			continue
		}
		if f.WindowStart.After(deadline) {
			continue
		}
		if f.PSIPred >= earlyWarningRatio*current && f.Confidence >= earlyWarningConfidence {
			return true
		}
	}
	return false
}

func decide(obs model.Observation, level model.RiskLevel, warned bool, cfg Config) model.TriggerDecision {
	d := model.TriggerDecision{Priority: PriorityRoutine}
	switch level {
	case model.RiskUnhealthy:
		d.Actions = []model.ActionCode{model.ActionAlertClinic, model.ActionHVACRecycle, model.ActionCitizenNudge}
		d.TriggerActions = true
		d.Priority = PriorityUrgent
		d.ReasonCodes = append(d.ReasonCodes, ReasonPSIUnhealthy)
	case model.RiskModerate:
		if nudge(obs, warned, cfg.NudgePolicy) {
			d.Actions = []model.ActionCode{model.ActionCitizenNudge}
		}
		d.TriggerActions = warned
		d.Priority = PriorityElevated
	}
	if warned {
		d.ReasonCodes = append(d.ReasonCodes, ReasonEarlyWarning)
	}
	if obs.SpikeFlag {
		d.ReasonCodes = append(d.ReasonCodes, ReasonSpike)
	}
	return d
}

func nudge(obs model.Observation, warned bool, policy NudgePolicy) bool {
	switch policy {
	case NudgeAlways:
		return true
	case NudgeOnSpike:
		return obs.SpikeFlag
	default:
		return warned || obs.SpikeFlag
	}
}

func notes(psi float64, warned bool) string {
	s := fmt.Sprintf("predicted patient surge +%d%% (PSI %.0f)", int(SurgeFactor(psi)*100), psi)
	if warned {
		s += "; early-warning forecast rise"
	}
	return s
}

func reasonText(level model.RiskLevel, warned bool, psi float64) string {
	switch {
	case level == model.RiskUnhealthy:
		return fmt.Sprintf("current PSI %.0f above unhealthy threshold", psi)
	case warned:
		return "forecast PSI rise with high confidence"
	case level == model.RiskModerate:
		return fmt.Sprintf("current PSI %.0f in moderate band", psi)
	default:
		return ""
	}
}

// SurgeFactor maps a PSI value to the expected relative rise in respiratory
// patient load, used for reporting only.
func SurgeFactor(psi float64) float64 {
	switch {
	case psi > 200:
		return 0.75
	case psi > 150:
		return 0.45
	case psi > 100:
		return 0.25
	default:
		return 0.05
	}
}

// pm25Breakpoints maps PM2.5 concentration bands (µg/m³) to PSI sub-index
// bands following the NEA convention.
var pm25Breakpoints = []struct {
	concLo, concHi float64
	psiLo, psiHi   float64
}{
	{0, 12, 0, 50},
	{12, 55, 50, 100},
	{55, 150, 100, 200},
	{150, 250, 200, 300},
	{250, 350, 300, 400},
	{350, 500, 400, 500},
}

// PM25ToPSI estimates a PSI value from a PM2.5 concentration by linear
// interpolation within the breakpoint band.
func PM25ToPSI(conc float64) float64 {
	if conc <= 0 {
		return 0
	}
	for _, b := range pm25Breakpoints {
		if conc <= b.concHi {
			return b.psiLo + (conc-b.concLo)/(b.concHi-b.concLo)*(b.psiHi-b.psiLo)
		}
	}
	return 500
}

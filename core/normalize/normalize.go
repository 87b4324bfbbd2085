// Package normalize adapts upstream scenario payloads of unknown shape into
// the canonical NormalizedResponse. Each canonical field resolves through a
// strictly ordered fallback chain: the first present value wins, and a
// terminal default guarantees the rest of the system never branches on
// payload shape.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urbanpulse/sentinel/core/model"
)

// Defaulted records a canonical field whose whole chain was absent, so its
// terminal default was substituted. It is observable, never an error.
type Defaulted struct {
	Field   string
	Default any
}

// Fallback chains per canonical field, first present wins. The ordering is a
// behavioral contract under schema drift and is pinned by tests.
var (
	chainRiskLevel      = []string{"risk_assessment.risk_level", "risk_level"}
	chainCurrentPSI     = []string{"risk_assessment.current_psi", "risk_assessment.psi", "psi"}
	chainPredictedSurge = []string{"risk_assessment.predicted_surge", "predicted_surge"}
	chainRegions        = []string{"risk_assessment.affected_regions", "affected_regions"}
	chainRiskReason     = []string{"risk_assessment.trigger_reason", "trigger_reason", "reason"}
	chainClinics        = []string{"healthcare_alerts.clinics_alerted", "clinics_alerted"}
	chainAlertMsg       = []string{"healthcare_alerts.alert_message", "alert_message"}
	chainAutonomous     = []string{"supply_chain_actions.autonomous", "autonomous"}
	chainQty            = []string{"supply_chain_actions.recommended_qty", "supply_chain_actions.qty", "recommended_qty", "qty"}
	chainPOID           = []string{"supply_chain_actions.po_id", "po_id"}
	chainSupplyAction   = []string{"supply_chain_actions.action", "action"}
	chainLogs           = []string{"logs"}
)

// Terminal defaults.
const (
	defaultLevel    = "UNKNOWN"
	defaultText     = "N/A"
	defaultAlertMsg = "No healthcare alert issued."
)

// Normalize builds a NormalizedResponse from an arbitrary decoded JSON
// object. The returned Defaulted slice reports every substituted field in
// resolution order; a nil payload defaults everything.
func Normalize(payload map[string]any) (model.NormalizedResponse, []Defaulted) {
	r := resolver{payload: payload}
	resp := model.NormalizedResponse{
		Risk: model.NormalizedRisk{
			Level:          r.str("risk.level", defaultLevel, chainRiskLevel),
			CurrentPSI:     r.num("risk.current_psi", 0, chainCurrentPSI),
			PredictedSurge: r.num("risk.predicted_surge", 0, chainPredictedSurge),
			Regions:        r.strs("risk.regions", chainRegions),
			Reason:         r.str("risk.reason", defaultText, chainRiskReason),
		},
		Alerts: model.NormalizedAlerts{
			ClinicsAlerted: r.strs("alerts.clinics_alerted", chainClinics),
			Message:        r.str("alerts.message", defaultAlertMsg, chainAlertMsg),
		},
		Supply: model.NormalizedSupply{
			Autonomous:     r.flag("supply.autonomous", chainAutonomous),
			RecommendedQty: r.str("supply.recommended_qty", "", chainQty),
			POID:           r.str("supply.po_id", defaultText, chainPOID),
			Action:         r.str("supply.action", defaultText, chainSupplyAction),
		},
	}
	resp.Logs = r.logs("logs", chainLogs)
	return resp, r.defaulted
}

type resolver struct {
	payload   map[string]any
	defaulted []Defaulted
}

// lookup walks a dotted path through nested JSON objects.
func (r *resolver) lookup(path string) (any, bool) {
	var cur any = r.payload
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// first returns the value of the first chain entry that is present and
// accepted by coerce.
func (r *resolver) first(chain []string, coerce func(any) (any, bool)) (any, bool) {
	for _, path := range chain {
		if v, ok := r.lookup(path); ok {
			if c, ok := coerce(v); ok {
				return c, true
			}
		}
	}
	return nil, false
}

func (r *resolver) fallback(field string, def any) {
	r.defaulted = append(r.defaulted, Defaulted{Field: field, Default: def})
}

func (r *resolver) str(field, def string, chain []string) string {
	if v, ok := r.first(chain, asString); ok {
		return v.(string)
	}
	r.fallback(field, def)
	return def
}

func (r *resolver) num(field string, def float64, chain []string) float64 {
	if v, ok := r.first(chain, asFloat); ok {
		return v.(float64)
	}
	r.fallback(field, def)
	return def
}

func (r *resolver) flag(field string, chain []string) bool {
	if v, ok := r.first(chain, asBool); ok {
		return v.(bool)
	}
	r.fallback(field, false)
	return false
}

func (r *resolver) strs(field string, chain []string) []string {
	if v, ok := r.first(chain, asStrings); ok {
		return v.([]string)
	}
	r.fallback(field, []string{})
	return []string{}
}

func (r *resolver) logs(field string, chain []string) []model.LogEntry {
	if v, ok := r.first(chain, asLogs); ok {
		return v.([]model.LogEntry)
	}
	r.fallback(field, []model.LogEntry{})
	return []model.LogEntry{}
}

// Coercions accept the shapes encoding/json produces plus the numeric/string
// cross-forms seen in the wild. A present but uncoercible value is treated as
// absent so the chain keeps scanning.

func asString(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return nil, false
}

func asFloat(v any) (any, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f, true
		}
	}
	return nil, false
}

func asBool(v any) (any, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		if b, err := strconv.ParseBool(t); err == nil {
			return b, true
		}
	}
	return nil, false
}

func asStrings(v any) (any, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := asString(it)
		if !ok {
			return nil, false
		}
		out = append(out, s.(string))
	}
	return out, true
}

func asLogs(v any) (any, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]model.LogEntry, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.LogEntry{
			Timestamp: stringAt(obj, "timestamp"),
			Agent:     stringAt(obj, "agent"),
			Action:    stringAt(obj, "action"),
		})
	}
	return out, true
}

func stringAt(obj map[string]any, key string) string {
	if v, ok := obj[key]; ok {
		if s, ok := asString(v); ok {
			return s.(string)
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}

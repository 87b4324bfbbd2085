package normalize

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return m
}

func TestNormalize_FullPayload(t *testing.T) {
	payload := decode(t, `{
		"risk_assessment": {
			"risk_level": "HIGH",
			"current_psi": 215,
			"predicted_surge": 0.75,
			"affected_regions": ["west", "south"],
			"trigger_reason": "sustained haze"
		},
		"healthcare_alerts": {
			"clinics_alerted": ["Pioneer Polyclinic"],
			"alert_message": "surge expected"
		},
		"supply_chain_actions": {
			"autonomous": true,
			"recommended_qty": 5000,
			"po_id": "PO-20260814-101530",
			"action": "order_confirmed"
		},
		"logs": [{"timestamp": "2026-08-14T10:15:30Z", "agent": "sentinel", "action": "dispatch"}]
	}`)

	resp, defaulted := Normalize(payload)
	if len(defaulted) != 0 {
		t.Fatalf("unexpected defaults: %+v", defaulted)
	}
	if resp.Risk.Level != "HIGH" || resp.Risk.CurrentPSI != 215 || resp.Risk.PredictedSurge != 0.75 {
		t.Errorf("risk = %+v", resp.Risk)
	}
	if len(resp.Risk.Regions) != 2 || resp.Risk.Regions[0] != "west" {
		t.Errorf("regions = %v", resp.Risk.Regions)
	}
	// Numeric quantity is carried as its string form.
	if resp.Supply.RecommendedQty != "5000" {
		t.Errorf("qty = %q, want \"5000\"", resp.Supply.RecommendedQty)
	}
	if !resp.Supply.Autonomous || resp.Supply.POID != "PO-20260814-101530" {
		t.Errorf("supply = %+v", resp.Supply)
	}
	if len(resp.Logs) != 1 || resp.Logs[0].Agent != "sentinel" {
		t.Errorf("logs = %+v", resp.Logs)
	}
}

func TestNormalize_ChainOrderPinned(t *testing.T) {
	// Nested value must win over top-level even when both are present.
	payload := decode(t, `{
		"risk_assessment": {"risk_level": "MODERATE", "current_psi": 130},
		"risk_level": "LOW",
		"psi": 12
	}`)
	resp, _ := Normalize(payload)
	if resp.Risk.Level != "MODERATE" {
		t.Errorf("level = %q, want nested MODERATE over top-level LOW", resp.Risk.Level)
	}
	if resp.Risk.CurrentPSI != 130 {
		t.Errorf("psi = %v, want nested 130 over top-level 12", resp.Risk.CurrentPSI)
	}

	// Top-level only: later chain entries still resolve.
	resp, _ = Normalize(decode(t, `{"psi": 64, "risk_level": "MODERATE"}`))
	if resp.Risk.CurrentPSI != 64 {
		t.Errorf("psi = %v, want 64 from top-level fallback", resp.Risk.CurrentPSI)
	}

	// Legacy qty key inside supply_chain_actions beats top-level recommended_qty.
	resp, _ = Normalize(decode(t, `{"supply_chain_actions": {"qty": "250"}, "recommended_qty": "900"}`))
	if resp.Supply.RecommendedQty != "250" {
		t.Errorf("qty = %q, want 250", resp.Supply.RecommendedQty)
	}
}

func TestNormalize_EmptyPayloadDefaultsEverything(t *testing.T) {
	resp, defaulted := Normalize(nil)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"risk level", resp.Risk.Level, "UNKNOWN"},
		{"risk reason", resp.Risk.Reason, "N/A"},
		{"psi", resp.Risk.CurrentPSI, 0.0},
		{"alert message", resp.Alerts.Message, "No healthcare alert issued."},
		{"autonomous", resp.Supply.Autonomous, false},
		{"po id", resp.Supply.POID, "N/A"},
		{"action", resp.Supply.Action, "N/A"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if resp.Risk.Regions == nil || len(resp.Risk.Regions) != 0 {
		t.Errorf("regions = %#v, want empty non-nil slice", resp.Risk.Regions)
	}
	if resp.Logs == nil || len(resp.Logs) != 0 {
		t.Errorf("logs = %#v, want empty non-nil slice", resp.Logs)
	}
	if len(defaulted) == 0 {
		t.Fatalf("expected defaulted records for every field")
	}
	seen := map[string]bool{}
	for _, d := range defaulted {
		seen[d.Field] = true
	}
	for _, f := range []string{"risk.level", "alerts.message", "supply.autonomous", "logs"} {
		if !seen[f] {
			t.Errorf("missing defaulted record for %s (got %+v)", f, defaulted)
		}
	}
}

func TestNormalize_UncoercibleTreatedAsAbsent(t *testing.T) {
	// Nested level is an object: the chain keeps scanning to top-level.
	payload := decode(t, `{
		"risk_assessment": {"risk_level": {"oops": true}},
		"risk_level": "MODERATE"
	}`)
	resp, defaulted := Normalize(payload)
	if resp.Risk.Level != "MODERATE" {
		t.Errorf("level = %q, want MODERATE from top-level", resp.Risk.Level)
	}
	for _, d := range defaulted {
		if d.Field == "risk.level" {
			t.Errorf("risk.level should not have been defaulted")
		}
	}

	// Whole chain uncoercible falls to the terminal default.
	resp, _ = Normalize(decode(t, `{"risk_assessment": {"risk_level": {}}, "risk_level": []}`))
	if resp.Risk.Level != "UNKNOWN" {
		t.Errorf("level = %q, want UNKNOWN", resp.Risk.Level)
	}
}

func TestNormalize_Coercions(t *testing.T) {
	payload := decode(t, `{
		"risk_assessment": {"current_psi": "215"},
		"supply_chain_actions": {"autonomous": "true"},
		"affected_regions": ["west", 5]
	}`)
	resp, _ := Normalize(payload)
	if resp.Risk.CurrentPSI != 215 {
		t.Errorf("psi = %v, want string \"215\" coerced to 215", resp.Risk.CurrentPSI)
	}
	if !resp.Supply.Autonomous {
		t.Errorf("autonomous = false, want string \"true\" coerced")
	}
	if len(resp.Risk.Regions) != 2 || resp.Risk.Regions[1] != "5" {
		t.Errorf("regions = %v, want numeric element stringified", resp.Risk.Regions)
	}
}

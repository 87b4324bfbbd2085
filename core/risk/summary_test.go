package risk

import (
	"testing"

	"github.com/urbanpulse/sentinel/core/model"
)

func TestSummarize(t *testing.T) {
	assessments := []model.RiskAssessment{
		{District: "central", Level: model.RiskModerate, CurrentPSI: 95},
		{District: "west", Level: model.RiskUnhealthy, CurrentPSI: 210},
		{District: "east", Level: model.RiskUnhealthy, CurrentPSI: 185},
		{District: "north", Level: model.RiskHealthy, CurrentPSI: 40},
	}
	sum := Summarize(assessments)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"max", sum.MaxPSI, 210.0},
		{"mean", sum.MeanPSI, 132.5},
		{"worst", sum.WorstDistrict, "west"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if len(sum.HighRisk) != 2 || sum.HighRisk[0] != "west" || sum.HighRisk[1] != "east" {
		t.Errorf("high risk = %v, want [west east]", sum.HighRisk)
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	if sum.MaxPSI != 0 || sum.WorstDistrict != "" || sum.HighRisk != nil {
		t.Errorf("expected zero summary, got %+v", sum)
	}
}

package risk

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/urbanpulse/sentinel/core/model"
)

// Summary aggregates per-district assessments for one cycle.
type Summary struct {
	MaxPSI        float64
	MeanPSI       float64
	WorstDistrict string
	// HighRisk lists districts classified Unhealthy, worst first.
	HighRisk []string
}

// Summarize computes district-wide statistics over a set of assessments.
// An empty input yields a zero Summary.
func Summarize(assessments []model.RiskAssessment) Summary {
	if len(assessments) == 0 {
		return Summary{}
	}
	psi := make([]float64, len(assessments))
	for i, a := range assessments {
		psi[i] = a.CurrentPSI
	}
	sum := Summary{
		MaxPSI:  floats.Max(psi),
		MeanPSI: stat.Mean(psi, nil),
	}
	var high []model.RiskAssessment
	for _, a := range assessments {
		if a.CurrentPSI == sum.MaxPSI && sum.WorstDistrict == "" {
			sum.WorstDistrict = a.District
		}
		if a.Level == model.RiskUnhealthy {
			high = append(high, a)
		}
	}
	sort.Slice(high, func(i, j int) bool { return high[i].CurrentPSI > high[j].CurrentPSI })
	for _, a := range high {
		sum.HighRisk = append(sum.HighRisk, a.District)
	}
	return sum
}

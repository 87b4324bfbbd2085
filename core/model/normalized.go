package model

// NormalizedResponse is the canonical shape every upstream scenario payload is
// adapted into. It is an intermediate value: built once by the normalizer,
// read by the caller, then discarded. Every field is guaranteed to be filled,
// either from the payload or from a terminal default.
type NormalizedResponse struct {
	Risk   NormalizedRisk
	Alerts NormalizedAlerts
	Supply NormalizedSupply
	Logs   []LogEntry
}

// NormalizedRisk is the canonical risk section of an upstream payload.
type NormalizedRisk struct {
	Level          string
	CurrentPSI     float64
	PredictedSurge float64
	Regions        []string
	Reason         string
}

// NormalizedAlerts is the canonical healthcare-alert section.
type NormalizedAlerts struct {
	ClinicsAlerted []string
	Message        string
}

// NormalizedSupply is the canonical supply-chain section. Autonomous gates
// the dispatch controller: absence upstream means human-in-the-loop.
type NormalizedSupply struct {
	Autonomous     bool
	RecommendedQty string
	POID           string
	Action         string
}

// LogEntry is one upstream activity log line.
type LogEntry struct {
	Timestamp string
	Agent     string
	Action    string
}

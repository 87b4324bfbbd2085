package metrics

import "time"

// CycleEvent records the outcome of one sentinel cycle.
type CycleEvent struct {
	Scenario  string
	RiskLevel string
	Triggered bool
	MaxPSI    float64
	Time      time.Time
}

// DispatchEvent records one autonomous dispatch attempt.
type DispatchEvent struct {
	Scenario string
	Outcome  string // completed, busy, skipped, failed
	Qty      int
	POID     string
	Latency  time.Duration
	Time     time.Time
}

// MetricsSink records sentinel events for observability purposes.
type MetricsSink interface {
	RecordCycle(ev CycleEvent) error
	RecordDispatch(ev DispatchEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordCycle(CycleEvent) error       { return nil }
func (NopSink) RecordDispatch(DispatchEvent) error { return nil }

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/urbanpulse/sentinel/core/metrics"
)

func TestPromSinkRecordCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("NewPromSinkWithRegistry: %v", err)
	}
	ps, ok := sink.(*PromSink)
	if !ok {
		t.Fatalf("sink type = %T", sink)
	}

	events := []coremetrics.CycleEvent{
		{Scenario: "severe_haze", RiskLevel: "Unhealthy", Triggered: true},
		{Scenario: "severe_haze", RiskLevel: "Unhealthy", Triggered: true},
		{Scenario: "low_haze", RiskLevel: "Moderate", Triggered: false},
	}
	for _, ev := range events {
		if err := ps.RecordCycle(ev); err != nil {
			t.Fatalf("RecordCycle: %v", err)
		}
	}

	expected := `
# HELP sentinel_cycles_total Total number of scenario cycles executed
# TYPE sentinel_cycles_total counter
sentinel_cycles_total{risk_level="Moderate",scenario="low_haze",triggered="false"} 1
sentinel_cycles_total{risk_level="Unhealthy",scenario="severe_haze",triggered="true"} 2
`
	if err := testutil.CollectAndCompare(ps.cycles, strings.NewReader(expected)); err != nil {
		t.Errorf("cycle counter mismatch: %v", err)
	}
}

func TestPromSinkRecordDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("NewPromSinkWithRegistry: %v", err)
	}
	ps := sink.(*PromSink)

	if err := ps.RecordDispatch(coremetrics.DispatchEvent{
		Scenario: "severe_haze", Outcome: "completed", Qty: 5000, Latency: 120 * time.Millisecond,
	}); err != nil {
		t.Fatalf("RecordDispatch: %v", err)
	}
	if err := ps.RecordDispatch(coremetrics.DispatchEvent{
		Scenario: "severe_haze", Outcome: "busy",
	}); err != nil {
		t.Fatalf("RecordDispatch: %v", err)
	}

	expected := `
# HELP sentinel_dispatch_attempts_total Total number of autonomous dispatch attempts by outcome
# TYPE sentinel_dispatch_attempts_total counter
sentinel_dispatch_attempts_total{outcome="busy",scenario="severe_haze"} 1
sentinel_dispatch_attempts_total{outcome="completed",scenario="severe_haze"} 1
`
	if err := testutil.CollectAndCompare(ps.attempts, strings.NewReader(expected)); err != nil {
		t.Errorf("attempt counter mismatch: %v", err)
	}

	// Latency is only observed for attempts that reached the boundary.
	if got := testutil.CollectAndCount(ps.latency); got != 1 {
		t.Errorf("latency series = %d, want 1", got)
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}

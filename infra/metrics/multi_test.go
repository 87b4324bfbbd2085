package metrics

import (
	"fmt"
	"testing"

	coremetrics "github.com/urbanpulse/sentinel/core/metrics"
)

type countingSink struct {
	cycles, dispatches int
	err                error
}

func (c *countingSink) RecordCycle(coremetrics.CycleEvent) error {
	c.cycles++
	return c.err
}

func (c *countingSink) RecordDispatch(coremetrics.DispatchEvent) error {
	c.dispatches++
	return c.err
}

func TestMultiSinkFanOut(t *testing.T) {
	a := &countingSink{}
	b := &countingSink{}
	m := NewMultiSink(a, b)

	if err := m.RecordCycle(coremetrics.CycleEvent{Scenario: "low_haze"}); err != nil {
		t.Fatalf("RecordCycle: %v", err)
	}
	if err := m.RecordDispatch(coremetrics.DispatchEvent{Scenario: "severe_haze"}); err != nil {
		t.Fatalf("RecordDispatch: %v", err)
	}
	if a.cycles != 1 || b.cycles != 1 || a.dispatches != 1 || b.dispatches != 1 {
		t.Errorf("fan-out counts: a=%+v b=%+v", a, b)
	}
}

func TestMultiSinkFirstError(t *testing.T) {
	boom := fmt.Errorf("sink down")
	a := &countingSink{err: boom}
	b := &countingSink{}
	m := NewMultiSink(a, b)

	if err := m.RecordCycle(coremetrics.CycleEvent{}); err != boom {
		t.Errorf("err = %v, want first sink error", err)
	}
	if b.cycles != 0 {
		t.Errorf("second sink recorded despite first error")
	}
}

package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/urbanpulse/sentinel/scenario"
)

// Mock serves scenario payloads from a fixed definition set, for demos and
// tests that must not depend on the live upstream.
type Mock struct {
	defs  map[string]scenario.Def
	clock clockwork.Clock
	// Delay simulates upstream latency per call.
	Delay time.Duration
}

// NewMock creates a mock connector over the given definitions.
func NewMock(defs map[string]scenario.Def) *Mock {
	return &Mock{defs: defs, clock: clockwork.NewRealClock()}
}

// WithClock swaps the time source used for payload timestamps.
func (m *Mock) WithClock(c clockwork.Clock) *Mock {
	m.clock = c
	return m
}

// Execute renders the named scenario's payload.
func (m *Mock) Execute(ctx context.Context, name string) (map[string]any, error) {
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.clock.After(m.Delay):
		}
	}
	def, ok := m.defs[name]
	if !ok {
		return nil, fmt.Errorf("upstream: unknown scenario %q", name)
	}
	return def.Payload(m.clock.Now()), nil
}

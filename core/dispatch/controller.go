// Package dispatch implements the autonomous procurement controller. It
// guarantees at most one in-flight order per qualifying trigger episode,
// regardless of how fast or how concurrently the triggering scenario is
// re-invoked.
package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/urbanpulse/sentinel/core/logger"
	"github.com/urbanpulse/sentinel/core/metrics"
	"github.com/urbanpulse/sentinel/core/model"
	"github.com/urbanpulse/sentinel/internal/eventbus"
)

// OrderConfirmer is the external order-confirmation boundary. ConfirmOrder
// must treat any non-2xx-equivalent status as an error.
type OrderConfirmer interface {
	ConfirmOrder(ctx context.Context, qty int) (Confirmation, error)
}

// Confirmation is the boundary's acknowledgement of an order.
type Confirmation struct {
	POID   string
	Status string
}

// Attempt outcomes as recorded in metrics and results.
const (
	OutcomeCompleted = "completed"
	OutcomeSkipped   = "skipped"
	OutcomeBusy      = "busy"
	OutcomeFailed    = "failed"
)

// Config holds dispatch controller tuning. The cooldown length is a tuned
// constant with no derivable correct value, so it stays configurable.
type Config struct {
	CooldownSeconds int `json:"cooldown_seconds"`
	// DefaultQty is used when the normalized payload carries no parsable
	// recommended quantity.
	DefaultQty int `json:"default_qty"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.CooldownSeconds <= 0 {
		c.CooldownSeconds = 4
	}
	if c.DefaultQty <= 0 {
		c.DefaultQty = 500
	}
}

// ErrDispatchBusy is returned while an order is in flight or cooling down.
// It is expected under rapid re-triggering and safe for automated callers to
// ignore; rejected attempts are dropped, never queued.
var ErrDispatchBusy = fmt.Errorf("dispatch: order in flight or cooling down")

// DispatchFailedError reports a failed order-confirmation call. The
// controller still enters cooldown, so the caller must not hot-loop retries.
type DispatchFailedError struct {
	Scenario string
	Qty      int
	Err      error
}

func (e *DispatchFailedError) Error() string {
	return fmt.Sprintf("dispatch: order for scenario %q (qty %d) failed: %v", e.Scenario, e.Qty, e.Err)
}

func (e *DispatchFailedError) Unwrap() error { return e.Err }

// AttemptRequest carries everything the controller needs to judge one
// dispatch attempt.
type AttemptRequest struct {
	Scenario string
	Severity model.RiskLevel
	Supply   model.NormalizedSupply
	// Surface identifies the caller context that owns the right to act. An
	// empty surface makes the attempt a safe no-op, not an error.
	Surface string
}

// Result reports what an attempt did.
type Result struct {
	Outcome string
	Qty     int
	POID    string
	State   model.DispatchState
}

// Controller coordinates autonomous procurement orders. One instance owns
// one DispatchState; the zero value is not usable, construct with
// NewController.
type Controller struct {
	cfg       Config
	cooldown  time.Duration
	clock     clockwork.Clock
	confirmer OrderConfirmer
	bus       *eventbus.Bus[model.DispatchNotice]
	log       logger.Logger
	sink      metrics.MetricsSink

	mu            sync.Mutex
	state         model.DispatchState
	cooldownUntil time.Time
}

// NewController creates a controller in the Idle phase. A nil clock selects
// the real clock; nil logger and sink select no-ops.
func NewController(cfg Config, confirmer OrderConfirmer, bus *eventbus.Bus[model.DispatchNotice], clock clockwork.Clock, log logger.Logger, sink metrics.MetricsSink) (*Controller, error) {
	if confirmer == nil {
		return nil, fmt.Errorf("dispatch: nil confirmer provided to NewController")
	}
	if bus == nil {
		return nil, fmt.Errorf("dispatch: nil event bus provided to NewController")
	}
	cfg.SetDefaults()
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Controller{
		cfg:       cfg,
		cooldown:  time.Duration(cfg.CooldownSeconds) * time.Second,
		clock:     clock,
		confirmer: confirmer,
		bus:       bus,
		log:       log,
		sink:      sink,
	}, nil
}

// Attempt evaluates one dispatch attempt. Non-qualifying attempts (below
// severe, not explicitly autonomous, or no owning surface) are no-ops.
// Qualifying attempts either acquire the single-flight lock and issue exactly
// one order, or fail fast with ErrDispatchBusy.
func (c *Controller) Attempt(ctx context.Context, req AttemptRequest) (Result, error) {
	if req.Severity != model.RiskUnhealthy || !req.Supply.Autonomous || req.Surface == "" {
		c.record(req.Scenario, OutcomeSkipped, 0, "", 0)
		return Result{Outcome: OutcomeSkipped, State: c.State()}, nil
	}

	qty := c.quantity(req.Supply.RecommendedQty)
	if err := c.acquire(qty); err != nil {
		c.log.Debugf("attempt for %s rejected: %v", req.Scenario, err)
		c.record(req.Scenario, OutcomeBusy, qty, "", 0)
		return Result{Outcome: OutcomeBusy, Qty: qty, State: c.State()}, err
	}

	start := c.clock.Now()
	conf, err := c.confirmer.ConfirmOrder(ctx, qty)
	latency := c.clock.Since(start)
	// Cooldown is entered regardless of the boundary's outcome so the lock
	// can never be left held and a failing boundary cannot be hammered.
	c.release()

	if err != nil {
		c.log.Errorf("order confirmation failed for %s: %v", req.Scenario, err)
		c.record(req.Scenario, OutcomeFailed, qty, "", latency)
		return Result{Outcome: OutcomeFailed, Qty: qty, State: c.State()},
			&DispatchFailedError{Scenario: req.Scenario, Qty: qty, Err: err}
	}

	poID := conf.POID
	if poID == "" {
		poID = placeholderPOID()
	}
	c.recordOrder(poID)
	notice := model.DispatchNotice{
		Scenario: req.Scenario,
		Qty:      qty,
		POID:     poID,
		Message:  fmt.Sprintf("Autonomous order %s confirmed: %d units for scenario %s", poID, qty, req.Scenario),
	}
	c.bus.Publish(notice)
	c.log.Infof("autonomous order %s confirmed (qty %d, scenario %s)", poID, qty, req.Scenario)
	c.record(req.Scenario, OutcomeCompleted, qty, poID, latency)
	return Result{Outcome: OutcomeCompleted, Qty: qty, POID: poID, State: c.State()}, nil
}

// State returns a snapshot of the controller state.
func (c *Controller) State() model.DispatchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// quantity prefers the explicit recommended quantity from the normalized
// payload and falls back to the configured default when absent or
// non-numeric.
func (c *Controller) quantity(recommended string) int {
	if recommended != "" {
		if q, err := strconv.Atoi(recommended); err == nil && q > 0 {
			return q
		}
		if f, err := strconv.ParseFloat(recommended, 64); err == nil && f > 0 {
			return int(f)
		}
		c.log.Warnf("unparsable recommended quantity %q, using default %d", recommended, c.cfg.DefaultQty)
	}
	return c.cfg.DefaultQty
}

func (c *Controller) acquire(qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state.Phase {
	case model.DispatchLocked:
		return ErrDispatchBusy
	case model.DispatchCooldown:
		if c.clock.Now().Before(c.cooldownUntil) {
			return ErrDispatchBusy
		}
	}
	c.state.Phase = model.DispatchLocked
	c.state.RecommendedQty = qty
	return nil
}

func (c *Controller) release() {
	c.mu.Lock()
	c.state.Phase = model.DispatchCooldown
	c.cooldownUntil = c.clock.Now().Add(c.cooldown)
	c.mu.Unlock()
}

func (c *Controller) recordOrder(poID string) {
	c.mu.Lock()
	c.state.LastPOID = poID
	c.mu.Unlock()
}

func (c *Controller) record(scenario, outcome string, qty int, poID string, latency time.Duration) {
	ev := metrics.DispatchEvent{
		Scenario: scenario,
		Outcome:  outcome,
		Qty:      qty,
		POID:     poID,
		Latency:  latency,
		Time:     c.clock.Now(),
	}
	if err := c.sink.RecordDispatch(ev); err != nil {
		c.log.Errorf("metrics error: %v", err)
	}
}

func placeholderPOID() string {
	return "PO-" + uuid.NewString()
}

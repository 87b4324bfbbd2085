// Package app wires the sentinel core together: upstream connector,
// normalizer, risk classifier, dispatch controller and outward notification.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/urbanpulse/sentinel/config"
	"github.com/urbanpulse/sentinel/core/dispatch"
	coremetrics "github.com/urbanpulse/sentinel/core/metrics"
	"github.com/urbanpulse/sentinel/core/model"
	"github.com/urbanpulse/sentinel/core/normalize"
	"github.com/urbanpulse/sentinel/core/risk"
	"github.com/urbanpulse/sentinel/infra/logger"
	"github.com/urbanpulse/sentinel/infra/metrics"
	"github.com/urbanpulse/sentinel/infra/notify"
	"github.com/urbanpulse/sentinel/infra/procurement"
	"github.com/urbanpulse/sentinel/infra/upstream"
	"github.com/urbanpulse/sentinel/internal/eventbus"
)

// CycleRequest asks for one full sentinel cycle for a named scenario.
type CycleRequest struct {
	Scenario string
	// Surface is the caller context owning the right to act; empty means
	// observe-only and the dispatch controller no-ops.
	Surface string
}

// CycleResult is everything one cycle produced.
type CycleResult struct {
	Scenario    string
	Severity    model.RiskLevel
	Response    model.NormalizedResponse
	Defaulted   []normalize.Defaulted
	Assessments []model.RiskAssessment
	Decisions   []model.TriggerDecision
	Summary     risk.Summary
	Dispatch    *dispatch.Result
}

// Service orchestrates cycles and forwards dispatch notices.
type Service struct {
	cfg        *config.Config
	log        logger.Logger
	connector  upstream.Connector
	controller *dispatch.Controller
	bus        *eventbus.Bus[model.DispatchNotice]
	notifier   notify.Notifier
	sink       coremetrics.MetricsSink
	clock      clockwork.Clock
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	connector, err := upstream.NewConnector(cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("upstream connector: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var confirmer dispatch.OrderConfirmer
	if cfg.Procurement.URL != "" {
		client, err := procurement.NewClient(cfg.Procurement)
		if err != nil {
			return nil, fmt.Errorf("procurement client: %w", err)
		}
		confirmer = client
	} else {
		logg.Warnf("no procurement url configured, using mock confirmer")
		confirmer = procurement.NewMock()
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.Enabled {
		n, err := notify.NewMQTTNotifier(cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		notifier = n
	}

	bus := eventbus.New[model.DispatchNotice]()
	controller, err := dispatch.NewController(cfg.Dispatch, confirmer, bus, nil, logg, sink)
	if err != nil {
		return nil, fmt.Errorf("dispatch controller: %w", err)
	}

	return &Service{
		cfg:        cfg,
		log:        logg,
		connector:  connector,
		controller: controller,
		bus:        bus,
		notifier:   notifier,
		sink:       sink,
		clock:      clockwork.NewRealClock(),
	}, nil
}

// Notices exposes the dispatch-completed event stream for additional
// listeners. Callers unsubscribe via the bus semantics when done.
func (s *Service) Notices() <-chan model.DispatchNotice {
	return s.bus.Subscribe()
}

// Controller exposes the dispatch controller state for inspection.
func (s *Service) Controller() *dispatch.Controller { return s.controller }

// RunCycle executes one full cycle: upstream execution, normalization,
// per-district classification, aggregation and, when the severe path
// qualifies, an autonomous dispatch attempt. A busy controller does not fail
// the cycle; a failed order call is surfaced together with the cycle result.
func (s *Service) RunCycle(ctx context.Context, req CycleRequest) (*CycleResult, error) {
	raw, err := s.connector.Execute(ctx, req.Scenario)
	if err != nil {
		return nil, fmt.Errorf("execute scenario %q: %w", req.Scenario, err)
	}

	resp, defaulted := normalize.Normalize(raw)
	for _, d := range defaulted {
		s.log.Debugw("normalization default substituted", map[string]any{
			"field": d.Field, "default": d.Default,
		})
	}

	res := &CycleResult{
		Scenario:  req.Scenario,
		Response:  resp,
		Defaulted: defaulted,
	}

	observations, forecasts, err := decodeReadings(raw)
	if err != nil {
		return nil, err
	}
	if len(observations) > 0 {
		for _, obs := range observations {
			assessment, decision, err := risk.Classify(obs, forecasts, s.cfg.Risk)
			if err != nil {
				return nil, fmt.Errorf("classify district %q: %w", obs.District, err)
			}
			res.Assessments = append(res.Assessments, assessment)
			res.Decisions = append(res.Decisions, decision)
			if assessment.Level > res.Severity {
				res.Severity = assessment.Level
			}
		}
		res.Summary = risk.Summarize(res.Assessments)
	} else {
		// No raw readings upstream: fall back to the normalized verdict.
		res.Severity = parseLevel(resp.Risk.Level)
		res.Summary = risk.Summary{MaxPSI: resp.Risk.CurrentPSI, MeanPSI: resp.Risk.CurrentPSI}
	}

	s.recordCycle(req.Scenario, res)

	if res.Severity == model.RiskUnhealthy {
		dres, derr := s.controller.Attempt(ctx, dispatch.AttemptRequest{
			Scenario: req.Scenario,
			Severity: res.Severity,
			Supply:   resp.Supply,
			Surface:  req.Surface,
		})
		res.Dispatch = &dres
		if derr != nil {
			if errors.Is(derr, dispatch.ErrDispatchBusy) {
				s.log.Infof("dispatch busy for scenario %s, attempt dropped", req.Scenario)
				return res, nil
			}
			return res, derr
		}
	}
	return res, nil
}

// Run starts the service: it forwards dispatch notices to the notifier,
// serves Prometheus metrics when enabled, and optionally executes the
// configured scenario periodically. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	notices := s.bus.Subscribe()
	go func() {
		for notice := range notices {
			if err := s.notifier.Notify(notice); err != nil {
				s.log.Errorf("notify: %v", err)
			}
		}
	}()

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	if s.cfg.Cycle.Scenario != "" {
		interval := time.Duration(s.cfg.Cycle.IntervalSeconds) * time.Second
		ticker := s.clock.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.Chan():
				req := CycleRequest{Scenario: s.cfg.Cycle.Scenario, Surface: s.cfg.Cycle.Surface}
				if _, err := s.RunCycle(ctx, req); err != nil {
					s.log.Errorf("cycle error: %v", err)
				}
			}
		}
	}

	<-ctx.Done()
	return nil
}

// Close releases external connections.
func (s *Service) Close() error {
	s.bus.Close()
	s.notifier.Close()
	return nil
}

func (s *Service) recordCycle(scenario string, res *CycleResult) {
	triggered := false
	for _, d := range res.Decisions {
		if d.TriggerActions {
			triggered = true
			break
		}
	}
	ev := coremetrics.CycleEvent{
		Scenario:  scenario,
		RiskLevel: res.Severity.String(),
		Triggered: triggered || res.Severity == model.RiskUnhealthy,
		MaxPSI:    res.Summary.MaxPSI,
		Time:      s.clock.Now(),
	}
	if err := s.sink.RecordCycle(ev); err != nil {
		s.log.Errorf("metrics error: %v", err)
	}
}

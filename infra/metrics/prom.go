package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/urbanpulse/sentinel/core/metrics"
)

// PromSink records sentinel events in Prometheus metrics.
type PromSink struct {
	cycles   *prometheus.CounterVec
	attempts *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewPromSink registers sentinel metrics on the default Prometheus
// registerer. The Prometheus server is started separately.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cycles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_cycles_total",
		Help: "Total number of scenario cycles executed",
	}, []string{"scenario", "risk_level", "triggered"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_dispatch_attempts_total",
		Help: "Total number of autonomous dispatch attempts by outcome",
	}, []string{"scenario", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sentinel_order_latency_seconds",
		Help:    "Time spent in the order-confirmation boundary call",
		Buckets: prometheus.DefBuckets,
	}, []string{"scenario", "outcome"})

	if err := reg.Register(cycles); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			cycles = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(attempts); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			attempts = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{cycles: cycles, attempts: attempts, latency: latency}, nil
}

// RecordCycle increments the cycle counter.
func (s *PromSink) RecordCycle(ev coremetrics.CycleEvent) error {
	s.cycles.WithLabelValues(ev.Scenario, ev.RiskLevel, strconv.FormatBool(ev.Triggered)).Inc()
	return nil
}

// RecordDispatch increments the attempt counter and observes the boundary
// latency for attempts that reached the boundary.
func (s *PromSink) RecordDispatch(ev coremetrics.DispatchEvent) error {
	s.attempts.WithLabelValues(ev.Scenario, ev.Outcome).Inc()
	if ev.Latency > 0 {
		s.latency.WithLabelValues(ev.Scenario, ev.Outcome).Observe(ev.Latency.Seconds())
	}
	return nil
}

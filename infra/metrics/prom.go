package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records solve events in Prometheus metrics.
type PromSink struct {
	solves   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	yield    *prometheus.GaugeVec
}

// NewPromSink registers solve metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are
// already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "battery_solves_total",
		Help: "Total number of schedule optimizations",
	}, []string{"model", "solved"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "battery_solve_duration_seconds",
		Help:    "Wall time of the MILP solve",
		Buckets: prometheus.DefBuckets,
	}, []string{"model", "solved"})
	yield := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "battery_horizon_yield",
		Help: "Yield of the latest schedule in currency per horizon",
	}, []string{"model"})

	if err := reg.Register(solves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solves = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(yield); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			yield = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{solves: solves, duration: duration, yield: yield}, nil
}

// RecordSolve increments the solve counter and observes the duration.
func (s *PromSink) RecordSolve(e SolveEvent) error {
	solved := strconv.FormatBool(e.Solved)
	s.solves.WithLabelValues(e.Model, solved).Inc()
	s.duration.WithLabelValues(e.Model, solved).Observe(e.Duration.Seconds())
	if e.Solved {
		s.yield.WithLabelValues(e.Model).Set(e.Yield)
	}
	return nil
}

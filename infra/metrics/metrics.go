// Package metrics records schedule optimization runs for observability. A
// Sink receives one SolveEvent per optimization; Prometheus and InfluxDB
// implementations are provided.
package metrics

import (
	"time"

	"github.com/google/uuid"
)

// SolveEvent describes one completed optimization run.
type SolveEvent struct {
	RunID      uuid.UUID
	Model      string // "tariff" or "netmetering"
	Periods    int
	Solved     bool
	Diagnostic string
	Duration   time.Duration
	Yield      float64
	Cycles     float64
	Time       time.Time
}

// Sink records solve events for observability purposes.
type Sink interface {
	RecordSolve(SolveEvent) error
}

// Config defines settings for the metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults fills in unset fields.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error { return nil }

// MultiSink fans events out to several sinks, returning the first error.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a MultiSink.
func NewMultiSink(sinks ...Sink) *MultiSink { return &MultiSink{sinks: sinks} }

func (m *MultiSink) RecordSolve(e SolveEvent) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.RecordSolve(e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mariondam/Wattflex/config"
	"github.com/mariondam/Wattflex/core/battery"
	"github.com/mariondam/Wattflex/core/optimizer"
	"github.com/mariondam/Wattflex/core/solver"
	"github.com/mariondam/Wattflex/infra/logger"
	"github.com/mariondam/Wattflex/infra/metrics"
	"github.com/mariondam/Wattflex/infra/mqtt"
	"github.com/mariondam/Wattflex/internal/eventbus"
)

// Service orchestrates model construction, solving and observability.
type Service struct {
	cfg  *config.Config
	spec battery.Spec
	sol  solver.Solver
	bus  *eventbus.Bus[metrics.SolveEvent]
	sink metrics.Sink
	pub  *mqtt.Publisher
	log  logger.Logger

	collectorDone <-chan struct{}
	closeFns      []func()
	promEnabled   bool
	promAddr      string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	logg := logger.New("service")
	spec, err := cfg.Battery.Spec()
	if err != nil {
		return nil, fmt.Errorf("battery: %w", err)
	}

	var sinks []metrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	svc := &Service{
		cfg:         cfg,
		spec:        spec,
		sol:         solver.NewBranchBound(),
		bus:         eventbus.New[metrics.SolveEvent](),
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promAddr:    cfg.Metrics.PrometheusAddr,
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics)
		if c, ok := sink.(interface{ Close() }); ok {
			svc.closeFns = append(svc.closeFns, c.Close)
		}
		sinks = append(sinks, sink)
	}
	switch len(sinks) {
	case 0:
		svc.sink = metrics.NopSink{}
	case 1:
		svc.sink = sinks[0]
	default:
		svc.sink = metrics.NewMultiSink(sinks...)
	}

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.pub = pub
	}
	return svc, nil
}

// Run starts the observability pipeline and executes one optimization run of
// the requested model. Mode is "tariff" or "netmetering".
func (s *Service) Run(ctx context.Context, mode string) error {
	s.collectorDone = metrics.StartCollector(ctx, s.bus, s.sink)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	switch mode {
	case "tariff":
		return s.runTariff(ctx)
	case "netmetering":
		return s.runNetMetering(ctx)
	}
	return fmt.Errorf("unknown mode %s", mode)
}

func (s *Service) runTariff(ctx context.Context) error {
	series := s.cfg.Horizon.Series()
	params := s.cfg.Tariff.Params(optimizer.Interval(s.cfg.Horizon.Interval))
	m, err := optimizer.NewTariffModel(s.sol, s.spec, series, params, logger.New("tariff-model"))
	if err != nil {
		return err
	}
	start := time.Now()
	if err := m.Optimize(ctx); err != nil {
		return err
	}
	dur := time.Since(start)
	yield, totalCost := m.ComputeYield()
	runID := uuid.New()
	s.bus.Publish(metrics.SolveEvent{
		RunID:      runID,
		Model:      "tariff",
		Periods:    m.Periods(),
		Solved:     m.Solved(),
		Diagnostic: m.Diagnostic(),
		Duration:   dur,
		Yield:      yield,
		Cycles:     m.Cycles(),
		Time:       time.Now(),
	})
	if !m.Solved() {
		s.log.Warnf("tariff run produced no schedule: %s", m.Diagnostic())
		return nil
	}
	s.log.Infof("tariff schedule: yield=%.4f total_cost=%.4f cycles=%.2f", yield, totalCost, m.Cycles())
	return s.publish(runID, "tariff", yield, m.Cycles(), series.Prices, m.Charges(), m.Discharges(), m.SoCs())
}

func (s *Service) runNetMetering(ctx context.Context) error {
	nm := s.cfg.NetMetering
	m, err := optimizer.NewNetMeteringModel(s.sol, s.spec, s.cfg.Horizon.Prices,
		nm.StartSoC, nm.EndSoC, nm.Cutoff, logger.New("netmetering-model"))
	if err != nil {
		return err
	}
	var totalYield, totalCycles float64
	for day := 0; day < nm.Days; day++ {
		if day > 0 {
			m, err = m.Advance(nil, nm.EndSoC)
			if err != nil {
				return err
			}
		}
		start := time.Now()
		if err := m.Optimize(ctx); err != nil {
			return err
		}
		dur := time.Since(start)
		yield := m.ComputeYield()
		runID := uuid.New()
		s.bus.Publish(metrics.SolveEvent{
			RunID:      runID,
			Model:      "netmetering",
			Periods:    m.Periods(),
			Solved:     m.Solved(),
			Diagnostic: m.Diagnostic(),
			Duration:   dur,
			Yield:      yield,
			Cycles:     m.Cycles(),
			Time:       time.Now(),
		})
		if !m.Solved() {
			s.log.Warnf("day %d produced no schedule: %s", day+1, m.Diagnostic())
			continue
		}
		totalYield += yield
		totalCycles += m.Cycles()
		if err := s.publish(runID, "netmetering", yield, m.Cycles(),
			s.cfg.Horizon.Prices, m.Charges(), m.Discharges(), m.SoCs()); err != nil {
			return err
		}
	}
	s.log.Infof("net metering over %d day(s): yield=%.4f cycles=%.2f", nm.Days, totalYield, totalCycles)
	return nil
}

func (s *Service) publish(runID uuid.UUID, model string, yield, cycles float64,
	prices, charges, discharges, socs []float64) error {
	if s.pub == nil {
		return nil
	}
	periods := make([]mqtt.PeriodPlan, len(prices))
	for i := range prices {
		periods[i] = mqtt.PeriodPlan{
			Index:        i,
			ChargeKWh:    charges[i],
			DischargeKWh: discharges[i],
			SoC:          socs[i],
			Price:        prices[i],
		}
	}
	return s.pub.PublishSchedule(mqtt.SchedulePayload{
		RunID:       runID.String(),
		Model:       model,
		GeneratedAt: time.Now(),
		Yield:       yield,
		Cycles:      cycles,
		Periods:     periods,
	})
}

// Close flushes pending solve events and releases held resources.
func (s *Service) Close() {
	s.bus.Close()
	if s.collectorDone != nil {
		select {
		case <-s.collectorDone:
		case <-time.After(2 * time.Second):
		}
	}
	for _, fn := range s.closeFns {
		fn()
	}
	if s.pub != nil {
		s.pub.Close()
	}
}

package optimizer

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/mariondam/Wattflex/core/battery"
	corelogger "github.com/mariondam/Wattflex/core/logger"
	"github.com/mariondam/Wattflex/core/solver"
)

// TariffParams configures a TariffModel beyond its input series and battery.
type TariffParams struct {
	StartSoC float64
	EndSoC   float64
	// TaxRate is the VAT fraction added to the raw price; 0.21 adds 21%.
	TaxRate float64
	// FixedTaxPerKWh covers fixed per-kWh levies such as energy tax. It
	// must already include VAT where applicable.
	FixedTaxPerKWh     float64
	AllowGridDischarge bool
	AllowGridCharge    bool
	// Cutoff is the minimum required yield per full charge/discharge cycle
	// below which the optimizer prefers inaction.
	Cutoff   float64
	Interval Interval
}

// DefaultTariffParams allows grid exchange in both directions on an hourly
// horizon, with no taxes and no cutoff.
func DefaultTariffParams() TariffParams {
	return TariffParams{AllowGridDischarge: true, AllowGridCharge: true, Interval: IntervalHour}
}

// TariffModel builds and solves the four-flow schedule MILP for one horizon
// under asymmetric buy/sell pricing and taxes.
//
// A model holds one horizon's inputs, is mutated exactly once per Optimize
// call and may be queried any number of times afterwards. It is not safe for
// concurrent Optimize calls; independent instances are.
type TariffModel struct {
	solver           solver.Solver
	spec             battery.Spec
	series           Series
	params           TariffParams
	intervalFraction float64
	taxedPrices      []float64
	lay              layout
	log              corelogger.Logger

	state solveState
	x     []float64
	diag  string
}

// NewTariffModel validates the inputs and prepares a model. NaN usage and
// feed-in entries are sanitized to zero. An unrecognized interval selector
// falls back to hour with a warning. A nil solver selects the built-in
// branch-and-bound simplex.
func NewTariffModel(sol solver.Solver, spec battery.Spec, series Series, params TariffParams, log corelogger.Logger) (*TariffModel, error) {
	if err := series.validate(); err != nil {
		return nil, err
	}
	if spec.CapacityKWh <= 0 || spec.Efficiency <= 0 || spec.MinSoC >= spec.MaxSoC {
		return nil, fmt.Errorf("battery spec must come from battery.New")
	}
	if log == nil {
		log = nopLogger{}
	}
	if sol == nil {
		sol = solver.NewBranchBound()
	}
	frac, ok := params.Interval.fraction()
	if !ok {
		log.Warnf("invalid interval %q, assuming hour (valid: hour, quarter)", params.Interval)
	}
	series = series.sanitized()
	taxed := make([]float64, len(series.Prices))
	for i, p := range series.Prices {
		taxed[i] = p*(1+params.TaxRate) + params.FixedTaxPerKWh
	}
	return &TariffModel{
		solver:           sol,
		spec:             spec,
		series:           series,
		params:           params,
		intervalFraction: frac,
		taxedPrices:      taxed,
		lay:              layout{periods: series.Periods(), blocks: tarBlocks},
		log:              log,
	}, nil
}

// Periods returns the horizon length T.
func (m *TariffModel) Periods() int { return m.lay.periods }

// Solved reports whether the last Optimize call produced a schedule.
func (m *TariffModel) Solved() bool { return m.state == stateSolved }

// Optimize builds the MILP and solves it. Prior solution state is discarded
// first. An infeasible or failed solve does not return an error: the model
// degrades to an all-zero schedule and the solver message is kept for
// Diagnostic. The returned error is reserved for context cancellation.
func (m *TariffModel) Optimize(ctx context.Context) error {
	m.state, m.x, m.diag = stateUnsolved, nil, ""

	res, err := m.solver.Solve(ctx, m.buildProblem())
	if err != nil {
		return err
	}
	if res.Status != solver.StatusOptimal {
		m.state = stateInfeasible
		m.diag = res.Message
		m.log.Warnf("no schedule found: %s", res.Message)
		return nil
	}
	m.state = stateSolved
	m.x = res.X
	return nil
}

func (m *TariffModel) buildProblem() solver.Problem {
	T := m.lay.periods
	n := m.lay.vars()

	// The solver minimizes, so revenues enter negated: discharges earn
	// their price, charges pay theirs. Self-use offsets taxed consumption
	// and grid discharge earns the raw price; charges mirror that. The
	// cutoff term penalizes held state of charge so that cycling only pays
	// above the configured per-cycle yield.
	cutoffRate := m.params.Cutoff / (m.spec.EffectiveCapacityKWh() * m.spec.Efficiency)
	obj := make([]float64, n)
	for t := 0; t < T; t++ {
		obj[m.lay.index(tarGridDischarge, t)] = -m.series.Prices[t]
		obj[m.lay.index(tarSelfUseDischarge, t)] = -m.taxedPrices[t]
		obj[m.lay.index(tarGridCharge, t)] = m.taxedPrices[t]
		obj[m.lay.index(tarSolarCharge, t)] = m.series.Prices[t]
		obj[m.lay.index(tarSoC, t)] = cutoffRate
	}

	// Inequalities, eight rows per period.
	g := mat.NewDense(8*T, n, nil)
	h := make([]float64, 8*T)
	bigM := deriveBigM(m.spec.MaxDischargeKW, m.spec.MaxChargeKW, m.intervalFraction)
	row := 0
	for t := 0; t < T; t++ { // soc <= maxSoC
		g.Set(row, m.lay.index(tarSoC, t), 1)
		h[row] = m.spec.MaxSoC
		row++
	}
	for t := 0; t < T; t++ { // soc >= minSoC
		g.Set(row, m.lay.index(tarSoC, t), -1)
		h[row] = -m.spec.MinSoC
		row++
	}
	for t := 0; t < T; t++ { // solar charge limited by surplus
		g.Set(row, m.lay.index(tarSolarCharge, t), 1)
		h[row] = m.series.FeedIn[t]
		row++
	}
	for t := 0; t < T; t++ { // self-use discharge limited by consumption
		g.Set(row, m.lay.index(tarSelfUseDischarge, t), 1)
		h[row] = m.series.Usage[t]
		row++
	}
	for t := 0; t < T; t++ { // discharge power limit
		g.Set(row, m.lay.index(tarTotalDischarge, t), 1)
		h[row] = m.spec.MaxDischargeKW * m.intervalFraction
		row++
	}
	for t := 0; t < T; t++ { // charge power limit
		g.Set(row, m.lay.index(tarTotalCharge, t), 1)
		h[row] = m.spec.MaxChargeKW * m.intervalFraction
		row++
	}
	// Mutual exclusion: flag = 1 permits charging, flag = 0 discharging.
	// Keeps the solver from charging and discharging in the same period
	// when a zero price would otherwise make that free.
	for t := 0; t < T; t++ { // totalDischarge <= M * (1 - flag)
		g.Set(row, m.lay.index(tarTotalDischarge, t), 1)
		g.Set(row, m.lay.index(tarFlag, t), bigM)
		h[row] = bigM
		row++
	}
	for t := 0; t < T; t++ { // totalCharge <= M * flag
		g.Set(row, m.lay.index(tarTotalCharge, t), 1)
		g.Set(row, m.lay.index(tarFlag, t), -bigM)
		h[row] = 0
		row++
	}

	// Equalities: the SoC transition recurrence, flow decomposition, and
	// the optional grid permission sums.
	eqRows := 3 * T
	if !m.params.AllowGridDischarge {
		eqRows++
	}
	if !m.params.AllowGridCharge {
		eqRows++
	}
	a := mat.NewDense(eqRows, n, nil)
	b := make([]float64, eqRows)
	row = 0
	for t := 0; t < T; t++ {
		// soc_{t+1} = soc_t - totalDischarge_t/(capacity*efficiency)
		//                   + totalCharge_t/capacity
		// with soc_0 anchored at StartSoC and soc_T at EndSoC.
		a.Set(row, m.lay.index(tarTotalDischarge, t), 1/(m.spec.CapacityKWh*m.spec.Efficiency))
		a.Set(row, m.lay.index(tarTotalCharge, t), -1/m.spec.CapacityKWh)
		rhs := 0.0
		if t == 0 {
			rhs += m.params.StartSoC
		} else {
			a.Set(row, m.lay.index(tarSoC, t), -1)
		}
		if t == T-1 {
			rhs -= m.params.EndSoC
		} else {
			a.Set(row, m.lay.index(tarSoC, t+1), 1)
		}
		b[row] = rhs
		row++
	}
	for t := 0; t < T; t++ { // gridCharge + solarCharge = totalCharge
		a.Set(row, m.lay.index(tarGridCharge, t), 1)
		a.Set(row, m.lay.index(tarSolarCharge, t), 1)
		a.Set(row, m.lay.index(tarTotalCharge, t), -1)
		row++
	}
	for t := 0; t < T; t++ { // gridDischarge + selfUseDischarge = totalDischarge
		a.Set(row, m.lay.index(tarGridDischarge, t), 1)
		a.Set(row, m.lay.index(tarSelfUseDischarge, t), 1)
		a.Set(row, m.lay.index(tarTotalDischarge, t), -1)
		row++
	}
	if !m.params.AllowGridDischarge {
		for t := 0; t < T; t++ {
			a.Set(row, m.lay.index(tarGridDischarge, t), 1)
		}
		row++
	}
	if !m.params.AllowGridCharge {
		for t := 0; t < T; t++ {
			a.Set(row, m.lay.index(tarGridCharge, t), 1)
		}
		row++
	}

	integral := make([]bool, n)
	for t := 0; t < T; t++ {
		integral[m.lay.index(tarFlag, t)] = true
	}

	return solver.Problem{Objective: obj, G: g, H: h, A: a, B: b, Integral: integral}
}

// schedule copies one block of the solution, or zeros when no solution is
// recorded. Callers never need to branch on solver success themselves.
func (m *TariffModel) schedule(block int) []float64 {
	out := make([]float64, m.lay.periods)
	if m.state != stateSolved {
		return out
	}
	copy(out, m.lay.block(m.x, block))
	return out
}

// GridDischarges returns the kWh discharged to the grid per period.
func (m *TariffModel) GridDischarges() []float64 { return m.schedule(tarGridDischarge) }

// SelfUseDischarges returns the kWh discharged to offset on-site usage per period.
func (m *TariffModel) SelfUseDischarges() []float64 { return m.schedule(tarSelfUseDischarge) }

// GridCharges returns the kWh charged from the grid per period.
func (m *TariffModel) GridCharges() []float64 { return m.schedule(tarGridCharge) }

// SolarCharges returns the kWh charged from on-site surplus per period.
func (m *TariffModel) SolarCharges() []float64 { return m.schedule(tarSolarCharge) }

// Discharges returns the total kWh discharged per period.
func (m *TariffModel) Discharges() []float64 { return m.schedule(tarTotalDischarge) }

// Charges returns the total kWh charged per period.
func (m *TariffModel) Charges() []float64 { return m.schedule(tarTotalCharge) }

// SoCs returns the state-of-charge trace. The first entry is the caller
// supplied start SoC: the optimizer never constrains soc_0 directly, it only
// anchors the transition leaving the first period.
func (m *TariffModel) SoCs() []float64 {
	out := m.schedule(tarSoC)
	if m.state == stateSolved {
		out[0] = m.params.StartSoC
	}
	return out
}

// Diagnostic returns the solver message of the last failed solve, or the
// empty string. It is the only way to tell "the battery yields nothing"
// apart from "the solve failed".
func (m *TariffModel) Diagnostic() string { return m.diag }

// ComputeYield returns the yield of operating the battery over the horizon
// and the resulting total cost for the household. Without a recorded
// solution the yield is zero and the cost is the do-nothing baseline
// computed from the raw inputs.
func (m *TariffModel) ComputeYield() (yield, totalCost float64) {
	T := m.lay.periods
	origCost := 0.0
	for t := 0; t < T; t++ {
		origCost += round6(m.series.Usage[t]*m.taxedPrices[t] - m.series.FeedIn[t]*m.series.Prices[t])
	}
	if m.state != stateSolved {
		return 0, origCost
	}

	gridDischarge := m.GridDischarges()
	selfUseDischarge := m.SelfUseDischarges()
	gridCharge := m.GridCharges()
	solarCharge := m.SolarCharges()
	socs := m.SoCs()

	extraCost := 0.0
	for t := 0; t < T; t++ {
		extraCost += gridCharge[t]*m.taxedPrices[t] + solarCharge[t]*m.series.Prices[t] -
			selfUseDischarge[t]*m.taxedPrices[t] - gridDischarge[t]*m.series.Prices[t]
		m.log.Debugw("period plan", map[string]any{
			"t":                  t,
			"usage":              m.series.Usage[t],
			"feed_in":            m.series.FeedIn[t],
			"grid_discharge":     gridDischarge[t],
			"self_use_discharge": selfUseDischarge[t],
			"grid_charge":        gridCharge[t],
			"solar_charge":       solarCharge[t],
			"soc":                socs[t],
			"price":              m.series.Prices[t],
			"taxed_price":        m.taxedPrices[t],
		})
	}
	return -extraCost, origCost + extraCost
}

// Cycles returns the number of full charge/discharge cycles in the recorded
// schedule, measured against the usable SoC band.
func (m *TariffModel) Cycles() float64 {
	var total float64
	for _, c := range m.Charges() {
		total += c
	}
	return total / m.spec.EffectiveCapacityKWh()
}

package optimizer

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mariondam/Wattflex/core/battery"
	corelogger "github.com/mariondam/Wattflex/core/logger"
	"github.com/mariondam/Wattflex/core/solver"
)

// NetMeteringModel builds and solves the two-flow schedule MILP for one
// horizon of hourly prices. Under net metering all grid exchange nets out at
// a single price, so usage, feed-in and taxes drop out of the model.
//
// Successive horizons chain through Advance, which seeds a fresh model with
// the receiver's end-of-horizon state of charge.
type NetMeteringModel struct {
	solver   solver.Solver
	spec     battery.Spec
	prices   []float64
	startSoC float64
	endSoC   float64
	cutoff   float64
	lay      layout
	log      corelogger.Logger

	state solveState
	x     []float64
	diag  string
}

// NewNetMeteringModel validates the inputs and prepares a model. A nil
// solver selects the built-in branch-and-bound simplex.
func NewNetMeteringModel(sol solver.Solver, spec battery.Spec, prices []float64, startSoC, endSoC, cutoff float64, log corelogger.Logger) (*NetMeteringModel, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("no prices given")
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
	return &NetMeteringModel{
		solver:   sol,
		spec:     spec,
		prices:   append([]float64(nil), prices...),
		startSoC: startSoC,
		endSoC:   endSoC,
		cutoff:   cutoff,
		lay:      layout{periods: len(prices), blocks: nmBlocks},
		log:      log,
	}, nil
}

// Advance returns a fresh model for the next horizon: the receiver's end SoC
// becomes the new start SoC and newEndSoC the new target. Nil prices reuse
// the receiver's price series. The receiver is left untouched.
func (m *NetMeteringModel) Advance(prices []float64, newEndSoC float64) (*NetMeteringModel, error) {
	if prices == nil {
		prices = m.prices
	}
	return NewNetMeteringModel(m.solver, m.spec, prices, m.endSoC, newEndSoC, m.cutoff, m.log)
}

// Periods returns the horizon length T.
func (m *NetMeteringModel) Periods() int { return m.lay.periods }

// Solved reports whether the last Optimize call produced a schedule.
func (m *NetMeteringModel) Solved() bool { return m.state == stateSolved }

// Optimize builds the MILP and solves it, discarding prior solution state
// first. Infeasibility degrades to an all-zero schedule, observable through
// Diagnostic; the returned error is reserved for context cancellation.
func (m *NetMeteringModel) Optimize(ctx context.Context) error {
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

func (m *NetMeteringModel) buildProblem() solver.Problem {
	T := m.lay.periods
	n := m.lay.vars()

	cutoffRate := m.cutoff / (m.spec.EffectiveCapacityKWh() * m.spec.Efficiency)
	obj := make([]float64, n)
	for t := 0; t < T; t++ {
		obj[m.lay.index(nmDischarge, t)] = -m.prices[t]
		obj[m.lay.index(nmCharge, t)] = m.prices[t]
		obj[m.lay.index(nmSoC, t)] = cutoffRate
	}

	g := mat.NewDense(6*T, n, nil)
	h := make([]float64, 6*T)
	bigM := deriveBigM(m.spec.MaxDischargeKW, m.spec.MaxChargeKW, 1)
	row := 0
	for t := 0; t < T; t++ { // discharge power limit
		g.Set(row, m.lay.index(nmDischarge, t), 1)
		h[row] = m.spec.MaxDischargeKW
		row++
	}
	for t := 0; t < T; t++ { // charge power limit
		g.Set(row, m.lay.index(nmCharge, t), 1)
		h[row] = m.spec.MaxChargeKW
		row++
	}
	for t := 0; t < T; t++ { // soc <= maxSoC
		g.Set(row, m.lay.index(nmSoC, t), 1)
		h[row] = m.spec.MaxSoC
		row++
	}
	for t := 0; t < T; t++ { // soc >= minSoC
		g.Set(row, m.lay.index(nmSoC, t), -1)
		h[row] = -m.spec.MinSoC
		row++
	}
	for t := 0; t < T; t++ { // discharge <= M * (1 - flag)
		g.Set(row, m.lay.index(nmDischarge, t), 1)
		g.Set(row, m.lay.index(nmFlag, t), bigM)
		h[row] = bigM
		row++
	}
	for t := 0; t < T; t++ { // charge <= M * flag
		g.Set(row, m.lay.index(nmCharge, t), 1)
		g.Set(row, m.lay.index(nmFlag, t), -bigM)
		h[row] = 0
		row++
	}

	a := mat.NewDense(T, n, nil)
	b := make([]float64, T)
	for t := 0; t < T; t++ {
		a.Set(t, m.lay.index(nmDischarge, t), 1/(m.spec.CapacityKWh*m.spec.Efficiency))
		a.Set(t, m.lay.index(nmCharge, t), -1/m.spec.CapacityKWh)
		rhs := 0.0
		if t == 0 {
			rhs += m.startSoC
		} else {
			a.Set(t, m.lay.index(nmSoC, t), -1)
		}
		if t == T-1 {
			rhs -= m.endSoC
		} else {
			a.Set(t, m.lay.index(nmSoC, t+1), 1)
		}
		b[t] = rhs
	}

	integral := make([]bool, n)
	for t := 0; t < T; t++ {
		integral[m.lay.index(nmFlag, t)] = true
	}

	return solver.Problem{Objective: obj, G: g, H: h, A: a, B: b, Integral: integral}
}

// Discharges returns the kWh discharged per period, rounded to four
// decimals, or zeros when no solution is recorded.
func (m *NetMeteringModel) Discharges() []float64 {
	out := make([]float64, m.lay.periods)
	if m.state != stateSolved {
		return out
	}
	for i, v := range m.lay.block(m.x, nmDischarge) {
		out[i] = round4(math.Abs(v))
	}
	return out
}

// Charges returns the kWh charged per period, rounded to four decimals, or
// zeros when no solution is recorded.
func (m *NetMeteringModel) Charges() []float64 {
	out := make([]float64, m.lay.periods)
	if m.state != stateSolved {
		return out
	}
	for i, v := range m.lay.block(m.x, nmCharge) {
		out[i] = round4(v)
	}
	return out
}

// SoCs returns the state-of-charge trace with the first entry pinned to the
// caller-supplied start SoC, or zeros when no solution is recorded.
func (m *NetMeteringModel) SoCs() []float64 {
	out := make([]float64, m.lay.periods)
	if m.state != stateSolved {
		return out
	}
	copy(out, m.lay.block(m.x, nmSoC))
	out[0] = m.startSoC
	return out
}

// Diagnostic returns the solver message of the last failed solve, or the
// empty string.
func (m *NetMeteringModel) Diagnostic() string { return m.diag }

// ComputeYield returns the yield of operating the battery over the horizon:
// discharged energy earns the period price, charged energy pays it. Zero
// when no solution is recorded.
func (m *NetMeteringModel) ComputeYield() float64 {
	if m.state != stateSolved {
		return 0
	}
	discharges := m.Discharges()
	charges := m.Charges()
	socs := m.SoCs()

	var total float64
	for t := 0; t < m.lay.periods; t++ {
		total += discharges[t]*m.prices[t] - charges[t]*m.prices[t]
		m.log.Debugw("period plan", map[string]any{
			"t":         t,
			"discharge": discharges[t],
			"charge":    charges[t],
			"soc":       socs[t],
			"price":     m.prices[t],
		})
	}
	return total
}

// Cycles returns the number of full charge/discharge cycles in the recorded
// schedule, measured against the usable SoC band.
func (m *NetMeteringModel) Cycles() float64 {
	var total float64
	for _, c := range m.Charges() {
		total += c
	}
	return total / m.spec.EffectiveCapacityKWh()
}

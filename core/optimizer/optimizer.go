// Package optimizer computes cost-minimizing charge/discharge schedules for
// a single stationary battery over a horizon of known per-period prices.
//
// Two formulations are provided. TariffModel distinguishes four energy flows
// (grid discharge, self-use discharge, grid charge, solar charge) under
// asymmetric buy/sell pricing and taxes. NetMeteringModel collapses the
// flows into one net charge/discharge pair priced at a single rate, as under
// the Dutch net-metering arrangement. Both build a MILP with a per-period
// boolean preventing simultaneous charge and discharge and hand it to a
// solver.Solver.
package optimizer

import (
	"math"
)

// solveState tracks the lifecycle of a model instance. Accessors are total
// over it: anything but stateSolved reads as an all-zero schedule.
type solveState int

const (
	stateUnsolved solveState = iota
	stateSolved
	stateInfeasible
)

// nopLogger keeps the models free of nil checks when no logger is attached.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// deriveBigM returns a disjunction constant strictly dominating any feasible
// per-period charge or discharge volume of the given power bounds. Deriving
// it from the instance keeps the mutual-exclusion rows valid for any battery
// size; a fixed constant silently corrupts feasibility when it is too small.
func deriveBigM(maxDischargeKW, maxChargeKW, intervalFraction float64) float64 {
	return 1 + intervalFraction*math.Max(maxDischargeKW, maxChargeKW)
}

func round4(f float64) float64 { return math.Round(f*1e4) / 1e4 }

func round6(f float64) float64 { return math.Round(f*1e6) / 1e6 }

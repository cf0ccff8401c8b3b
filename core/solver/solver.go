// Package solver defines the mixed-integer linear programming boundary used
// by the schedule optimizers and ships a branch-and-bound implementation on
// top of gonum's simplex.
//
// A Problem is stated in general form over non-negative variables:
//
//	minimize  Objective ⋅ x
//	s.t.      G x <= H
//	          A x = B
//	          x >= 0
//	          x[i] integer where Integral[i]
//
// The variable ordering is owned by the caller; the solver never reorders
// columns.
package solver

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Status reports the outcome of a solve.
type Status int

const (
	// StatusOptimal means an integer-feasible optimal solution was found.
	StatusOptimal Status = iota
	// StatusInfeasible covers every unsuccessful outcome: an infeasible or
	// unbounded program, numerical failure, or unmet integrality.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Problem is a general-form MILP over non-negative variables.
type Problem struct {
	Objective []float64
	G         *mat.Dense // inequality coefficients, may be nil
	H         []float64  // inequality bounds
	A         *mat.Dense // equality coefficients, may be nil
	B         []float64  // equality bounds
	Integral  []bool     // integrality mask over the variable ordering
}

// Vars returns the number of decision variables.
func (p Problem) Vars() int { return len(p.Objective) }

// Validate checks that the matrix and vector dimensions agree.
func (p Problem) Validate() error {
	n := p.Vars()
	if n == 0 {
		return fmt.Errorf("empty objective")
	}
	if (p.G == nil) != (len(p.H) == 0) {
		return fmt.Errorf("inequality matrix and bounds must be set together")
	}
	if p.G != nil {
		r, c := p.G.Dims()
		if c != n {
			return fmt.Errorf("inequality matrix has %d columns, want %d", c, n)
		}
		if r != len(p.H) {
			return fmt.Errorf("inequality matrix has %d rows but %d bounds", r, len(p.H))
		}
	}
	if (p.A == nil) != (len(p.B) == 0) {
		return fmt.Errorf("equality matrix and bounds must be set together")
	}
	if p.A != nil {
		r, c := p.A.Dims()
		if c != n {
			return fmt.Errorf("equality matrix has %d columns, want %d", c, n)
		}
		if r != len(p.B) {
			return fmt.Errorf("equality matrix has %d rows but %d bounds", r, len(p.B))
		}
	}
	if p.Integral != nil && len(p.Integral) != n {
		return fmt.Errorf("integrality mask has length %d, want %d", len(p.Integral), n)
	}
	return nil
}

// Result carries the decision vector of a solve. X is only meaningful when
// Status is StatusOptimal; Message carries a diagnostic otherwise.
type Result struct {
	Status    Status
	X         []float64
	Objective float64
	Message   string
}

// Solver solves mixed-integer linear programs. Implementations must be safe
// for concurrent use by independent callers. Solve returns an error only for
// malformed problems or context cancellation; solver-level failure is
// reported through Result.Status.
type Solver interface {
	Solve(ctx context.Context, p Problem) (Result, error)
}

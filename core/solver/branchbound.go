package solver

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	defaultTol      = 1e-7
	defaultIntTol   = 1e-6
	defaultMaxNodes = 100000
)

// BranchBound solves MILPs by branch and bound over LP relaxations, using
// gonum's simplex for each node. The zero value is ready to use.
type BranchBound struct {
	// Tol is the simplex tolerance passed to lp.Simplex. Defaults to 1e-7.
	Tol float64
	// IntTol is the tolerance within which a relaxed value counts as
	// integral. Defaults to 1e-6.
	IntTol float64
	// MaxNodes bounds the number of explored nodes. When exceeded, the best
	// incumbent found so far is returned, or StatusInfeasible if none.
	MaxNodes int
}

// NewBranchBound returns a BranchBound solver with default tolerances.
func NewBranchBound() *BranchBound { return &BranchBound{} }

type varFix struct {
	index int
	value float64
}

type node struct {
	fixes []varFix
}

func (n node) with(f varFix) node {
	fixes := make([]varFix, len(n.fixes), len(n.fixes)+1)
	copy(fixes, n.fixes)
	return node{fixes: append(fixes, f)}
}

// Solve implements the Solver interface.
func (s *BranchBound) Solve(ctx context.Context, p Problem) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	tol := s.Tol
	if tol == 0 {
		tol = defaultTol
	}
	intTol := s.IntTol
	if intTol == 0 {
		intTol = defaultIntTol
	}
	maxNodes := s.MaxNodes
	if maxNodes == 0 {
		maxNodes = defaultMaxNodes
	}

	var (
		bestX   []float64
		bestObj = math.Inf(1)
		rootMsg string
	)

	stack := []node{{}}
	for explored := 0; len(stack) > 0; explored++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if explored >= maxNodes {
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, obj, err := s.solveRelaxation(p, nd.fixes, tol)
		if err != nil {
			if explored == 0 {
				rootMsg = err.Error()
			}
			continue
		}
		// The relaxation bounds every descendant, so a node worse than the
		// incumbent cannot contain a better integer solution.
		if bestX != nil && obj >= bestObj-tol {
			continue
		}
		branch := fractionalVar(p, x, intTol)
		if branch < 0 {
			bestX = x
			bestObj = obj
			continue
		}
		floor := math.Floor(x[branch])
		stack = append(stack,
			nd.with(varFix{index: branch, value: floor}),
			nd.with(varFix{index: branch, value: floor + 1}),
		)
	}

	if bestX == nil {
		msg := rootMsg
		if msg == "" {
			msg = "no integer feasible solution"
		}
		return Result{Status: StatusInfeasible, Message: msg}, nil
	}
	roundIntegral(p, bestX)
	return Result{Status: StatusOptimal, X: bestX, Objective: bestObj}, nil
}

// solveRelaxation solves the LP relaxation of p with the given variables
// fixed, returning the decision vector restricted to the original variables.
// The general form is converted to standard form by slack augmentation: the
// problem's variables are already non-negative, so no free-variable split is
// needed before handing it to lp.Simplex.
func (s *BranchBound) solveRelaxation(p Problem, fixes []varFix, tol float64) ([]float64, float64, error) {
	n := p.Vars()
	mIneq := len(p.H)
	mEq := len(p.B)
	rows := mIneq + mEq + len(fixes)
	cols := n + mIneq

	c := make([]float64, cols)
	copy(c, p.Objective)

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	for i := 0; i < mIneq; i++ {
		for j := 0; j < n; j++ {
			if v := p.G.At(i, j); v != 0 {
				a.Set(i, j, v)
			}
		}
		a.Set(i, n+i, 1) // slack
		b[i] = p.H[i]
	}
	for i := 0; i < mEq; i++ {
		for j := 0; j < n; j++ {
			if v := p.A.At(i, j); v != 0 {
				a.Set(mIneq+i, j, v)
			}
		}
		b[mIneq+i] = p.B[i]
	}
	for i, f := range fixes {
		a.Set(mIneq+mEq+i, f.index, 1)
		b[mIneq+mEq+i] = f.value
	}

	obj, x, err := lp.Simplex(c, a, b, tol, nil)
	if err != nil {
		return nil, 0, err
	}
	return x[:n:n], obj, nil
}

// fractionalVar returns the index of the integral variable furthest from an
// integer value, or -1 if all integral variables are within tol.
func fractionalVar(p Problem, x []float64, tol float64) int {
	best := -1
	bestDist := tol
	for i, integral := range p.Integral {
		if !integral {
			continue
		}
		_, frac := math.Modf(x[i])
		dist := math.Min(frac, 1-frac)
		if dist > bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

func roundIntegral(p Problem, x []float64) {
	for i, integral := range p.Integral {
		if integral {
			x[i] = math.Round(x[i])
		}
	}
}

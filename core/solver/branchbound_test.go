package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBranchBoundSolvesPlainLP(t *testing.T) {
	// maximize x1 + x2 with x1 <= 2, x2 <= 3.
	p := Problem{
		Objective: []float64{-1, -1},
		G:         mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		H:         []float64{2, 3},
	}
	res, err := NewBranchBound().Solve(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 2, res.X[0], 1e-6)
	assert.InDelta(t, 3, res.X[1], 1e-6)
	assert.InDelta(t, -5, res.Objective, 1e-6)
}

func TestBranchBoundRespectsEqualities(t *testing.T) {
	// minimize x1 + 2*x2 with x1 + x2 = 4 and x1 <= 3.
	p := Problem{
		Objective: []float64{1, 2},
		G:         mat.NewDense(1, 2, []float64{1, 0}),
		H:         []float64{3},
		A:         mat.NewDense(1, 2, []float64{1, 1}),
		B:         []float64{4},
	}
	res, err := NewBranchBound().Solve(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 3, res.X[0], 1e-6)
	assert.InDelta(t, 1, res.X[1], 1e-6)
}

func TestBranchBoundEnforcesIntegrality(t *testing.T) {
	// maximize x with x <= 2.5 and x integer. The relaxation lands on 2.5,
	// so the answer must come from branching.
	p := Problem{
		Objective: []float64{-1},
		G:         mat.NewDense(1, 1, []float64{1}),
		H:         []float64{2.5},
		Integral:  []bool{true},
	}
	res, err := NewBranchBound().Solve(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.Equal(t, 2.0, res.X[0])
	assert.InDelta(t, -2, res.Objective, 1e-6)
}

func TestBranchBoundBigMDisjunction(t *testing.T) {
	// maximize x + y with x <= M*(1-z), y <= M*z, x <= 4, y <= 3, z boolean.
	// Only one of x and y may be positive; y pays better here per unit, but
	// x's bound is larger, so x wins.
	const m = 10
	p := Problem{
		Objective: []float64{-1, -1, 0},
		G: mat.NewDense(4, 3, []float64{
			1, 0, m,
			0, 1, -m,
			1, 0, 0,
			0, 1, 0,
		}),
		H:        []float64{m, 0, 4, 3},
		Integral: []bool{false, false, true},
	}
	res, err := NewBranchBound().Solve(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, res.Status)
	assert.InDelta(t, 4, res.X[0], 1e-6)
	assert.InDelta(t, 0, res.X[1], 1e-6)
	assert.Equal(t, 0.0, res.X[2])
}

func TestBranchBoundInfeasible(t *testing.T) {
	// x <= 1 and x >= 2 cannot both hold.
	p := Problem{
		Objective: []float64{1},
		G:         mat.NewDense(2, 1, []float64{1, -1}),
		H:         []float64{1, -2},
	}
	res, err := NewBranchBound().Solve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.NotEmpty(t, res.Message)
	assert.Nil(t, res.X)
}

func TestBranchBoundContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Problem{
		Objective: []float64{1},
		G:         mat.NewDense(1, 1, []float64{1}),
		H:         []float64{1},
	}
	_, err := NewBranchBound().Solve(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProblemValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Problem
	}{
		{"empty objective", Problem{}},
		{"bounds without matrix", Problem{Objective: []float64{1}, H: []float64{1}}},
		{"column mismatch", Problem{Objective: []float64{1}, G: mat.NewDense(1, 2, nil), H: []float64{1}}},
		{"row mismatch", Problem{Objective: []float64{1}, G: mat.NewDense(2, 1, nil), H: []float64{1}}},
		{"equality column mismatch", Problem{Objective: []float64{1}, A: mat.NewDense(1, 2, nil), B: []float64{1}}},
		{"mask length mismatch", Problem{Objective: []float64{1, 1}, Integral: []bool{true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.p.Validate())
		})
	}
}

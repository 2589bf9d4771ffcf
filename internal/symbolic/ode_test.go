package symbolic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSolve(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"exponential growth", "diff(y(x), x) - y(x) = 0", "y(x) = C1*exp(x)"},
		{"harmonic oscillator", "y'' + y = 0", "y(x) = C1*sin(x) + C2*cos(x)"},
		{"constant forcing", "diff(y(x), x) = 3", "y(x) = C1 + 3*x"},
		{"decay with forcing", "y' + 2*y = 4", "y(x) = C1*exp(-2*x) + 2"},
		{"repeated root", "y'' - 2*y' + y = 0", "y(x) = C2*x*exp(x) + C1*exp(x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eq, err := ParseEquation(tt.input)
			require.NoError(t, err)
			require.True(t, eq.IsDifferential())
			sol, err := DSolve(eq)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sol.String())
		})
	}
}

func TestDSolveDampedOscillator(t *testing.T) {
	eq, err := ParseEquation("y'' + 2*y' + 5*y = 0")
	require.NoError(t, err)
	sol, err := DSolve(eq)
	require.NoError(t, err)

	// roots -1 ± 2i
	assert.Contains(t, sol.RHS.String(), "exp(-x)*sin(2*x)")
	assert.Contains(t, sol.RHS.String(), "cos(2*x)*exp(-x)")
}

func TestDSolveRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"nonlinear", "diff(y(x), x) * y(x) = 0"},
		{"variable forcing", "diff(y(x), x) = x"},
		{"variable coefficient", "x*diff(y(x), x) + y(x) = 0"},
		{"two functions", "diff(y(x), x) + f(x) = 0"},
		{"no unknown", "x + 1 = 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eq, err := ParseEquation(tt.input)
			require.NoError(t, err)
			_, err = DSolve(eq)
			assert.ErrorIs(t, err, ErrUnsupportedODE)
		})
	}
}

func TestDSolveLaTeX(t *testing.T) {
	eq, err := ParseEquation("diff(y(x), x) - y(x) = 0")
	require.NoError(t, err)
	sol, err := DSolve(eq)
	require.NoError(t, err)
	assert.Equal(t, `y(x) = C_{1} e^{x}`, sol.LaTeX())
}

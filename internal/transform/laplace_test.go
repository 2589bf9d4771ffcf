package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/GriffinCanCode/latexbot/internal/symbolic"
)

// numericLaplace integrates f(t)*exp(-s*t) over [0, 60], far enough for the
// exponentially decaying integrands used here.
func numericLaplace(f func(float64) float64, s float64) float64 {
	return quad.Fixed(func(t float64) float64 {
		return f(t) * math.Exp(-s*t)
	}, 0, 60, 1500, quad.Legendre{}, 0)
}

func TestLaplaceMatchesQuadrature(t *testing.T) {
	inputs := []string{
		"1",
		"3 + t",
		"t**3",
		"exp(2*t)",
		"sin(3*t)",
		"cos(t)",
		"t*sin(t)",
		"t**2*exp(-t)",
		"exp(-t)*cos(2*t)",
		"sin(t)**2",
		"sin(t)*cos(3*t)",
		"cosh(2*t)",
		"sinh(t)*exp(-t)",
		"sin(2*t + 1)",
		"t*exp(t)*cosh(t)",
		"5*exp(-3*t + 2)",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			f := symbolic.MustParse(input)
			F, err := Laplace(f, "t", "s")
			require.NoError(t, err)

			ft := symbolic.Compile(f, "t")
			Fs := symbolic.Compile(F, "s")
			for _, s := range []float64{3.5, 5} {
				want := numericLaplace(ft, s)
				assert.InDelta(t, want, Fs(s), 1e-7*(1+math.Abs(want)), "F(%v) = %s", s, F)
			}
		})
	}
}

func TestLaplaceClosedForms(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1", "1/s"},
		{"exp(2*t)", "1/(s - 2)"},
		{"sin(t)", "1/(s**2 + 1)"},
		{"t**2", "2/s**3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			F, err := Laplace(symbolic.MustParse(tt.input), "t", "s")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, F.String())
		})
	}
}

func TestLaplaceFractionalPower(t *testing.T) {
	F, err := Laplace(symbolic.MustParse("1/sqrt(t)"), "t", "s")
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(math.Pi/2), symbolic.Compile(F, "s")(2), 1e-12)

	F, err = Laplace(symbolic.MustParse("sqrt(t)"), "t", "s")
	require.NoError(t, err)
	// Γ(3/2) = sqrt(pi)/2
	assert.InDelta(t, math.Sqrt(math.Pi)/2/math.Pow(3, 1.5), symbolic.Compile(F, "s")(3), 1e-12)
}

func TestLaplaceUnsupported(t *testing.T) {
	tests := []string{
		"1/t",
		"tan(t)",
		"exp(t**2)",
		"sin(t)**3",
		"log(t)",
		"sin(t)*sinh(t)",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Laplace(symbolic.MustParse(input), "t", "s")
			assert.ErrorIs(t, err, symbolic.ErrNoClosedForm)
		})
	}

	_, err := Laplace(symbolic.MustParse("s*t"), "t", "s")
	assert.Error(t, err)
}

func TestInverseLaplaceClosedForms(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1/(s - 2)", "exp(2*t)"},
		{"1/s**2", "t"},
		{"1/(s**2 + 1)", "sin(t)"},
		{"0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := InverseLaplace(symbolic.MustParse(tt.input), "s", "t")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f.String())
		})
	}
}

func TestInverseLaplaceRoundTrip(t *testing.T) {
	inputs := []string{
		"1/(s*(s + 1))",
		"(s + 3)/((s + 1)*(s + 2))",
		"1/(s + 1)**3",
		"s/(s**2 + 4)",
		"(2*s + 3)/(s**2 + 2*s + 5)",
		"1/(s**2 - 2)",
		"1/(s**2 + 1)**2",
		"s/(s**2 + 1)**2",
		"(s**3 + 1)/(s**2 + 2*s + 2)**2",
		"1/((s**2 + 1)*(s**2 + 4))",
		"1/((s - 1)*(s**2 + 1))",
		"1/(s**3 + 2)",
		"(s + 1)/(s**4 + s + 1)",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			F := symbolic.MustParse(input)
			f, err := InverseLaplace(F, "s", "t")
			require.NoError(t, err)

			ft := symbolic.Compile(f, "t")
			Fs := symbolic.Compile(F, "s")
			for _, s := range []float64{3, 4.5} {
				want := Fs(s)
				assert.InDelta(t, want, numericLaplace(ft, s), 1e-7*(1+math.Abs(want)), "f(t) = %s", f)
			}
		})
	}
}

func TestInverseLaplaceUnsupported(t *testing.T) {
	tests := []string{
		"s**2/(s + 1)",
		"exp(-s)/s",
		"1/(s**3 + 2)**2",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := InverseLaplace(symbolic.MustParse(input), "s", "t")
			assert.ErrorIs(t, err, symbolic.ErrNoClosedForm)
		})
	}
}

package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/GriffinCanCode/latexbot/internal/symbolic"
)

// numericFourier integrates an even real f against cos(2πkx).
func numericFourier(f func(float64) float64, k float64) float64 {
	return 2 * quad.Fixed(func(x float64) float64 {
		return f(x) * math.Cos(2*math.Pi*k*x)
	}, 0, 40, 2000, quad.Legendre{}, 0)
}

func TestFourierMatchesQuadrature(t *testing.T) {
	inputs := []string{
		"exp(-x**2)",
		"exp(-2*x**2 + 1)",
		"exp(-abs(x))",
		"3*exp(-2*abs(x))",
		"exp(-x**2) + exp(-abs(x))",
		"a*exp(-x**2/2)",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			f := symbolic.MustParse(input).Subs("a", symbolic.Int(2))
			F, err := Fourier(f, "x", "k")
			require.NoError(t, err)

			fx := symbolic.Compile(f, "x")
			Fk := symbolic.Compile(F, "k")
			for _, k := range []float64{0, 0.3, 0.7} {
				want := numericFourier(fx, k)
				assert.InDelta(t, want, Fk(k), 1e-8, "F(%v) = %s", k, F)
			}
		})
	}
}

func TestFourierLorentzian(t *testing.T) {
	F, err := Fourier(symbolic.MustParse("1/(1 + x**2)"), "x", "k")
	require.NoError(t, err)
	Fk := symbolic.Compile(F, "k")
	assert.InDelta(t, math.Pi, Fk(0), 1e-12)
	assert.InDelta(t, math.Pi*math.Exp(-math.Pi/2), Fk(0.25), 1e-12)
	assert.InDelta(t, math.Pi*math.Exp(-math.Pi/2), Fk(-0.25), 1e-12)

	F, err = Fourier(symbolic.MustParse("2/(4 + x**2)"), "x", "k")
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*math.Exp(-0.4*math.Pi), symbolic.Compile(F, "k")(0.1), 1e-12)
}

func TestFourierSelfDual(t *testing.T) {
	F, err := Fourier(symbolic.MustParse("exp(-pi*x**2)"), "x", "k")
	require.NoError(t, err)
	assert.Equal(t, "exp(-pi*k**2)", F.String())
}

func TestInverseFourierRoundTrip(t *testing.T) {
	for _, input := range []string{"exp(-x**2)", "exp(-3*abs(x))", "1/(2 + x**2)"} {
		t.Run(input, func(t *testing.T) {
			f := symbolic.MustParse(input)
			F, err := Fourier(f, "x", "k")
			require.NoError(t, err)
			back, err := InverseFourier(F, "k", "x")
			require.NoError(t, err)

			fx, bx := symbolic.Compile(f, "x"), symbolic.Compile(back, "x")
			for _, x := range []float64{-1.5, 0, 0.4, 2} {
				assert.InDelta(t, fx(x), bx(x), 1e-12, "inverse = %s", back)
			}
		})
	}
}

func TestFourierUnsupported(t *testing.T) {
	tests := []string{
		"1",
		"x",
		"exp(x**2)",
		"sin(x)",
		"exp(-x**2)*x",
		"1/(1 - x**2)",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Fourier(symbolic.MustParse(input), "x", "k")
			assert.ErrorIs(t, err, symbolic.ErrNoClosedForm)
		})
	}
}

func TestSampledGaussian(t *testing.T) {
	spec, err := Sampled(func(x float64) float64 {
		return math.Exp(-math.Pi * x * x)
	}, 10, 1024)
	require.NoError(t, err)
	require.Len(t, spec.Freq, 513)

	assert.InDelta(t, 0, spec.Freq[0], 1e-15)
	assert.InDelta(t, 0.5, spec.Freq[10], 1e-12)
	assert.InDelta(t, 1, spec.Magnitude[0], 1e-9)
	assert.InDelta(t, math.Exp(-math.Pi/4), spec.Magnitude[10], 1e-9)

	freq, mag := spec.Peak()
	assert.Zero(t, freq)
	assert.InDelta(t, 1, mag, 1e-9)
}

func TestSampledRejectsBadWindow(t *testing.T) {
	_, err := Sampled(math.Sin, 0, 64)
	assert.ErrorIs(t, err, ErrBadWindow)
	_, err = Sampled(math.Sin, 1, 1)
	assert.ErrorIs(t, err, ErrBadWindow)
}

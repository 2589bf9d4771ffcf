package symbolic

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolyArithmetic(t *testing.T) {
	p := PolyInts(-4, 0, 1) // x**2 - 4
	q := PolyInts(-2, 1)    // x - 2

	quo, rem := p.DivMod(q)
	assert.Equal(t, "x+2", quo.String())
	assert.True(t, rem.IsZero())

	assert.Equal(t, "x**2+x-6", p.Add(q).String())
	assert.Equal(t, "x**3-2*x**2-4*x+8", p.Mul(q).String())
	assert.Equal(t, "2*x", p.Deriv().String())
	assert.Equal(t, 2, p.Degree())
	assert.Equal(t, -1, (&Poly{}).Degree())
}

func TestPolyGCD(t *testing.T) {
	a := PolyInts(-1, 0, 1) // x**2 - 1
	b := PolyInts(1, -2, 1) // x**2 - 2x + 1
	assert.Equal(t, "x-1", a.GCD(b).String())

	g, s, u := a.ExtendedGCD(b)
	combo := s.Mul(a).Add(u.Mul(b))
	assert.Equal(t, g.String(), combo.String())
}

func TestPolyShiftAndEval(t *testing.T) {
	p := PolyInts(0, 0, 1)
	assert.Equal(t, "x**2+2*x+1", p.Shift(big.NewRat(1, 1)).String())
	assert.Zero(t, big.NewRat(9, 4).Cmp(p.Eval(big.NewRat(3, 2))))
	assert.Equal(t, complex(-1, 0), p.EvalComplex(complex(0, 1)))
}

func TestPolyContent(t *testing.T) {
	p := NewPoly(big.NewRat(-3, 2), big.NewRat(-9, 4))
	assert.Zero(t, big.NewRat(-3, 4).Cmp(p.Content()))
	assert.Equal(t, "3*x+2", p.Primitive().String())
}

func TestRoots(t *testing.T) {
	t.Run("repeated rational roots", func(t *testing.T) {
		roots := Roots(PolyInts(2, -3, 0, 1)) // (x - 1)**2 (x + 2)
		require.Len(t, roots, 2)
		assert.Equal(t, "-2", roots[0].Expr().String())
		assert.Equal(t, 1, roots[0].Mult)
		assert.Equal(t, "1", roots[1].Expr().String())
		assert.Equal(t, 2, roots[1].Mult)
	})

	t.Run("zero root", func(t *testing.T) {
		roots := Roots(PolyInts(0, -1, 0, 1)) // x**3 - x
		require.Len(t, roots, 3)
		assert.Equal(t, "0", roots[1].Expr().String())
	})

	t.Run("biquadratic", func(t *testing.T) {
		roots := Roots(PolyInts(6, 0, -5, 0, 1)) // (x**2 - 2)(x**2 - 3)
		require.Len(t, roots, 4)
		for _, r := range roots {
			assert.True(t, r.Exact)
			assert.InDelta(t, 0, cmplxAbs(PolyInts(6, 0, -5, 0, 1).EvalComplex(r.Value)), 1e-9)
		}
		assert.Equal(t, "-sqrt(3)", roots[0].Expr().String())
	})

	t.Run("numeric cubic", func(t *testing.T) {
		p := PolyInts(-2, 0, 0, 1) // x**3 - 2
		roots := Roots(p)
		require.Len(t, roots, 3)
		assert.True(t, roots[0].IsReal())
		assert.False(t, roots[0].Exact)
		assert.InDelta(t, math.Cbrt(2), real(roots[0].Value), 1e-12)
		for _, r := range roots {
			assert.InDelta(t, 0, cmplxAbs(p.EvalComplex(r.Value)), 1e-9)
		}
	})
}

func cmplxAbs(z complex128) float64 { return math.Hypot(real(z), imag(z)) }

func TestAsRational(t *testing.T) {
	e, err := Parse("(x**2 - 1)/(x - 1) + 1/x")
	require.NoError(t, err)
	num, den, ok := AsRational(e, "x")
	require.True(t, ok)
	assert.Equal(t, "x**2+x+1", num.String())
	assert.Equal(t, "x", den.String())

	_, _, ok = AsRational(MustParse("sin(x)"), "x")
	assert.False(t, ok)
}

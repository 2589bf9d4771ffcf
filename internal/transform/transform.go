package transform

import (
	"fmt"
	"math/big"

	"github.com/GriffinCanCode/latexbot/internal/symbolic"
)

func noClosedForm(kind string, e symbolic.Expr) error {
	return fmt.Errorf("%s transform of %s: %w", kind, e, symbolic.ErrNoClosedForm)
}

func terms(e symbolic.Expr) []symbolic.Expr {
	if a, ok := e.(*symbolic.Add); ok {
		return a.Terms()
	}
	return []symbolic.Expr{e}
}

func factors(e symbolic.Expr) []symbolic.Expr {
	if m, ok := e.(*symbolic.Mul); ok {
		return m.Factors()
	}
	return []symbolic.Expr{e}
}

// linear writes u = a*x + b with a and b free of x. a may be zero.
func linear(u symbolic.Expr, x string) (a, b symbolic.Expr, ok bool) {
	c, ok := symbolic.PolyCoeffs(u, x)
	if !ok || len(c) > 2 {
		return nil, nil, false
	}
	if len(c) == 1 {
		return symbolic.Int(0), c[0], true
	}
	return c[1], c[0], true
}

// positive reports whether e is free of symbols and evaluates above zero.
func positive(e symbolic.Expr) bool {
	if len(symbolic.FreeSymbols(e)) > 0 {
		return false
	}
	v, err := e.Eval(nil)
	return err == nil && v > 0
}

func isZero(e symbolic.Expr) bool {
	n, ok := e.(*symbolic.Num)
	return ok && n.IsZero()
}

// positiveSqrt takes the square root of a product of positive factors,
// halving the exponents of powers instead of nesting roots.
func positiveSqrt(e symbolic.Expr) symbolic.Expr {
	fs := factors(e)
	out := make([]symbolic.Expr, len(fs))
	for i, f := range fs {
		if p, ok := f.(*symbolic.Pow); ok {
			if _, num := p.Exponent().(*symbolic.Num); num {
				out[i] = symbolic.PowOf(p.Base(), symbolic.MulOf(p.Exponent(), symbolic.Rat(1, 2)))
				continue
			}
		}
		out[i] = symbolic.Sqrt(f)
	}
	return symbolic.MulOf(out...)
}

// ratSqrt returns the exact square root of a non-negative rational.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	if r.Sign() < 0 {
		return nil, false
	}
	num := new(big.Int).Sqrt(r.Num())
	den := new(big.Int).Sqrt(r.Denom())
	out := new(big.Rat).SetFrac(num, den)
	if new(big.Rat).Mul(out, out).Cmp(r) != 0 {
		return nil, false
	}
	return out, true
}

func factorial(n int) *big.Int {
	return new(big.Int).MulRange(1, int64(max(n, 1)))
}

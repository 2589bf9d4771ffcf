package transform

import (
	"fmt"

	"github.com/GriffinCanCode/latexbot/internal/symbolic"
)

// Fourier returns F(k) = ∫ f(x) exp(-2πikx) dx for f built from the pairs
//
//	exp(-a*x**2)      -> sqrt(pi/a) * exp(-pi**2*k**2/a)
//	exp(-a*|x|)       -> 2*a / (a**2 + 4*pi**2*k**2)
//	1/(p + q*x**2)    -> pi/sqrt(p*q) * exp(-2*pi*sqrt(p/q)*|k|)
//
// with a, p and q positive constants, and sums and constant multiples of
// them.
func Fourier(f symbolic.Expr, x, k string) (symbolic.Expr, error) {
	if symbolic.Has(f, k) {
		return nil, fmt.Errorf("fourier transform of %s: %s is already in use", f, k)
	}
	ts := terms(f)
	out := make([]symbolic.Expr, 0, len(ts))
	for _, term := range ts {
		r, err := fourierTerm(term, x, k)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return symbolic.AddOf(out...), nil
}

// InverseFourier returns f(x) = ∫ F(k) exp(2πikx) dk. Every pair in the
// table is even and real, so the inverse is the forward transform with the
// roles of the variables exchanged.
func InverseFourier(F symbolic.Expr, k, x string) (symbolic.Expr, error) {
	f, err := Fourier(F, k, x)
	if err != nil {
		return nil, fmt.Errorf("inverse %w", err)
	}
	return f, nil
}

func fourierTerm(term symbolic.Expr, x, k string) (symbolic.Expr, error) {
	var coef []symbolic.Expr
	var core symbolic.Expr
	for _, f := range factors(term) {
		if !symbolic.Has(f, x) {
			coef = append(coef, f)
			continue
		}
		if core != nil {
			return nil, noClosedForm("fourier", term)
		}
		core = f
	}
	if core == nil {
		return nil, fmt.Errorf("fourier transform of %s: constant terms transform to a delta: %w", term, symbolic.ErrNoClosedForm)
	}

	K := symbolic.Symbol(k)
	var pair symbolic.Expr
	switch v := core.(type) {
	case *symbolic.Func:
		if v.Name() != "exp" {
			return nil, noClosedForm("fourier", term)
		}
		var extra symbolic.Expr
		pair, extra = fourierExp(v.Arg(), x, K)
		if pair == nil {
			return nil, noClosedForm("fourier", term)
		}
		coef = append(coef, symbolic.FuncOf("exp", extra))
	case *symbolic.Pow:
		pair = fourierLorentzian(v, x, K)
		if pair == nil {
			return nil, noClosedForm("fourier", term)
		}
	default:
		return nil, noClosedForm("fourier", term)
	}
	return symbolic.MulOf(append(coef, pair)...), nil
}

// fourierExp transforms exp(u) for u = -a*x**2 + c or u = -a*|x| + c. It
// returns the pair without the constant factor exp(c), and c.
func fourierExp(u symbolic.Expr, x string, K symbolic.Expr) (pair, c symbolic.Expr) {
	var varying, constant []symbolic.Expr
	for _, t := range terms(u) {
		if symbolic.Has(t, x) {
			varying = append(varying, t)
		} else {
			constant = append(constant, t)
		}
	}
	c = symbolic.AddOf(constant...)
	v := symbolic.AddOf(varying...)
	pi2 := symbolic.PowOf(symbolic.Pi, symbolic.Int(2))
	k2 := symbolic.PowOf(K, symbolic.Int(2))

	if cs, ok := symbolic.PolyCoeffs(v, x); ok && len(cs) == 3 && isZero(cs[1]) {
		a := symbolic.Neg(cs[2])
		if !positive(a) {
			return nil, nil
		}
		return symbolic.MulOf(
			positiveSqrt(symbolic.Div(symbolic.Pi, a)),
			symbolic.FuncOf("exp", symbolic.Neg(symbolic.Div(symbolic.MulOf(pi2, k2), a))),
		), c
	}

	a := symbolic.Neg(symbolic.Div(v, symbolic.FuncOf("abs", symbolic.Symbol(x))))
	if symbolic.Has(a, x) || !positive(a) {
		return nil, nil
	}
	return symbolic.Div(
		symbolic.MulOf(symbolic.Int(2), a),
		symbolic.AddOf(symbolic.PowOf(a, symbolic.Int(2)), symbolic.MulOf(symbolic.Int(4), pi2, k2)),
	), c
}

// fourierLorentzian transforms 1/(p + q*x**2).
func fourierLorentzian(v *symbolic.Pow, x string, K symbolic.Expr) symbolic.Expr {
	if n, ok := v.Exponent().(*symbolic.Num); !ok || n.String() != "-1" {
		return nil
	}
	cs, ok := symbolic.PolyCoeffs(v.Base(), x)
	if !ok || len(cs) != 3 || !isZero(cs[1]) || !positive(cs[0]) || !positive(cs[2]) {
		return nil
	}
	p, q := cs[0], cs[2]
	width := positiveSqrt(symbolic.Div(p, q))
	return symbolic.MulOf(
		symbolic.Pi,
		symbolic.PowOf(positiveSqrt(symbolic.MulOf(p, q)), symbolic.Int(-1)),
		symbolic.FuncOf("exp", symbolic.MulOf(symbolic.Int(-2), symbolic.Pi, width, symbolic.FuncOf("abs", K))),
	)
}

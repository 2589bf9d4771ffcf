package transform

import (
	"fmt"
	"math"
	"math/big"

	"github.com/GriffinCanCode/latexbot/internal/symbolic"
)

// Laplace returns the one-sided Laplace transform of f with respect to t,
// as an expression in s.
//
// Supported terms are constant multiples of t**n * exp(a*t) * g(b*t) with g
// one of 1, sin, cos, sinh or cosh. n may be any rational above -1 when g is
// 1 and must be a non-negative integer otherwise. Squares and products of
// trigonometric factors are reduced to sums first.
func Laplace(f symbolic.Expr, t, s string) (symbolic.Expr, error) {
	if symbolic.Has(f, s) {
		return nil, fmt.Errorf("laplace transform of %s: %s is already in use", f, s)
	}
	out, err := laplaceSum(symbolic.Expand(reduceTrig(f, t)), t, s)
	if err != nil {
		return nil, err
	}
	return symbolic.Simplify(out), nil
}

func laplaceSum(e symbolic.Expr, t, s string) (symbolic.Expr, error) {
	ts := terms(e)
	out := make([]symbolic.Expr, 0, len(ts))
	for _, term := range ts {
		r, err := laplaceTerm(term, t, s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return symbolic.AddOf(out...), nil
}

func laplaceTerm(term symbolic.Expr, t, s string) (symbolic.Expr, error) {
	var (
		coef   []symbolic.Expr
		power  symbolic.Expr = symbolic.Int(0)
		shift  symbolic.Expr = symbolic.Int(0)
		kernel *symbolic.Func
		rate   symbolic.Expr
	)
	for _, f := range factors(term) {
		if !symbolic.Has(f, t) {
			coef = append(coef, f)
			continue
		}
		switch v := f.(type) {
		case *symbolic.Sym:
			power = symbolic.AddOf(power, symbolic.Int(1))
		case *symbolic.Pow:
			base, ok := v.Base().(*symbolic.Sym)
			exp, isNum := v.Exponent().(*symbolic.Num)
			if !ok || base.Name() != t || !isNum {
				return nil, noClosedForm("laplace", term)
			}
			power = symbolic.AddOf(power, exp)
		case *symbolic.Func:
			a, b, ok := linear(v.Arg(), t)
			if !ok {
				return nil, noClosedForm("laplace", term)
			}
			switch v.Name() {
			case "exp":
				shift = symbolic.AddOf(shift, a)
				coef = append(coef, symbolic.FuncOf("exp", b))
			case "sin", "cos", "sinh", "cosh":
				if kernel != nil {
					sum, ok := productToSum(kernel, v)
					if !ok {
						return nil, noClosedForm("laplace", term)
					}
					rest := symbolic.Div(term, symbolic.MulOf(kernel, v))
					return laplaceSum(symbolic.Expand(symbolic.MulOf(rest, sum)), t, s)
				}
				if !isZero(b) {
					return nil, noClosedForm("laplace", term)
				}
				kernel, rate = v, a
			default:
				return nil, noClosedForm("laplace", term)
			}
		default:
			return nil, noClosedForm("laplace", term)
		}
	}

	n, ok := power.(*symbolic.Num)
	if !ok {
		return nil, noClosedForm("laplace", term)
	}
	S := symbolic.Symbol(s)

	if kernel == nil {
		nu := symbolic.AddOf(n, symbolic.Int(1)).(*symbolic.Num)
		if nu.Sign() <= 0 {
			return nil, fmt.Errorf("laplace transform of %s: integral diverges at 0: %w", term, symbolic.ErrNoClosedForm)
		}
		g := symbolic.MulOf(gamma(nu), symbolic.PowOf(symbolic.Sub(S, shift), symbolic.Neg(nu)))
		return symbolic.MulOf(append(coef, g)...), nil
	}

	k, ok := n.Int64()
	if !ok || k < 0 {
		return nil, noClosedForm("laplace", term)
	}
	s2, b2 := symbolic.PowOf(S, symbolic.Int(2)), symbolic.PowOf(rate, symbolic.Int(2))
	var g symbolic.Expr
	switch kernel.Name() {
	case "sin":
		g = symbolic.Div(rate, symbolic.AddOf(s2, b2))
	case "cos":
		g = symbolic.Div(S, symbolic.AddOf(s2, b2))
	case "sinh":
		g = symbolic.Div(rate, symbolic.Sub(s2, b2))
	case "cosh":
		g = symbolic.Div(S, symbolic.Sub(s2, b2))
	}
	// multiplication by t is -d/ds
	for i := int64(0); i < k; i++ {
		g = symbolic.Neg(g.Diff(s))
	}
	g = g.Subs(s, symbolic.Sub(S, shift))
	return symbolic.MulOf(append(coef, g)...), nil
}

// gamma evaluates Γ(x) exactly for positive integers and half-integers.
func gamma(x *symbolic.Num) symbolic.Expr {
	r := x.Rat()
	if r.IsInt() {
		return symbolic.NewNum(new(big.Rat).SetInt(factorial(int(r.Num().Int64()) - 1)))
	}
	half := new(big.Rat).Sub(r, big.NewRat(1, 2))
	if half.IsInt() && half.Sign() >= 0 {
		// Γ(m + 1/2) = (2m)! / (4**m m!) * sqrt(pi)
		m := int(half.Num().Int64())
		den := new(big.Int).Lsh(factorial(m), uint(2*m))
		c := new(big.Rat).SetFrac(factorial(2*m), den)
		return symbolic.MulOf(symbolic.NewNum(c), symbolic.Sqrt(symbolic.Pi))
	}
	return symbolic.NewFloat(math.Gamma(x.Float64()))
}

// reduceTrig rewrites squares of sin, cos, sinh and cosh in t as double
// angles, then splits arguments a*t + b with the addition formulas.
func reduceTrig(f symbolic.Expr, t string) symbolic.Expr {
	half := symbolic.Rat(1, 2)
	one := symbolic.Int(1)
	f = symbolic.Replace(f, func(e symbolic.Expr) (symbolic.Expr, bool) {
		p, ok := e.(*symbolic.Pow)
		if !ok {
			return nil, false
		}
		fn, ok := p.Base().(*symbolic.Func)
		if !ok || !symbolic.Has(fn, t) {
			return nil, false
		}
		if n, ok := p.Exponent().(*symbolic.Num); !ok || n.String() != "2" {
			return nil, false
		}
		u2 := symbolic.MulOf(symbolic.Int(2), fn.Arg())
		switch fn.Name() {
		case "sin":
			return symbolic.MulOf(half, symbolic.Sub(one, symbolic.FuncOf("cos", u2))), true
		case "cos":
			return symbolic.MulOf(half, symbolic.AddOf(one, symbolic.FuncOf("cos", u2))), true
		case "sinh":
			return symbolic.MulOf(half, symbolic.Sub(symbolic.FuncOf("cosh", u2), one)), true
		case "cosh":
			return symbolic.MulOf(half, symbolic.AddOf(symbolic.FuncOf("cosh", u2), one)), true
		}
		return nil, false
	})

	return symbolic.Replace(f, func(e symbolic.Expr) (symbolic.Expr, bool) {
		fn, ok := e.(*symbolic.Func)
		if !ok {
			return nil, false
		}
		a, b, ok := linear(fn.Arg(), t)
		if !ok || isZero(a) || isZero(b) {
			return nil, false
		}
		at := symbolic.MulOf(a, symbolic.Symbol(t))
		call := symbolic.FuncOf
		switch fn.Name() {
		case "sin":
			return symbolic.AddOf(
				symbolic.MulOf(call("sin", at), call("cos", b)),
				symbolic.MulOf(call("cos", at), call("sin", b))), true
		case "cos":
			return symbolic.Sub(
				symbolic.MulOf(call("cos", at), call("cos", b)),
				symbolic.MulOf(call("sin", at), call("sin", b))), true
		case "sinh":
			return symbolic.AddOf(
				symbolic.MulOf(call("sinh", at), call("cosh", b)),
				symbolic.MulOf(call("cosh", at), call("sinh", b))), true
		case "cosh":
			return symbolic.AddOf(
				symbolic.MulOf(call("cosh", at), call("cosh", b)),
				symbolic.MulOf(call("sinh", at), call("sinh", b))), true
		}
		return nil, false
	})
}

// productToSum rewrites f*g for two circular or two hyperbolic functions as
// a sum of single functions.
func productToSum(f, g *symbolic.Func) (symbolic.Expr, bool) {
	sum := symbolic.AddOf(f.Arg(), g.Arg())
	diff := symbolic.Sub(f.Arg(), g.Arg())
	half := symbolic.Rat(1, 2)
	call := symbolic.FuncOf

	var out symbolic.Expr
	switch f.Name() + "*" + g.Name() {
	case "sin*sin":
		out = symbolic.Sub(call("cos", diff), call("cos", sum))
	case "cos*cos":
		out = symbolic.AddOf(call("cos", diff), call("cos", sum))
	case "sin*cos":
		out = symbolic.AddOf(call("sin", sum), call("sin", diff))
	case "cos*sin":
		out = symbolic.Sub(call("sin", sum), call("sin", diff))
	case "sinh*sinh":
		out = symbolic.Sub(call("cosh", sum), call("cosh", diff))
	case "cosh*cosh":
		out = symbolic.AddOf(call("cosh", sum), call("cosh", diff))
	case "sinh*cosh":
		out = symbolic.AddOf(call("sinh", sum), call("sinh", diff))
	case "cosh*sinh":
		out = symbolic.Sub(call("sinh", sum), call("sinh", diff))
	default:
		return nil, false
	}
	return symbolic.MulOf(half, out), true
}

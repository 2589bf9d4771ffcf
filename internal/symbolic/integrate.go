package symbolic

import "fmt"

// by-parts recursion stops at this power of x
const maxPartsDegree = 12

// Integrate returns an antiderivative of e with respect to x, without the
// integration constant. It applies linearity, a table of elementary
// integrals of linear arguments, a few quadratic forms and integration by
// parts for x**n times exp, sin or cos.
func Integrate(e Expr, x string) (Expr, error) {
	if !Has(e, x) {
		return MulOf(e, Symbol(x)), nil
	}
	if sum, ok := e.(*Add); ok {
		out := make([]Expr, len(sum.terms))
		for i, t := range sum.terms {
			r, err := Integrate(t, x)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return AddOf(out...), nil
	}

	constant, rest := splitConstant(e, x)
	if !isOne(constant) {
		r, err := Integrate(rest, x)
		if err != nil {
			return nil, err
		}
		return MulOf(constant, r), nil
	}

	if r, ok := integrateTable(e, x); ok {
		return r, nil
	}
	if r, ok := integrateByParts(e, x); ok {
		return r, nil
	}
	if expanded := Expand(e); !Equal(expanded, e) {
		return Integrate(expanded, x)
	}
	return nil, fmt.Errorf("%w: integral of %s", ErrNoClosedForm, e)
}

func integrateTable(e Expr, x string) (Expr, bool) {
	switch v := e.(type) {
	case *Sym:
		return Div(PowOf(v, Int(2)), Int(2)), true
	case *Func:
		a, _, ok := linearCoeffs(v.arg, x)
		if !ok {
			return nil, false
		}
		u := v.arg
		var anti Expr
		switch v.name {
		case "sin":
			anti = Neg(FuncOf("cos", u))
		case "cos":
			anti = FuncOf("sin", u)
		case "exp":
			anti = v
		case "tan":
			anti = Neg(FuncOf("log", FuncOf("cos", u)))
		case "sinh":
			anti = FuncOf("cosh", u)
		case "cosh":
			anti = FuncOf("sinh", u)
		case "tanh":
			anti = FuncOf("log", FuncOf("cosh", u))
		case "log":
			anti = Sub(MulOf(u, FuncOf("log", u)), u)
		case "atan":
			anti = Sub(MulOf(u, FuncOf("atan", u)), Div(FuncOf("log", AddOf(PowOf(u, Int(2)), Int(1))), Int(2)))
		default:
			return nil, false
		}
		return Div(anti, a), true
	case *Pow:
		return integratePower(v, x)
	}
	return nil, false
}

func integratePower(p *Pow, x string) (Expr, bool) {
	// c**(a*x + b)
	if !Has(p.base, x) {
		a, _, ok := linearCoeffs(p.exp, x)
		if !ok {
			return nil, false
		}
		return Div(p, MulOf(a, FuncOf("log", p.base))), true
	}
	if Has(p.exp, x) {
		return nil, false
	}

	if a, _, ok := linearCoeffs(p.base, x); ok {
		if isMinusOne(p.exp) {
			return Div(FuncOf("log", p.base), a), true
		}
		n1 := AddOf(p.exp, Int(1))
		return Div(PowOf(p.base, n1), MulOf(a, n1)), true
	}

	if f, ok := p.base.(*Func); ok && isInteger(p.exp) {
		k, _ := p.exp.(*Num).Int64()
		a, _, ok := linearCoeffs(f.arg, x)
		if !ok || k != 2 {
			return nil, false
		}
		xs := Symbol(x)
		twice := FuncOf("sin", MulOf(Int(2), f.arg))
		switch f.name {
		case "sin":
			return Sub(Div(xs, Int(2)), Div(twice, MulOf(Int(4), a))), true
		case "cos":
			return AddOf(Div(xs, Int(2)), Div(twice, MulOf(Int(4), a))), true
		case "tan":
			return Sub(Div(FuncOf("tan", f.arg), a), xs), true
		}
		return nil, false
	}

	// (p*x**2 + k)**(-1) and (p*x**2 + k)**(-1/2)
	qa, qb, qc, ok := quadraticCoeffs(p.base, x)
	if !ok || !isZero(qb) || !isNumber(qa) || !isNumber(qc) || isZero(qc) {
		return nil, false
	}
	xs := Symbol(x)
	switch {
	case isMinusOne(p.exp) && numberSign(qa) == numberSign(qc):
		// 1/(p x^2 + k) = atan(x sqrt(p/k)) / sqrt(p k)
		ratio := Sqrt(Div(qa, qc))
		return Div(FuncOf("atan", MulOf(xs, ratio)), Sqrt(MulOf(qa, qc))), true
	case isMinusOne(p.exp):
		// 1/(p x^2 - m) via partial fractions: log|x - r| - log|x + r| over 2 p r
		r := Sqrt(Neg(Div(qc, qa)))
		scale := Div(Int(1), MulOf(Int(2), qa, r))
		return MulOf(scale, Sub(FuncOf("log", Sub(xs, r)), FuncOf("log", AddOf(xs, r)))), true
	case isHalfNeg(p.exp) && numberSign(qa) < 0 && numberSign(qc) > 0:
		// 1/sqrt(k - m x^2) = asin(x sqrt(m/k)) / sqrt(m)
		m := Neg(qa)
		return Div(FuncOf("asin", MulOf(xs, Sqrt(Div(m, qc)))), Sqrt(m)), true
	}
	return nil, false
}

func isHalfNeg(e Expr) bool {
	n, ok := e.(*Num)
	return ok && Equal(n, Rat(-1, 2))
}

// integrateByParts handles x**n * g(a*x + b) for g in exp, sin, cos, sinh,
// cosh by reducing the power of x one step at a time.
func integrateByParts(e Expr, x string) (Expr, bool) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) != 2 {
		return nil, false
	}
	var power, g Expr
	for _, f := range m.factors {
		if fn, ok := f.(*Func); ok {
			g = fn
			continue
		}
		power = f
	}
	if power == nil || g == nil {
		return nil, false
	}
	n, _, ok := monomial(power, x)
	if !ok || n < 1 || n > maxPartsDegree {
		return nil, false
	}
	fn := g.(*Func)
	switch fn.name {
	case "exp", "sin", "cos", "sinh", "cosh":
	default:
		return nil, false
	}
	if _, _, ok := linearCoeffs(fn.arg, x); !ok {
		return nil, false
	}

	// x**n G - n ∫ x**(n-1) G
	outer, ok := integrateTable(g, x)
	if !ok {
		return nil, false
	}
	inner, err := Integrate(MulOf(PowOf(Symbol(x), Int(int64(n-1))), outer), x)
	if err != nil {
		return nil, false
	}
	return Expand(Sub(MulOf(power, outer), MulOf(Int(int64(n)), inner))), true
}

package symbolic

// Simplify returns the shortest of several equivalent rewritings of e:
// the expanded form, the form with sin**2 + cos**2 collapsed, the reduced
// rational function and the factored form.
func Simplify(e Expr) Expr {
	e = Replace(e, func(n Expr) (Expr, bool) {
		if f, ok := n.(*Func); ok {
			return FuncOf(f.name, Simplify(f.arg)), true
		}
		return nil, false
	})
	expanded := Expand(e)
	candidates := []Expr{
		e,
		expanded,
		pythagorean(expanded),
		cancel(e),
		Factor(e),
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c != nil && complexity(c) < complexity(best) {
			best = c
		}
	}
	return best
}

func complexity(e Expr) int {
	n := 1
	for _, a := range e.args() {
		n += complexity(a)
	}
	return n*8 + len(e.String())
}

// cancel reduces a univariate rational function to lowest terms.
func cancel(e Expr) Expr {
	free := FreeSymbols(e)
	if len(free) != 1 {
		return nil
	}
	num, den, ok := AsRational(e, free[0])
	if !ok {
		return nil
	}
	if den.Degree() == 0 {
		return num.Scale(den.Coef(0)).Expr(free[0])
	}
	return Div(num.Expr(free[0]), den.Expr(free[0]))
}

// pythagorean replaces every pair c*R*sin(u)**2 + c*R*cos(u)**2 of a sum by
// c*R, and c*R*cosh(u)**2 - c*R*sinh(u)**2 by c*R.
func pythagorean(e Expr) Expr {
	terms := append([]Expr(nil), termsOf(e)...)
	if len(terms) < 2 {
		return e
	}
	used := make([]bool, len(terms))
	var out []Expr
	for i, t := range terms {
		if used[i] {
			continue
		}
		for _, pair := range [][2]string{{"sin", "cos"}, {"cosh", "sinh"}} {
			rest, arg, ok := extractSquare(t, pair[0])
			if !ok {
				continue
			}
			partner := MulOf(rest, PowOf(FuncOf(pair[1], arg), Int(2)))
			if pair[0] == "cosh" {
				partner = Neg(partner)
			}
			for j := range terms {
				if j != i && !used[j] && Equal(terms[j], partner) {
					used[i], used[j] = true, true
					out = append(out, rest)
					break
				}
			}
			if used[i] {
				break
			}
		}
	}
	for i, t := range terms {
		if !used[i] {
			out = append(out, t)
		}
	}
	return AddOf(out...)
}

// extractSquare finds a factor name(u)**2 in t and returns the remaining
// factors and u.
func extractSquare(t Expr, name string) (Expr, Expr, bool) {
	factors := factorsOf(t)
	for i, f := range factors {
		p, ok := f.(*Pow)
		if !ok {
			continue
		}
		fn, ok := p.base.(*Func)
		if !ok || fn.name != name {
			continue
		}
		n, ok := p.exp.(*Num)
		if !ok {
			continue
		}
		k, ok := n.Int64()
		if !ok || k < 2 {
			continue
		}
		rest := make([]Expr, 0, len(factors))
		rest = append(rest, factors[:i]...)
		rest = append(rest, factors[i+1:]...)
		if k > 2 {
			rest = append(rest, PowOf(fn, Int(k-2)))
		}
		return MulOf(rest...), fn.arg, true
	}
	return nil, nil, false
}

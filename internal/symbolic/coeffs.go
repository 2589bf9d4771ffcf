package symbolic

const maxPolyDegree = 64

// PolyCoeffs expands e and returns its coefficients as a polynomial in x,
// lowest degree first. The coefficients may contain other symbols. ok is
// false when e is not a polynomial in x.
func PolyCoeffs(e Expr, x string) ([]Expr, bool) {
	byDegree := make(map[int][]Expr)
	top := 0
	for _, t := range termsOf(Expand(e)) {
		d, c, ok := monomial(t, x)
		if !ok {
			return nil, false
		}
		byDegree[d] = append(byDegree[d], c)
		if d > top {
			top = d
		}
	}
	out := make([]Expr, top+1)
	for i := range out {
		out[i] = AddOf(byDegree[i]...)
	}
	return out, true
}

// monomial splits a term into its degree in x and the x-free cofactor.
func monomial(t Expr, x string) (int, Expr, bool) {
	if !Has(t, x) {
		return 0, t, true
	}
	deg := 0
	var rest []Expr
	for _, f := range factorsOf(t) {
		if !Has(f, x) {
			rest = append(rest, f)
			continue
		}
		base, exp := asPow(f)
		s, ok := base.(*Sym)
		if !ok || s.name != x {
			return 0, nil, false
		}
		n, ok := exp.(*Num)
		if !ok {
			return 0, nil, false
		}
		k, ok := n.Int64()
		if !ok || k < 0 || k > maxPolyDegree {
			return 0, nil, false
		}
		deg += int(k)
	}
	return deg, MulOf(rest...), true
}

// linearCoeffs writes u = a*x + b with a non-zero and free of x.
func linearCoeffs(u Expr, x string) (a, b Expr, ok bool) {
	c, ok := PolyCoeffs(u, x)
	if !ok || len(c) != 2 || isZero(c[1]) {
		return nil, nil, false
	}
	return c[1], c[0], true
}

// quadraticCoeffs writes u = a*x**2 + b*x + c with a non-zero.
func quadraticCoeffs(u Expr, x string) (a, b, c Expr, ok bool) {
	cs, ok := PolyCoeffs(u, x)
	if !ok || len(cs) != 3 || isZero(cs[2]) {
		return nil, nil, nil, false
	}
	return cs[2], cs[1], cs[0], true
}

// splitConstant separates the factors of e that do not depend on x.
func splitConstant(e Expr, x string) (constant, rest Expr) {
	var cs, rs []Expr
	for _, f := range factorsOf(e) {
		if Has(f, x) {
			rs = append(rs, f)
		} else {
			cs = append(cs, f)
		}
	}
	return MulOf(cs...), MulOf(rs...)
}

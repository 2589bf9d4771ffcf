package symbolic

import (
	"sort"
	"strings"
)

// Mul is a product of at least two factors. A numeric coefficient, when
// present, is always the first factor.
type Mul struct{ factors []Expr }

// Factors returns the factors of the product.
func (m *Mul) Factors() []Expr { return m.factors }

func (m *Mul) args() []Expr { return m.factors }
func (m *Mul) rank() int    { return rankMul }

type powGroup struct {
	base Expr
	exps []Expr
}

// MulOf returns the canonical product of factors. Powers of a common base are
// merged, exponentials are combined and a numeric coefficient multiplying a
// single sum is distributed over it.
func MulOf(factors ...Expr) Expr {
	acc := newProductAccumulator()
	groups := make(map[string]*powGroup)
	var order []string
	var expArgs []Expr

	var visit func(Expr)
	visit = func(f Expr) {
		switch v := f.(type) {
		case *Mul:
			for _, inner := range v.factors {
				visit(inner)
			}
		case *Num, *Float:
			acc.mul(v)
		case *Func:
			if v.name == "exp" {
				expArgs = append(expArgs, v.arg)
				return
			}
			addPowGroup(groups, &order, f, Int(1))
		default:
			base, exp := asPow(f)
			addPowGroup(groups, &order, base, exp)
		}
	}
	for _, f := range factors {
		visit(f)
	}

	var out []Expr
	appendFactor := func(p Expr) {
		switch v := p.(type) {
		case *Num, *Float:
			acc.mul(v)
		case *Mul:
			for _, inner := range v.factors {
				if isNumber(inner) {
					acc.mul(inner)
				} else {
					out = append(out, inner)
				}
			}
		default:
			out = append(out, p)
		}
	}
	for _, key := range order {
		g := groups[key]
		appendFactor(PowOf(g.base, AddOf(g.exps...)))
	}
	if len(expArgs) > 0 {
		appendFactor(FuncOf("exp", AddOf(expArgs...)))
	}

	coef := acc.product()
	if isZero(coef) {
		return coef
	}
	if len(out) == 0 {
		return coef
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].rank(), out[j].rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].String() < out[j].String()
	})
	if len(out) == 1 {
		if isOne(coef) {
			return out[0]
		}
		if sum, ok := out[0].(*Add); ok {
			scaled := make([]Expr, len(sum.terms))
			for i, t := range sum.terms {
				scaled[i] = MulOf(coef, t)
			}
			return AddOf(scaled...)
		}
	}
	if isOne(coef) {
		return &Mul{factors: out}
	}
	return &Mul{factors: append([]Expr{coef}, out...)}
}

func addPowGroup(groups map[string]*powGroup, order *[]string, base, exp Expr) {
	key := base.String()
	g, ok := groups[key]
	if !ok {
		g = &powGroup{base: base}
		groups[key] = g
		*order = append(*order, key)
	}
	g.exps = append(g.exps, exp)
}

func asPow(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, Int(1)
}

// rawMul builds a product without canonicalisation, keeping the factor order
// given. It is used for presentation forms such as factored polynomials.
func rawMul(factors ...Expr) Expr {
	var kept []Expr
	for _, f := range factors {
		if isOne(f) {
			continue
		}
		kept = append(kept, f)
	}
	switch len(kept) {
	case 0:
		return Int(1)
	case 1:
		return kept[0]
	}
	return &Mul{factors: kept}
}

func negativePower(e Expr) (Expr, bool) {
	p, ok := e.(*Pow)
	if !ok || !isNumber(p.exp) || numberSign(p.exp) >= 0 {
		return nil, false
	}
	return PowOf(p.base, Neg(p.exp)), true
}

func (m *Mul) format(latex bool) string {
	factors := m.factors
	var numer, denom []string
	sign := ""

	render := func(e Expr) string {
		if latex {
			if _, ok := e.(*Add); ok {
				return "(" + e.LaTeX() + ")"
			}
			return e.LaTeX()
		}
		switch e.(type) {
		case *Add, *Mul:
			return "(" + e.String() + ")"
		}
		return e.String()
	}

	if isNumber(factors[0]) {
		coef := factors[0]
		factors = factors[1:]
		if numberSign(coef) < 0 {
			sign = "-"
			coef = mulNumbers(coef, Int(-1))
		}
		if n, ok := coef.(*Num); ok && !n.IsInt() {
			if p := n.r.Num(); !(p.IsInt64() && p.Int64() == 1) {
				numer = append(numer, p.String())
			}
			denom = append(denom, n.r.Denom().String())
		} else if !isOne(coef) {
			numer = append(numer, coef.String())
		}
	}
	for _, f := range factors {
		if inv, ok := negativePower(f); ok {
			denom = append(denom, render(inv))
			continue
		}
		numer = append(numer, render(f))
	}

	if latex {
		num := joinLaTeX(numer)
		if num == "" {
			num = "1"
		}
		if len(denom) == 0 {
			return sign + num
		}
		return sign + `\frac{` + num + `}{` + joinLaTeX(denom) + `}`
	}

	num := strings.Join(numer, "*")
	if num == "" {
		num = "1"
	}
	if len(denom) == 0 {
		return sign + num
	}
	den := strings.Join(denom, "*")
	if len(denom) > 1 {
		den = "(" + den + ")"
	}
	return sign + num + "/" + den
}

func joinLaTeX(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			if p != "" && p[0] >= '0' && p[0] <= '9' {
				b.WriteString(` \cdot `)
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString(p)
	}
	return b.String()
}

func (m *Mul) String() string { return m.format(false) }
func (m *Mul) LaTeX() string  { return m.format(true) }

func (m *Mul) Subs(name string, value Expr) Expr {
	return MulOf(subsAll(m.factors, name, value)...)
}

func (m *Mul) Diff(name string) Expr {
	terms := make([]Expr, 0, len(m.factors))
	for i, f := range m.factors {
		d := f.Diff(name)
		if isZero(d) {
			continue
		}
		rest := make([]Expr, 0, len(m.factors))
		rest = append(rest, d)
		for j, g := range m.factors {
			if j != i {
				rest = append(rest, g)
			}
		}
		terms = append(terms, MulOf(rest...))
	}
	return AddOf(terms...)
}

func (m *Mul) Eval(env Env) (float64, error) {
	prod := 1.0
	for _, f := range m.factors {
		v, err := f.Eval(env)
		if err != nil {
			return 0, err
		}
		prod *= v
	}
	return prod, nil
}

package symbolic

import (
	"sort"
	"strings"
)

// Add is a sum of at least two terms.
type Add struct{ terms []Expr }

// Terms returns the summands.
func (a *Add) Terms() []Expr { return a.terms }

func (a *Add) args() []Expr { return a.terms }
func (a *Add) rank() int    { return rankAdd }

type termGroup struct {
	rest Expr
	coef Expr
}

// AddOf returns the canonical sum of terms: nested sums are flattened,
// numbers folded and like terms collected.
func AddOf(terms ...Expr) Expr {
	acc := newAccumulator()
	groups := make(map[string]*termGroup)
	var order []string

	var visit func(Expr)
	visit = func(t Expr) {
		switch v := t.(type) {
		case *Add:
			for _, inner := range v.terms {
				visit(inner)
			}
		case *Num, *Float:
			acc.add(v)
		default:
			coef, rest := coeffAndRest(t)
			key := rest.String()
			g, ok := groups[key]
			if !ok {
				g = &termGroup{rest: rest, coef: Int(0)}
				groups[key] = g
				order = append(order, key)
			}
			g.coef = addNumbers(g.coef, coef)
		}
	}
	for _, t := range terms {
		visit(t)
	}

	out := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		if isZero(g.coef) {
			continue
		}
		out = append(out, scaleTerm(g.coef, g.rest))
	}
	sort.SliceStable(out, func(i, j int) bool { return termLess(out[i], out[j]) })

	constant := acc.sum()
	if len(out) == 0 {
		return constant
	}
	if !isZero(constant) {
		out = append(out, constant)
	}
	if len(out) == 1 {
		return out[0]
	}
	return &Add{terms: out}
}

// coeffAndRest splits a term into its numeric coefficient and the rest.
func coeffAndRest(e Expr) (Expr, Expr) {
	switch v := e.(type) {
	case *Num, *Float:
		return e, Int(1)
	case *Mul:
		if isNumber(v.factors[0]) {
			rest := v.factors[1:]
			if len(rest) == 1 {
				return v.factors[0], rest[0]
			}
			return v.factors[0], &Mul{factors: rest}
		}
	}
	return Int(1), e
}

func scaleTerm(coef, rest Expr) Expr {
	if isOne(coef) {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		factors := make([]Expr, 0, len(m.factors)+1)
		factors = append(factors, coef)
		factors = append(factors, m.factors...)
		return &Mul{factors: factors}
	}
	return &Mul{factors: []Expr{coef, rest}}
}

// degree is the total polynomial degree of a term, used for ordering only.
func degree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if isNumber(v.exp) {
			return degree(v.base) * numberFloat(v.exp)
		}
		return degree(v.base)
	case *Mul:
		d := 0.0
		for _, f := range v.factors {
			d += degree(f)
		}
		return d
	}
	return 0
}

func termLess(a, b Expr) bool {
	_, ra := coeffAndRest(a)
	_, rb := coeffAndRest(b)
	da, db := degree(ra), degree(rb)
	if da != db {
		return da > db
	}
	return ra.String() < rb.String()
}

func isNegativeTerm(e Expr) bool {
	coef, _ := coeffAndRest(e)
	return numberSign(coef) < 0
}

func (a *Add) format(latex bool) string {
	var b strings.Builder
	for i, t := range a.terms {
		neg := isNegativeTerm(t)
		if neg {
			t = Neg(t)
		}
		switch {
		case i == 0 && neg:
			b.WriteString("-")
		case i > 0 && neg:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		if latex {
			b.WriteString(t.LaTeX())
		} else {
			b.WriteString(t.String())
		}
	}
	return b.String()
}

func (a *Add) String() string { return a.format(false) }
func (a *Add) LaTeX() string  { return a.format(true) }

func (a *Add) Subs(name string, value Expr) Expr {
	return AddOf(subsAll(a.terms, name, value)...)
}

func (a *Add) Diff(name string) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Diff(name)
	}
	return AddOf(out...)
}

func (a *Add) Eval(env Env) (float64, error) {
	sum := 0.0
	for _, t := range a.terms {
		v, err := t.Eval(env)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

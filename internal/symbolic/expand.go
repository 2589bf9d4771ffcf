package symbolic

import (
	"errors"
	"fmt"
)

const maxExpandPower = 32

// ErrExpandTooLarge is returned by ExpandStrict for a power of a sum whose
// exponent is beyond maxExpandPower.
var ErrExpandTooLarge = errors.New("exponent too large to expand")

// Expand multiplies out products of sums and integer powers of sums. Powers
// beyond maxExpandPower are left as they are.
func Expand(e Expr) Expr {
	var x expander
	return x.expand(e)
}

// ExpandStrict is Expand that fails instead of leaving a power unexpanded.
func ExpandStrict(e Expr) (Expr, error) {
	var x expander
	out := x.expand(e)
	if x.skipped != 0 {
		return nil, fmt.Errorf("%w: power %d, limit is %d", ErrExpandTooLarge, x.skipped, maxExpandPower)
	}
	return out, nil
}

type expander struct {
	skipped int64 // first exponent left unexpanded
}

func (x *expander) expand(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		out := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			out[i] = x.expand(t)
		}
		return AddOf(out...)
	case *Mul:
		terms := []Expr{Int(1)}
		for _, f := range v.factors {
			terms = distribute(terms, termsOf(x.expand(f)))
		}
		return AddOf(terms...)
	case *Pow:
		base := x.expand(v.base)
		exp := x.expand(v.exp)
		sum, isSum := base.(*Add)
		if n, ok := exp.(*Num); ok && isSum {
			if k, ok := n.Int64(); ok {
				switch {
				case k > maxExpandPower || k < -maxExpandPower:
					if x.skipped == 0 {
						x.skipped = k
					}
				case k > 1:
					terms := []Expr{Int(1)}
					for i := int64(0); i < k; i++ {
						terms = distribute(terms, sum.terms)
					}
					return AddOf(terms...)
				case k < -1:
					return PowOf(x.expand(PowOf(base, Int(-k))), Int(-1))
				}
			}
		}
		return PowOf(base, exp)
	case *Func:
		return FuncOf(v.name, x.expand(v.arg))
	}
	return e
}

// distribute multiplies two sums term by term and collects like terms, so
// repeated products grow with the number of distinct monomials.
func distribute(left, right []Expr) []Expr {
	out := make([]Expr, 0, len(left)*len(right))
	for _, a := range left {
		for _, b := range right {
			out = append(out, MulOf(a, b))
		}
	}
	return termsOf(AddOf(out...))
}

// termsOf returns the summands of e, or e itself when it is not a sum.
func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// factorsOf returns the factors of e, or e itself when it is not a product.
func factorsOf(e Expr) []Expr {
	if m, ok := e.(*Mul); ok {
		return m.factors
	}
	return []Expr{e}
}

// Replace rebuilds e bottom-up through the canonical constructors, replacing
// every node for which fn reports true.
func Replace(e Expr, fn func(Expr) (Expr, bool)) Expr {
	if r, ok := fn(e); ok {
		return r
	}
	switch v := e.(type) {
	case *Add:
		out := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			out[i] = Replace(t, fn)
		}
		return AddOf(out...)
	case *Mul:
		out := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			out[i] = Replace(f, fn)
		}
		return MulOf(out...)
	case *Pow:
		return PowOf(Replace(v.base, fn), Replace(v.exp, fn))
	case *Func:
		return FuncOf(v.name, Replace(v.arg, fn))
	}
	return e
}

// Walk calls fn for e and every node below it until fn returns false.
func Walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	for _, a := range e.args() {
		Walk(a, fn)
	}
}

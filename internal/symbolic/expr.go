package symbolic

import (
	"errors"
	"sort"
)

var (
	ErrParse           = errors.New("parse error")
	ErrUnbound         = errors.New("unbound symbol")
	ErrNotReal         = errors.New("expression is not real")
	ErrNoClosedForm    = errors.New("no closed form known")
	ErrNoSolution      = errors.New("no solution found")
	ErrIdentity        = errors.New("equation holds for every value")
	ErrAmbiguousSymbol = errors.New("cannot choose a variable to solve for")
	ErrUnsupportedODE  = errors.New("unsupported differential equation")
)

// Expr is an immutable node of an expression tree. Values built through the
// package constructors (AddOf, MulOf, PowOf, FuncOf) are kept in canonical
// form, so two mathematically identical canonical expressions print the same.
type Expr interface {
	String() string
	LaTeX() string
	Subs(name string, value Expr) Expr
	Diff(name string) Expr
	Eval(env Env) (float64, error)
	args() []Expr
	rank() int
}

// Env binds symbol names to values for numeric evaluation.
type Env map[string]float64

// sort ranks for factors inside a product
const (
	rankNumber = iota
	rankConst
	rankSym
	rankPow
	rankAdd
	rankFunc
	rankApplied
	rankDerivative
	rankMul
)

// Equal reports whether two canonical expressions are identical.
func Equal(a, b Expr) bool {
	return a.String() == b.String()
}

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(Int(-1), e) }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// Div returns a / b.
func Div(a, b Expr) Expr { return MulOf(a, PowOf(b, Int(-1))) }

// Sqrt returns e^(1/2).
func Sqrt(e Expr) Expr { return PowOf(e, Rat(1, 2)) }

// FreeSymbols returns the sorted names of the symbols occurring in e.
func FreeSymbols(e Expr) []string {
	seen := make(map[string]struct{})
	collectSymbols(e, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, seen map[string]struct{}) {
	if s, ok := e.(*Sym); ok {
		seen[s.name] = struct{}{}
		return
	}
	for _, a := range e.args() {
		collectSymbols(a, seen)
	}
}

// Has reports whether symbol name occurs in e.
func Has(e Expr, name string) bool {
	if s, ok := e.(*Sym); ok {
		return s.name == name
	}
	for _, a := range e.args() {
		if Has(a, name) {
			return true
		}
	}
	return false
}

// Compile turns e into a float function of a single variable. Points where
// evaluation fails yield NaN.
func Compile(e Expr, name string) func(float64) float64 {
	return func(x float64) float64 {
		v, err := e.Eval(Env{name: x})
		if err != nil {
			return nan
		}
		return v
	}
}

func subsAll(list []Expr, name string, value Expr) []Expr {
	out := make([]Expr, len(list))
	for i, e := range list {
		out[i] = e.Subs(name, value)
	}
	return out
}

package symbolic

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"
)

// Solution is the list of values of Var satisfying an equation.
type Solution struct {
	Var    string
	Roots  []Expr
	Approx bool

	// RealOnly is set when the roots come from a scan of the real line,
	// so complex roots are not reported.
	RealOnly bool
}

func (s *Solution) String() string {
	parts := make([]string, len(s.Roots))
	for i, r := range s.Roots {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (s *Solution) LaTeX() string {
	parts := make([]string, len(s.Roots))
	for i, r := range s.Roots {
		parts[i] = r.LaTeX()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// numeric root search window and resolution
const (
	scanMin   = -100.0
	scanMax   = 100.0
	scanSteps = 20000
)

// Solve finds the values of variable satisfying eq. An empty variable picks
// x when present, otherwise the only free symbol.
func Solve(eq *Equation, variable string) (*Solution, error) {
	e := eq.Expr()
	x, err := chooseVariable(e, variable)
	if err != nil {
		return nil, err
	}
	sol := &Solution{Var: x}

	if num, den, ok := AsRational(e, x); ok {
		if num.IsZero() {
			return nil, ErrIdentity
		}
		for _, r := range Roots(num) {
			if r.Exact && r.IsReal() {
				if n, ok := r.Re.(*Num); ok && den.Eval(n.r).Sign() == 0 {
					continue
				}
			}
			if cmplx.Abs(den.EvalComplex(r.Value)) < 1e-12 {
				continue
			}
			sol.Roots = append(sol.Roots, r.Expr())
			sol.Approx = sol.Approx || !r.Exact
		}
		return sol, nil
	}

	if cs, ok := PolyCoeffs(e, x); ok && len(cs) <= 3 {
		roots, err := solveSymbolicPoly(cs)
		if err != nil {
			return nil, err
		}
		sol.Roots = roots
		return sol, nil
	}

	if roots, ok := invert(e, x); ok {
		sol.Roots = roots
		return sol, nil
	}

	if len(FreeSymbols(e)) != 1 {
		return nil, fmt.Errorf("%w for %s", ErrNoClosedForm, x)
	}
	roots := scanRoots(Compile(e, x))
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w in [%g, %g]", ErrNoSolution, scanMin, scanMax)
	}
	for _, r := range roots {
		sol.Roots = append(sol.Roots, NewFloat(roundSignificant(r)))
	}
	sol.Approx = true
	sol.RealOnly = true
	return sol, nil
}

func chooseVariable(e Expr, variable string) (string, error) {
	if variable != "" {
		return variable, nil
	}
	free := FreeSymbols(e)
	for _, name := range free {
		if name == "x" {
			return name, nil
		}
	}
	switch len(free) {
	case 0:
		if isZero(e) {
			return "", ErrIdentity
		}
		return "", ErrNoSolution
	case 1:
		return free[0], nil
	}
	return "", fmt.Errorf("%w among %s", ErrAmbiguousSymbol, strings.Join(free, ", "))
}

// solveSymbolicPoly solves c0 + c1*x (+ c2*x**2) = 0 with symbolic
// coefficients.
func solveSymbolicPoly(cs []Expr) ([]Expr, error) {
	switch len(cs) {
	case 1:
		if isZero(cs[0]) {
			return nil, ErrIdentity
		}
		return nil, nil
	case 2:
		return []Expr{Neg(Div(cs[0], cs[1]))}, nil
	}
	a, b, c := cs[2], cs[1], cs[0]
	disc := Expand(Sub(PowOf(b, Int(2)), MulOf(Int(4), a, c)))
	twoA := MulOf(Int(2), a)
	root := Sqrt(disc)
	return []Expr{
		Div(Sub(Neg(b), root), twoA),
		Div(AddOf(Neg(b), root), twoA),
	}, nil
}

// invert solves c*f(u) + d = 0 for a single invertible function f of an
// argument u linear in x.
func invert(e Expr, x string) ([]Expr, bool) {
	var inner Expr
	for _, t := range termsOf(Expand(e)) {
		if !Has(t, x) {
			continue
		}
		_, rest := splitConstant(t, x)
		if inner != nil && !Equal(inner, rest) {
			return nil, false
		}
		inner = rest
	}
	if inner == nil {
		return nil, false
	}
	tmp := Symbol("_u")
	replaced := Replace(e, func(n Expr) (Expr, bool) {
		if Equal(n, inner) {
			return tmp, true
		}
		return nil, false
	})
	if Has(replaced, x) {
		return nil, false
	}
	cs, ok := PolyCoeffs(replaced, tmp.name)
	if !ok || len(cs) != 2 {
		return nil, false
	}
	value := Neg(Div(cs[0], cs[1]))

	var args []Expr
	switch f := inner.(type) {
	case *Func:
		switch f.name {
		case "exp":
			args = []Expr{FuncOf("log", value)}
		case "log":
			args = []Expr{FuncOf("exp", value)}
		case "sin":
			a := FuncOf("asin", value)
			args = []Expr{a, Sub(Pi, a)}
		case "cos":
			a := FuncOf("acos", value)
			args = []Expr{a, Sub(MulOf(Int(2), Pi), a)}
		case "tan":
			args = []Expr{FuncOf("atan", value)}
		case "sinh":
			args = []Expr{Replace(MustParse("log(v + sqrt(v**2 + 1))"), bind("v", value))}
		default:
			return nil, false
		}
		inner = f.arg
	case *Pow:
		n, ok := f.exp.(*Num)
		if !ok || n.IsInt() {
			return nil, false
		}
		args = []Expr{PowOf(value, PowOf(n, Int(-1)))}
		inner = f.base
	default:
		return nil, false
	}

	a, b, ok := linearCoeffs(inner, x)
	if !ok {
		return nil, false
	}
	var out []Expr
	seen := make(map[string]bool)
	for _, v := range args {
		r := Div(Sub(v, b), a)
		if !seen[r.String()] {
			seen[r.String()] = true
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, ei := out[i].Eval(nil)
		vj, ej := out[j].Eval(nil)
		return ei == nil && ej == nil && vi < vj
	})
	return out, true
}

func bind(name string, value Expr) func(Expr) (Expr, bool) {
	return func(n Expr) (Expr, bool) {
		if s, ok := n.(*Sym); ok && s.name == name {
			return value, true
		}
		return nil, false
	}
}

// scanRoots brackets sign changes of f on the scan window and refines each
// by bisection. Poles are rejected by checking |f| at the refined point.
func scanRoots(f func(float64) float64) []float64 {
	var out []float64
	step := (scanMax - scanMin) / scanSteps
	prevX := scanMin
	prev := f(prevX)
	for i := 1; i <= scanSteps; i++ {
		x := scanMin + float64(i)*step
		y := f(x)
		switch {
		case finite(prev) && prev == 0:
			out = appendDistinct(out, prevX)
		case finite(prev) && finite(y) && (prev < 0) != (y < 0) && y != 0:
			if r, ok := bisect(f, prevX, x); ok {
				out = appendDistinct(out, r)
			}
		}
		prevX, prev = x, y
	}
	if finite(prev) && prev == 0 {
		out = appendDistinct(out, prevX)
	}
	return out
}

func bisect(f func(float64) float64, lo, hi float64) (float64, bool) {
	flo := f(lo)
	for i := 0; i < 200 && hi-lo > 1e-14*(1+math.Abs(lo)); i++ {
		mid := (lo + hi) / 2
		fm := f(mid)
		if !finite(fm) {
			return 0, false
		}
		if (fm < 0) == (flo < 0) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	r := (lo + hi) / 2
	if math.Abs(f(r)) > 1e-6 {
		return 0, false
	}
	return r, true
}

func appendDistinct(out []float64, v float64) []float64 {
	if n := len(out); n > 0 && math.Abs(out[n-1]-v) < 1e-9 {
		return out
	}
	return append(out, v)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

package symbolic

import (
	"fmt"
	"math/big"
	"strconv"
)

// DSolve returns the general solution of a linear ordinary differential
// equation with constant coefficients and a constant right-hand side, such
// as y'' + y = 0 or diff(y(x), x) - y(x) = 3. Integration constants are
// named C1, C2, ...
func DSolve(eq *Equation) (*Equation, error) {
	e := eq.Expr()
	fn, err := unknownFunction(e)
	if err != nil {
		return nil, err
	}
	// a bare y next to y'' means y(x)
	e = Expand(Replace(e, bind(fn.name, fn)))
	x, ok := fn.arg.(*Sym)
	if !ok {
		return nil, fmt.Errorf("%w: %s must depend on a single variable", ErrUnsupportedODE, fn)
	}

	coefs := make(map[int]*big.Rat)
	order := 0
	var forcing []Expr
	for _, t := range termsOf(e) {
		k, c, linear := derivativeTerm(t, fn.name)
		switch {
		case !linear:
			return nil, fmt.Errorf("%w: %s is not linear with constant coefficients", ErrUnsupportedODE, t)
		case k < 0:
			forcing = append(forcing, Neg(t))
		default:
			if coefs[k] == nil {
				coefs[k] = new(big.Rat)
			}
			coefs[k].Add(coefs[k], c)
			if k > order {
				order = k
			}
		}
	}
	if order == 0 || coefs[order] == nil || coefs[order].Sign() == 0 {
		return nil, fmt.Errorf("%w: no derivative of %s", ErrUnsupportedODE, fn.name)
	}

	rhs := AddOf(forcing...)
	if Has(rhs, x.name) {
		return nil, fmt.Errorf("%w: only constant forcing terms are supported", ErrUnsupportedODE)
	}

	char := make([]*big.Rat, order+1)
	for i := range char {
		char[i] = new(big.Rat)
		if c := coefs[i]; c != nil {
			char[i].Set(c)
		}
	}
	basis := fundamentalSet(Roots(NewPoly(char...)), x)

	terms := make([]Expr, 0, len(basis)+1)
	for i, b := range basis {
		terms = append(terms, MulOf(Symbol("C"+strconv.Itoa(i+1)), b))
	}
	terms = append(terms, particular(char, rhs, x))
	return &Equation{LHS: fn, RHS: AddOf(terms...)}, nil
}

func unknownFunction(e Expr) (*AppliedFunc, error) {
	var found *AppliedFunc
	var conflict bool
	Walk(e, func(n Expr) bool {
		var f *AppliedFunc
		switch v := n.(type) {
		case *AppliedFunc:
			f = v
		case *Derivative:
			f = v.fn
		default:
			return true
		}
		if found != nil && found.String() != f.String() {
			conflict = true
		}
		found = f
		return false
	})
	switch {
	case found == nil:
		return nil, fmt.Errorf("%w: no unknown function", ErrUnsupportedODE)
	case conflict:
		return nil, fmt.Errorf("%w: more than one unknown function", ErrUnsupportedODE)
	}
	return found, nil
}

// derivativeTerm reports the derivative order and rational coefficient of a
// term c*y^(k)(x). k is -1 when the term does not involve the function.
func derivativeTerm(t Expr, name string) (int, *big.Rat, bool) {
	k := -1
	coef := big.NewRat(1, 1)
	for _, f := range factorsOf(t) {
		switch v := f.(type) {
		case *Num:
			coef.Mul(coef, v.r)
		case *AppliedFunc:
			if v.name != name || k >= 0 {
				return 0, nil, false
			}
			k = 0
		case *Derivative:
			if v.fn.name != name || k >= 0 {
				return 0, nil, false
			}
			k = v.order
		default:
			if involvesFunction(f, name) {
				return 0, nil, false
			}
			if k >= 0 {
				return 0, nil, false
			}
			coef = nil
		}
	}
	if k >= 0 && coef == nil {
		return 0, nil, false
	}
	return k, coef, true
}

func involvesFunction(e Expr, name string) bool {
	found := false
	Walk(e, func(n Expr) bool {
		switch v := n.(type) {
		case *AppliedFunc:
			found = found || v.name == name
		case *Derivative:
			found = found || v.fn.name == name
		}
		return !found
	})
	return found
}

// fundamentalSet turns characteristic roots into solutions x**j*e**(r*x),
// with conjugate pairs giving e**(a*x)*cos(b*x) and e**(a*x)*sin(b*x).
func fundamentalSet(roots []Root, x *Sym) []Expr {
	var out []Expr
	for _, r := range roots {
		if !r.IsReal() && numberSignOf(r.Im) < 0 {
			continue
		}
		for j := 0; j < r.Mult; j++ {
			xj := PowOf(x, Int(int64(j)))
			growth := FuncOf("exp", MulOf(r.Re, x))
			if r.IsReal() {
				out = append(out, MulOf(xj, growth))
				continue
			}
			out = append(out,
				MulOf(xj, growth, FuncOf("sin", MulOf(r.Im, x))),
				MulOf(xj, growth, FuncOf("cos", MulOf(r.Im, x))),
			)
		}
	}
	return out
}

// numberSignOf evaluates the sign of a closed-form real number.
func numberSignOf(e Expr) int {
	v, err := e.Eval(nil)
	switch {
	case err != nil || v == 0:
		return 0
	case v < 0:
		return -1
	}
	return 1
}

// particular solves sum(char[k] * y^(k)) = rhs for constant rhs.
func particular(char []*big.Rat, rhs Expr, x *Sym) Expr {
	if isZero(rhs) {
		return Int(0)
	}
	k := 0
	for k < len(char) && char[k].Sign() == 0 {
		k++
	}
	fact := big.NewInt(1)
	for i := 2; i <= k; i++ {
		fact.Mul(fact, big.NewInt(int64(i)))
	}
	scale := new(big.Rat).Mul(char[k], new(big.Rat).SetInt(fact))
	return MulOf(Div(rhs, NewNum(scale)), PowOf(x, Int(int64(k))))
}

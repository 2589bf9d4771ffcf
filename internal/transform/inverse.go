package transform

import (
	"fmt"
	"math"
	"math/big"

	"github.com/GriffinCanCode/latexbot/internal/symbolic"
)

// imaginary parts below this are treated as real roots
const imagTolerance = 1e-9

type blockKind int

const (
	linearBlock blockKind = iota
	quadraticBlock
	numericBlock
)

// block is one coprime factor of a partial fraction denominator.
type block struct {
	kind blockKind
	poly *symbolic.Poly // the whole factor, multiplicity included
	base *symbolic.Poly // s - r, or the monic irreducible quadratic
	root *big.Rat
	mult int
}

// InverseLaplace returns f(t) whose Laplace transform is F(s). F must be a
// proper rational function of s with rational coefficients. Poles at
// rational points and irreducible quadratic factors give exact terms; any
// remaining squarefree factor is inverted through numeric residues.
func InverseLaplace(F symbolic.Expr, s, t string) (symbolic.Expr, error) {
	if t != s && symbolic.Has(F, t) {
		return nil, fmt.Errorf("inverse laplace transform of %s: %s is already in use", F, t)
	}
	num, den, ok := symbolic.AsRational(F, s)
	if !ok {
		return nil, noClosedForm("inverse laplace", F)
	}
	if num.IsZero() {
		return symbolic.Int(0), nil
	}
	if num.Degree() >= den.Degree() {
		return nil, fmt.Errorf("inverse laplace transform of %s: not a proper rational function: %w", F, symbolic.ErrNoClosedForm)
	}

	blocks, err := splitDenominator(den)
	if err != nil {
		return nil, fmt.Errorf("inverse laplace transform of %s: %w", F, err)
	}

	T := symbolic.Symbol(t)
	out := make([]symbolic.Expr, 0, len(blocks))
	for i, b := range blocks {
		n := num
		if len(blocks) > 1 {
			n = partialNumerator(num, blocks, i)
		}
		out = append(out, b.inverse(n, T))
	}
	return symbolic.AddOf(out...), nil
}

// partialNumerator returns N_i with N/D = sum N_i/B_i, using
// N_i = N * (D/B_i)**-1 mod B_i.
func partialNumerator(num *symbolic.Poly, blocks []block, i int) *symbolic.Poly {
	other := symbolic.PolyInts(1)
	for j, b := range blocks {
		if j != i {
			other = other.Mul(b.poly)
		}
	}
	_, inv, _ := other.ExtendedGCD(blocks[i].poly)
	_, n := num.Mul(inv).DivMod(blocks[i].poly)
	return n
}

func splitDenominator(den *symbolic.Poly) ([]block, error) {
	var blocks []block
	rest := den.Monic()
	for _, r := range symbolic.Roots(den) {
		q, ok := r.Re.(*symbolic.Num)
		if !r.Exact || !r.IsReal() || !ok {
			continue
		}
		base := symbolic.NewPoly(new(big.Rat).Neg(q.Rat()), big.NewRat(1, 1))
		p := base.Pow(r.Mult)
		rest, _ = rest.DivMod(p)
		blocks = append(blocks, block{kind: linearBlock, poly: p, base: base, root: q.Rat(), mult: r.Mult})
	}

	switch rest.Degree() {
	case 0:
		return blocks, nil
	case 2:
		return append(blocks, block{kind: quadraticBlock, poly: rest, base: rest, mult: 1}), nil
	case 4:
		if q := rest.GCD(rest.Deriv()); q.Degree() == 2 && q.Mul(q).Sub(rest).IsZero() {
			return append(blocks, block{kind: quadraticBlock, poly: rest, base: q, mult: 2}), nil
		}
		if q1, q2, ok := splitBiquadratic(rest); ok {
			return append(blocks,
				block{kind: quadraticBlock, poly: q1, base: q1, mult: 1},
				block{kind: quadraticBlock, poly: q2, base: q2, mult: 1}), nil
		}
	}
	if rest.GCD(rest.Deriv()).Degree() > 0 {
		return nil, fmt.Errorf("repeated irrational poles: %w", symbolic.ErrNoClosedForm)
	}
	return append(blocks, block{kind: numericBlock, poly: rest, base: rest, mult: 1}), nil
}

// splitBiquadratic factors the monic s**4 + b*s**2 + c into two rational
// quadratics s**2 - u1 and s**2 - u2.
func splitBiquadratic(p *symbolic.Poly) (*symbolic.Poly, *symbolic.Poly, bool) {
	if p.Coef(1).Sign() != 0 || p.Coef(3).Sign() != 0 {
		return nil, nil, false
	}
	b, c := p.Coef(2), p.Coef(0)
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), c))
	d, ok := ratSqrt(disc)
	if !ok || d.Sign() == 0 {
		return nil, nil, false
	}
	// s**2 - u with u = (-b ± d)/2, so the constant term is (b ∓ d)/2
	c1 := new(big.Rat).Add(b, d)
	c1.Quo(c1, big.NewRat(2, 1))
	c2 := new(big.Rat).Sub(b, d)
	c2.Quo(c2, big.NewRat(2, 1))
	one := big.NewRat(1, 1)
	return symbolic.NewPoly(c1, new(big.Rat), one), symbolic.NewPoly(c2, new(big.Rat), one), true
}

func (b block) inverse(n *symbolic.Poly, T symbolic.Expr) symbolic.Expr {
	switch b.kind {
	case linearBlock:
		return b.linearInverse(n, T)
	case quadraticBlock:
		if b.mult == 1 {
			return quadraticInverse(n, b.base, T)
		}
		u, v := n.DivMod(b.base)
		return symbolic.AddOf(quadraticInverse(u, b.base, T), squaredQuadraticInverse(v, b.base, T))
	}
	return b.residueInverse(n, T)
}

// linearInverse inverts n/(s - r)**m term by term after writing n in powers
// of s - r: c/(s - r)**k maps to c*t**(k-1)/(k-1)! * exp(r*t).
func (b block) linearInverse(n *symbolic.Poly, T symbolic.Expr) symbolic.Expr {
	u := n.Shift(b.root)
	growth := symbolic.FuncOf("exp", symbolic.MulOf(symbolic.NewNum(b.root), T))
	var out []symbolic.Expr
	for j := 0; j < b.mult; j++ {
		c := u.Coef(j)
		if c.Sign() == 0 {
			continue
		}
		p := b.mult - j - 1
		c.Quo(c, new(big.Rat).SetInt(factorial(p)))
		out = append(out, symbolic.MulOf(symbolic.NewNum(c), symbolic.PowOf(T, symbolic.Int(int64(p))), growth))
	}
	return symbolic.AddOf(out...)
}

// quadraticParams writes the monic q as (s - alpha)**2 + k.
func quadraticParams(q *symbolic.Poly) (alpha, k *big.Rat) {
	p := q.Coef(1)
	alpha = new(big.Rat).Quo(p, big.NewRat(-2, 1))
	k = new(big.Rat).Mul(p, p)
	k.Quo(k, big.NewRat(-4, 1))
	k.Add(k, q.Coef(0))
	return alpha, k
}

// oscillation returns omega with k = ±omega**2 and the cosine and sine
// names to use: circular for k > 0, hyperbolic for k < 0.
func oscillation(k *big.Rat) (omega symbolic.Expr, cos, sin string) {
	if k.Sign() > 0 {
		return symbolic.Sqrt(symbolic.NewNum(k)), "cos", "sin"
	}
	return symbolic.Sqrt(symbolic.NewNum(new(big.Rat).Neg(k))), "cosh", "sinh"
}

// quadraticInverse inverts (A*s + B)/q. With q = (s - alpha)**2 ± omega**2
// and C = B + A*alpha the result is exp(alpha*t)*(A*cos(omega*t) +
// C/omega*sin(omega*t)), hyperbolic when the sign is negative.
func quadraticInverse(n, q *symbolic.Poly, T symbolic.Expr) symbolic.Expr {
	if n.IsZero() {
		return symbolic.Int(0)
	}
	alpha, k := quadraticParams(q)
	a := n.Coef(1)
	c := new(big.Rat).Mul(a, alpha)
	c.Add(c, n.Coef(0))

	omega, cos, sin := oscillation(k)
	wt := symbolic.MulOf(omega, T)
	return symbolic.MulOf(
		symbolic.FuncOf("exp", symbolic.MulOf(symbolic.NewNum(alpha), T)),
		symbolic.AddOf(
			symbolic.MulOf(symbolic.NewNum(a), symbolic.FuncOf(cos, wt)),
			symbolic.MulOf(symbolic.NewNum(c), symbolic.PowOf(omega, symbolic.Int(-1)), symbolic.FuncOf(sin, wt)),
		),
	)
}

// squaredQuadraticInverse inverts (A*s + B)/q**2 from the pairs
//
//	u/(u**2 + w**2)**2 -> t*sin(w*t)/(2*w)
//	1/(u**2 + w**2)**2 -> (sin(w*t) - w*t*cos(w*t))/(2*w**3)
//
// and their hyperbolic counterparts, shifted by exp(alpha*t).
func squaredQuadraticInverse(n, q *symbolic.Poly, T symbolic.Expr) symbolic.Expr {
	if n.IsZero() {
		return symbolic.Int(0)
	}
	alpha, k := quadraticParams(q)
	a := n.Coef(1)
	c := new(big.Rat).Mul(a, alpha)
	c.Add(c, n.Coef(0))

	omega, cos, sin := oscillation(k)
	wt := symbolic.MulOf(omega, T)
	var second symbolic.Expr
	if k.Sign() > 0 {
		second = symbolic.Sub(symbolic.FuncOf(sin, wt), symbolic.MulOf(wt, symbolic.FuncOf(cos, wt)))
	} else {
		second = symbolic.Sub(symbolic.MulOf(wt, symbolic.FuncOf(cos, wt)), symbolic.FuncOf(sin, wt))
	}
	inv2w := symbolic.PowOf(symbolic.MulOf(symbolic.Int(2), omega), symbolic.Int(-1))
	inv2w3 := symbolic.PowOf(symbolic.MulOf(symbolic.Int(2), symbolic.PowOf(omega, symbolic.Int(3))), symbolic.Int(-1))
	return symbolic.MulOf(
		symbolic.FuncOf("exp", symbolic.MulOf(symbolic.NewNum(alpha), T)),
		symbolic.AddOf(
			symbolic.MulOf(symbolic.NewNum(a), T, symbolic.FuncOf(sin, wt), inv2w),
			symbolic.MulOf(symbolic.NewNum(c), second, inv2w3),
		),
	)
}

// residueInverse sums N(z)/D'(z)*exp(z*t) over the simple roots z of the
// block, pairing complex conjugates into real oscillating terms.
func (b block) residueInverse(n *symbolic.Poly, T symbolic.Expr) symbolic.Expr {
	deriv := b.poly.Deriv()
	var out []symbolic.Expr
	for _, r := range symbolic.Roots(b.poly) {
		z := r.Value
		if imag(z) < -imagTolerance {
			continue
		}
		c := n.EvalComplex(z) / deriv.EvalComplex(z)
		growth := symbolic.FuncOf("exp", scaled(real(z), T))
		if math.Abs(imag(z)) <= imagTolerance {
			out = append(out, symbolic.MulOf(floatExpr(real(c)), growth))
			continue
		}
		wt := scaled(imag(z), T)
		out = append(out, symbolic.MulOf(symbolic.Int(2), growth, symbolic.AddOf(
			symbolic.MulOf(floatExpr(real(c)), symbolic.FuncOf("cos", wt)),
			symbolic.MulOf(floatExpr(-imag(c)), symbolic.FuncOf("sin", wt)),
		)))
	}
	return symbolic.AddOf(out...)
}

func floatExpr(v float64) symbolic.Expr {
	if v == 0 {
		return symbolic.Int(0)
	}
	return symbolic.NewFloat(v)
}

func scaled(v float64, T symbolic.Expr) symbolic.Expr {
	return symbolic.MulOf(floatExpr(v), T)
}

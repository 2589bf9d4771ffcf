package symbolic

import (
	"math"
	"math/big"
)

// Pow is base raised to exp.
type Pow struct{ base, exp Expr }

func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }
func (p *Pow) args() []Expr   { return []Expr{p.base, p.exp} }
func (p *Pow) rank() int      { return rankPow }

const maxExactExponent = 4096

// PowOf returns the canonical power base**exp.
func PowOf(base, exp Expr) Expr {
	if isZero(exp) {
		return Int(1)
	}
	if isOne(exp) {
		return base
	}
	if isOne(base) {
		return Int(1)
	}
	if isZero(base) && isNumber(exp) && numberSign(exp) > 0 {
		return Int(0)
	}

	switch b := base.(type) {
	case *Num:
		switch e := exp.(type) {
		case *Num:
			if r, ok := powRational(b, e); ok {
				return r
			}
		case *Float:
			return powFloat(b.Float64(), e.v, base, exp)
		}
	case *Float:
		if isNumber(exp) {
			return powFloat(b.v, numberFloat(exp), base, exp)
		}
	case *Const:
		if b == E {
			return FuncOf("exp", exp)
		}
		if b == I {
			if n, ok := exp.(*Num); ok {
				if k, ok := n.Int64(); ok {
					switch ((k % 4) + 4) % 4 {
					case 0:
						return Int(1)
					case 1:
						return I
					case 2:
						return Int(-1)
					default:
						return &Mul{factors: []Expr{Int(-1), I}}
					}
				}
			}
		}
	case *Pow:
		if isInteger(exp) {
			return PowOf(b.base, MulOf(b.exp, exp))
		}
	case *Mul:
		if isInteger(exp) {
			out := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				out[i] = PowOf(f, exp)
			}
			return MulOf(out...)
		}
	case *Func:
		if b.name == "exp" {
			return FuncOf("exp", MulOf(b.arg, exp))
		}
	}
	return &Pow{base: base, exp: exp}
}

func isInteger(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsInt()
}

func powFloat(b, e float64, base, exp Expr) Expr {
	if b < 0 && e != math.Trunc(e) {
		return &Pow{base: base, exp: exp}
	}
	return NewFloat(math.Pow(b, e))
}

// powRational evaluates b**e exactly when the result is rational or a
// rational multiple of a square root.
func powRational(b, e *Num) (Expr, bool) {
	if e.IsInt() {
		k, ok := e.Int64()
		if !ok || k > maxExactExponent || k < -maxExactExponent {
			return nil, false
		}
		if b.IsZero() {
			return nil, false
		}
		return NewNum(ratPow(b.r, k)), true
	}

	p := e.r.Num()
	q := e.r.Denom()
	if !p.IsInt64() || !q.IsInt64() {
		return nil, false
	}
	pk, qk := p.Int64(), q.Int64()
	if pk > maxExactExponent || pk < -maxExactExponent {
		return nil, false
	}

	if b.Sign() < 0 {
		if qk != 2 {
			return nil, false
		}
		pos := NewNum(new(big.Rat).Neg(b.r))
		return MulOf(PowOf(I, Int(pk)), PowOf(pos, e)), true
	}

	if qk == 2 {
		whole := floorDiv(pk, 2)
		rem := pk - 2*whole
		out := NewNum(ratPow(b.r, whole))
		if rem == 0 {
			return out, true
		}
		root := sqrtRat(b.r)
		if rp, ok := root.(*Pow); ok && rp.base.(*Num).r.Cmp(b.r) == 0 {
			if whole == 0 {
				return nil, false
			}
			return &Mul{factors: []Expr{out, rp}}, true
		}
		return MulOf(out, root), true
	}

	num, ok1 := intRoot(b.r.Num(), qk)
	den, ok2 := intRoot(b.r.Denom(), qk)
	if !ok1 || !ok2 {
		return nil, false
	}
	return NewNum(ratPow(new(big.Rat).SetFrac(num, den), pk)), true
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ratPow(r *big.Rat, k int64) *big.Rat {
	neg := k < 0
	if neg {
		k = -k
	}
	e := big.NewInt(k)
	num := new(big.Int).Exp(r.Num(), e, nil)
	den := new(big.Int).Exp(r.Denom(), e, nil)
	if neg {
		num, den = den, num
	}
	return new(big.Rat).SetFrac(num, den)
}

// sqrtRat returns sqrt(r) for positive r with square factors pulled out,
// e.g. sqrt(8/3) = 2*sqrt(6)/3.
func sqrtRat(r *big.Rat) Expr {
	n := new(big.Int).Mul(r.Num(), r.Denom())
	outside, inside := squareFactor(n)
	coef := new(big.Rat).SetFrac(outside, r.Denom())
	if inside.Cmp(big.NewInt(1)) == 0 {
		return NewNum(coef)
	}
	root := &Pow{base: NewNum(new(big.Rat).SetInt(inside)), exp: Rat(1, 2)}
	if coef.Cmp(big.NewRat(1, 1)) == 0 {
		return root
	}
	return &Mul{factors: []Expr{NewNum(coef), root}}
}

const squareSearchLimit = 100000

// squareFactor writes n = outside^2 * inside with inside square-free for all
// prime factors below the search limit.
func squareFactor(n *big.Int) (outside, inside *big.Int) {
	outside = big.NewInt(1)
	inside = new(big.Int).Set(n)
	if s := new(big.Int).Sqrt(n); new(big.Int).Mul(s, s).Cmp(n) == 0 {
		return s, big.NewInt(1)
	}
	sq := new(big.Int)
	mod := new(big.Int)
	for f := int64(2); f <= squareSearchLimit; f++ {
		fb := big.NewInt(f)
		sq.Mul(fb, fb)
		if sq.Cmp(inside) > 0 {
			break
		}
		for {
			q, m := new(big.Int).QuoRem(inside, sq, mod)
			if m.Sign() != 0 {
				break
			}
			inside = q
			outside.Mul(outside, fb)
		}
	}
	return outside, inside
}

func intRoot(n *big.Int, k int64) (*big.Int, bool) {
	if n.Sign() == 0 {
		return new(big.Int), true
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(k))))
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c <= 0 {
			continue
		}
		cb := big.NewInt(c)
		if new(big.Int).Exp(cb, big.NewInt(k), nil).Cmp(n) == 0 {
			return cb, true
		}
	}
	return nil, false
}

func needsBaseParens(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return v.Sign() < 0 || !v.IsInt()
	case *Float:
		return v.v < 0
	}
	return false
}

func needsExpParens(e Expr) bool {
	switch v := e.(type) {
	case *Sym, *Const:
		return false
	case *Num:
		return v.Sign() < 0 || !v.IsInt()
	case *Float:
		return v.v < 0
	}
	return true
}

func isHalf(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.r.Cmp(big.NewRat(1, 2)) == 0
}

func (p *Pow) String() string {
	if isHalf(p.exp) {
		return "sqrt(" + p.base.String() + ")"
	}
	if inv, ok := negativePower(p); ok {
		s := inv.String()
		if _, isPow := inv.(*Pow); !isPow && needsBaseParens(inv) {
			s = "(" + s + ")"
		}
		return "1/" + s
	}
	base := p.base.String()
	if needsBaseParens(p.base) {
		base = "(" + base + ")"
	}
	exp := p.exp.String()
	if needsExpParens(p.exp) {
		exp = "(" + exp + ")"
	}
	return base + "**" + exp
}

func (p *Pow) LaTeX() string {
	if isHalf(p.exp) {
		return `\sqrt{` + p.base.LaTeX() + `}`
	}
	if inv, ok := negativePower(p); ok {
		return `\frac{1}{` + inv.LaTeX() + `}`
	}
	if f, ok := p.base.(*Func); ok && isInteger(p.exp) {
		return f.latexPower(p.exp.LaTeX())
	}
	base := p.base.LaTeX()
	if needsBaseParens(p.base) {
		base = "(" + base + ")"
	}
	return base + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Subs(name string, value Expr) Expr {
	return PowOf(p.base.Subs(name, value), p.exp.Subs(name, value))
}

func (p *Pow) Diff(name string) Expr {
	baseHas := Has(p.base, name)
	expHas := Has(p.exp, name)
	switch {
	case !baseHas && !expHas:
		return Int(0)
	case !expHas:
		return MulOf(p.exp, PowOf(p.base, Sub(p.exp, Int(1))), p.base.Diff(name))
	case !baseHas:
		return MulOf(p, FuncOf("log", p.base), p.exp.Diff(name))
	}
	return MulOf(p, AddOf(
		MulOf(p.exp.Diff(name), FuncOf("log", p.base)),
		MulOf(p.exp, p.base.Diff(name), PowOf(p.base, Int(-1))),
	))
}

func (p *Pow) Eval(env Env) (float64, error) {
	b, err := p.base.Eval(env)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.Eval(env)
	if err != nil {
		return 0, err
	}
	return math.Pow(b, e), nil
}

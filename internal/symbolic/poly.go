package symbolic

import (
	"math/big"
	"strings"
)

// Poly is a univariate polynomial with rational coefficients, lowest degree
// first. The zero polynomial has no coefficients.
type Poly struct{ c []*big.Rat }

// NewPoly builds a polynomial from coefficients, lowest degree first.
func NewPoly(coefs ...*big.Rat) *Poly {
	c := make([]*big.Rat, len(coefs))
	for i, r := range coefs {
		c[i] = new(big.Rat).Set(r)
	}
	return (&Poly{c: c}).trim()
}

// PolyInts builds a polynomial from integer coefficients, lowest degree first.
func PolyInts(coefs ...int64) *Poly {
	c := make([]*big.Rat, len(coefs))
	for i, v := range coefs {
		c[i] = new(big.Rat).SetInt64(v)
	}
	return (&Poly{c: c}).trim()
}

func (p *Poly) trim() *Poly {
	n := len(p.c)
	for n > 0 && p.c[n-1].Sign() == 0 {
		n--
	}
	p.c = p.c[:n]
	return p
}

// Degree returns the degree, or -1 for the zero polynomial.
func (p *Poly) Degree() int { return len(p.c) - 1 }

func (p *Poly) IsZero() bool { return len(p.c) == 0 }

// Coef returns the coefficient of x**i.
func (p *Poly) Coef(i int) *big.Rat {
	if i < 0 || i >= len(p.c) {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p.c[i])
}

// Lead returns the leading coefficient.
func (p *Poly) Lead() *big.Rat { return p.Coef(p.Degree()) }

func (p *Poly) Add(q *Poly) *Poly {
	n := max(len(p.c), len(q.c))
	out := make([]*big.Rat, n)
	for i := range out {
		out[i] = new(big.Rat).Add(p.Coef(i), q.Coef(i))
	}
	return (&Poly{c: out}).trim()
}

func (p *Poly) Sub(q *Poly) *Poly { return p.Add(q.Scale(big.NewRat(-1, 1))) }

func (p *Poly) Scale(k *big.Rat) *Poly {
	out := make([]*big.Rat, len(p.c))
	for i, c := range p.c {
		out[i] = new(big.Rat).Mul(c, k)
	}
	return (&Poly{c: out}).trim()
}

func (p *Poly) Mul(q *Poly) *Poly {
	if p.IsZero() || q.IsZero() {
		return &Poly{}
	}
	out := make([]*big.Rat, len(p.c)+len(q.c)-1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	t := new(big.Rat)
	for i, a := range p.c {
		for j, b := range q.c {
			out[i+j].Add(out[i+j], t.Mul(a, b))
		}
	}
	return (&Poly{c: out}).trim()
}

// Pow returns p**k for k >= 0.
func (p *Poly) Pow(k int) *Poly {
	out := PolyInts(1)
	for i := 0; i < k; i++ {
		out = out.Mul(p)
	}
	return out
}

// DivMod returns the quotient and remainder of p / q. q must be non-zero.
func (p *Poly) DivMod(q *Poly) (*Poly, *Poly) {
	if q.IsZero() {
		panic("symbolic: polynomial division by zero")
	}
	rem := NewPoly(p.c...)
	if rem.Degree() < q.Degree() {
		return &Poly{}, rem
	}
	quo := make([]*big.Rat, rem.Degree()-q.Degree()+1)
	for i := range quo {
		quo[i] = new(big.Rat)
	}
	lead := q.Lead()
	for !rem.IsZero() && rem.Degree() >= q.Degree() {
		shift := rem.Degree() - q.Degree()
		k := new(big.Rat).Quo(rem.Lead(), lead)
		quo[shift].Set(k)
		for i, c := range q.c {
			rem.c[i+shift].Sub(rem.c[i+shift], new(big.Rat).Mul(k, c))
		}
		rem.trim()
	}
	return (&Poly{c: quo}).trim(), rem
}

// Monic scales p to leading coefficient 1.
func (p *Poly) Monic() *Poly {
	if p.IsZero() {
		return p
	}
	return p.Scale(new(big.Rat).Inv(p.Lead()))
}

// GCD returns the monic greatest common divisor.
func (p *Poly) GCD(q *Poly) *Poly {
	a, b := p, q
	for !b.IsZero() {
		_, r := a.DivMod(b)
		a, b = b, r
	}
	return a.Monic()
}

// ExtendedGCD returns g, s, t with s*p + t*q = g and g monic.
func (p *Poly) ExtendedGCD(q *Poly) (g, s, t *Poly) {
	r0, r1 := p, q
	s0, s1 := PolyInts(1), &Poly{}
	t0, t1 := &Poly{}, PolyInts(1)
	for !r1.IsZero() {
		quo, rem := r0.DivMod(r1)
		r0, r1 = r1, rem
		s0, s1 = s1, s0.Sub(quo.Mul(s1))
		t0, t1 = t1, t0.Sub(quo.Mul(t1))
	}
	if r0.IsZero() {
		return r0, s0, t0
	}
	inv := new(big.Rat).Inv(r0.Lead())
	return r0.Scale(inv), s0.Scale(inv), t0.Scale(inv)
}

func (p *Poly) Deriv() *Poly {
	if len(p.c) < 2 {
		return &Poly{}
	}
	out := make([]*big.Rat, len(p.c)-1)
	for i := 1; i < len(p.c); i++ {
		out[i-1] = new(big.Rat).Mul(p.c[i], new(big.Rat).SetInt64(int64(i)))
	}
	return (&Poly{c: out}).trim()
}

// Eval evaluates p at x exactly.
func (p *Poly) Eval(x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(p.c) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, p.c[i])
	}
	return acc
}

// EvalComplex evaluates p at z with Horner's rule.
func (p *Poly) EvalComplex(z complex128) complex128 {
	var acc complex128
	for i := len(p.c) - 1; i >= 0; i-- {
		f, _ := p.c[i].Float64()
		acc = acc*z + complex(f, 0)
	}
	return acc
}

// Shift returns p(x + a).
func (p *Poly) Shift(a *big.Rat) *Poly {
	lin := NewPoly(a, big.NewRat(1, 1))
	out := &Poly{}
	for i := len(p.c) - 1; i >= 0; i-- {
		out = out.Mul(lin).Add(NewPoly(p.c[i]))
	}
	return out
}

// Content returns the positive rational k such that p/k has coprime integer
// coefficients, signed so that p/k has a positive leading coefficient.
func (p *Poly) Content() *big.Rat {
	if p.IsZero() {
		return big.NewRat(1, 1)
	}
	num := new(big.Int)
	den := big.NewInt(1)
	for _, c := range p.c {
		if c.Sign() == 0 {
			continue
		}
		num.GCD(nil, nil, num, new(big.Int).Abs(c.Num()))
		den = lcm(den, c.Denom())
	}
	k := new(big.Rat).SetFrac(num, den)
	if p.Lead().Sign() < 0 {
		k.Neg(k)
	}
	return k
}

// Primitive returns p divided by its content.
func (p *Poly) Primitive() *Poly {
	return p.Scale(new(big.Rat).Inv(p.Content()))
}

func lcm(a, b *big.Int) *big.Int {
	g := new(big.Int).GCD(nil, nil, a, b)
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, g).Abs(out)
}

// Expr converts p to an expression in x.
func (p *Poly) Expr(x string) Expr {
	terms := make([]Expr, 0, len(p.c))
	for i, c := range p.c {
		if c.Sign() == 0 {
			continue
		}
		terms = append(terms, MulOf(NewNum(c), PowOf(Symbol(x), Int(int64(i)))))
	}
	return AddOf(terms...)
}

func (p *Poly) String() string {
	if p.IsZero() {
		return "0"
	}
	return strings.ReplaceAll(p.Expr("x").String(), " ", "")
}

// ToPoly converts e to a polynomial in x with rational coefficients.
func ToPoly(e Expr, x string) (*Poly, bool) {
	cs, ok := PolyCoeffs(e, x)
	if !ok {
		return nil, false
	}
	out := make([]*big.Rat, len(cs))
	for i, c := range cs {
		n, ok := c.(*Num)
		if !ok {
			return nil, false
		}
		out[i] = n.r
	}
	return NewPoly(out...), true
}

// AsRational writes e as num/den with coprime polynomials in x and den monic.
func AsRational(e Expr, x string) (num, den *Poly, ok bool) {
	num, den, ok = rationalParts(e, x)
	if !ok || den.IsZero() {
		return nil, nil, false
	}
	return reduceRational(num, den)
}

func reduceRational(num, den *Poly) (*Poly, *Poly, bool) {
	if num.IsZero() {
		return &Poly{}, PolyInts(1), true
	}
	g := num.GCD(den)
	num, _ = num.DivMod(g)
	den, _ = den.DivMod(g)
	lead := den.Lead()
	inv := new(big.Rat).Inv(lead)
	return num.Scale(inv), den.Scale(inv), true
}

func rationalParts(e Expr, x string) (*Poly, *Poly, bool) {
	switch v := e.(type) {
	case *Num:
		return NewPoly(v.r), PolyInts(1), true
	case *Sym:
		if v.name == x {
			return PolyInts(0, 1), PolyInts(1), true
		}
		return nil, nil, false
	case *Add:
		num, den := &Poly{}, PolyInts(1)
		for _, t := range v.terms {
			n, d, ok := rationalParts(t, x)
			if !ok {
				return nil, nil, false
			}
			num = num.Mul(d).Add(n.Mul(den))
			den = den.Mul(d)
			if num, den, ok = reduceRational(num, den); !ok {
				return nil, nil, false
			}
		}
		return num, den, true
	case *Mul:
		num, den := PolyInts(1), PolyInts(1)
		for _, f := range v.factors {
			n, d, ok := rationalParts(f, x)
			if !ok {
				return nil, nil, false
			}
			num, den = num.Mul(n), den.Mul(d)
			if num, den, ok = reduceRational(num, den); !ok {
				return nil, nil, false
			}
		}
		return num, den, true
	case *Pow:
		n, ok := v.exp.(*Num)
		if !ok {
			return nil, nil, false
		}
		k, ok := n.Int64()
		if !ok || k > maxPolyDegree || k < -maxPolyDegree {
			return nil, nil, false
		}
		bn, bd, ok := rationalParts(v.base, x)
		if !ok {
			return nil, nil, false
		}
		if k < 0 {
			if bn.IsZero() {
				return nil, nil, false
			}
			bn, bd, k = bd, bn, -k
		}
		return bn.Pow(int(k)), bd.Pow(int(k)), true
	}
	return nil, nil, false
}

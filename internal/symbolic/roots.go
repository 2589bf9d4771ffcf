package symbolic

import (
	"math"
	"math/big"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Root is a root of a polynomial. Exact roots carry closed-form real and
// imaginary parts; numeric ones carry floats.
type Root struct {
	Re, Im Expr
	Value  complex128
	Mult   int
	Exact  bool
}

// Expr returns the root as a single expression Re + Im*I.
func (r Root) Expr() Expr {
	if isZero(r.Im) {
		return r.Re
	}
	return AddOf(r.Re, MulOf(r.Im, I))
}

// IsReal reports whether the root has no imaginary part.
func (r Root) IsReal() bool { return isZero(r.Im) }

// rational-root search is skipped when the constant or leading coefficient
// has a larger magnitude than this
const maxRationalRootCoef = 1_000_000

// Roots returns all roots of p with multiplicity, real roots first in
// ascending order, then complex roots ordered by real and imaginary part.
func Roots(p *Poly) []Root {
	if p.Degree() <= 0 {
		return nil
	}
	var roots []Root
	rest := p.Primitive()

	zeros := 0
	for rest.Coef(0).Sign() == 0 && rest.Degree() > 0 {
		rest, _ = rest.DivMod(PolyInts(0, 1))
		zeros++
	}
	if zeros > 0 {
		roots = append(roots, exactReal(new(big.Rat), zeros))
	}

	for _, r := range rationalRoots(rest) {
		lin := NewPoly(new(big.Rat).Neg(r), big.NewRat(1, 1))
		mult := 0
		for {
			q, rem := rest.DivMod(lin)
			if !rem.IsZero() {
				break
			}
			rest = q
			mult++
		}
		if mult > 0 {
			roots = append(roots, exactReal(r, mult))
		}
	}

	switch {
	case rest.Degree() == 2:
		roots = append(roots, quadraticRoots(rest.Coef(2), rest.Coef(1), rest.Coef(0))...)
	case rest.Degree() == 4 && rest.Coef(1).Sign() == 0 && rest.Coef(3).Sign() == 0:
		if rs, ok := biquadraticRoots(rest); ok {
			roots = append(roots, rs...)
		} else {
			roots = append(roots, numericRoots(rest)...)
		}
	case rest.Degree() >= 3:
		roots = append(roots, numericRoots(rest)...)
	}
	sortRoots(roots)
	return roots
}

func exactReal(r *big.Rat, mult int) Root {
	f, _ := r.Float64()
	return Root{Re: NewNum(r), Im: Int(0), Value: complex(f, 0), Mult: mult, Exact: true}
}

// rationalRoots lists the distinct rational roots of p by the rational root
// theorem.
func rationalRoots(p *Poly) []*big.Rat {
	if p.Degree() < 1 {
		return nil
	}
	prim := p.Primitive()
	a0 := new(big.Int).Abs(prim.Coef(0).Num())
	an := new(big.Int).Abs(prim.Lead().Num())
	if a0.Sign() == 0 || !a0.IsInt64() || !an.IsInt64() ||
		a0.Int64() > maxRationalRootCoef || an.Int64() > maxRationalRootCoef {
		return nil
	}
	var out []*big.Rat
	seen := make(map[string]bool)
	for _, num := range divisors(a0.Int64()) {
		for _, den := range divisors(an.Int64()) {
			for _, sign := range []int64{-1, 1} {
				r := big.NewRat(sign*num, den)
				if seen[r.String()] {
					continue
				}
				seen[r.String()] = true
				if prim.Eval(r).Sign() == 0 {
					out = append(out, r)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

func divisors(n int64) []int64 {
	var small, large []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			small = append(small, d)
			if d*d != n {
				large = append(large, n/d)
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

// quadraticRoots solves a*x**2 + b*x + c = 0 in closed form.
func quadraticRoots(a, b, c *big.Rat) []Root {
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)))
	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	center := new(big.Rat).Quo(new(big.Rat).Neg(b), twoA)
	cf, _ := center.Float64()

	if disc.Sign() == 0 {
		return []Root{exactReal(center, 2)}
	}
	absDisc := new(big.Rat).Abs(disc)
	scale := new(big.Rat).Abs(new(big.Rat).Inv(twoA))
	offset := MulOf(NewNum(scale), Sqrt(NewNum(absDisc)))
	df, _ := absDisc.Float64()
	sf, _ := scale.Float64()
	of := sf * math.Sqrt(df)

	if disc.Sign() > 0 {
		return []Root{
			{Re: AddOf(NewNum(center), Neg(offset)), Im: Int(0), Value: complex(cf-of, 0), Mult: 1, Exact: true},
			{Re: AddOf(NewNum(center), offset), Im: Int(0), Value: complex(cf+of, 0), Mult: 1, Exact: true},
		}
	}
	return []Root{
		{Re: NewNum(center), Im: Neg(offset), Value: complex(cf, -of), Mult: 1, Exact: true},
		{Re: NewNum(center), Im: offset, Value: complex(cf, of), Mult: 1, Exact: true},
	}
}

// biquadraticRoots handles a*x**4 + b*x**2 + c when the quadratic in x**2 has
// rational roots.
func biquadraticRoots(p *Poly) ([]Root, bool) {
	a, b, c := p.Coef(4), p.Coef(2), p.Coef(0)
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)))
	if disc.Sign() < 0 {
		return nil, false
	}
	sq, ok := sqrtRatExact(disc)
	if !ok {
		return nil, false
	}
	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	var out []Root
	for _, sign := range []int64{-1, 1} {
		u := new(big.Rat).Add(new(big.Rat).Neg(b), new(big.Rat).Mul(big.NewRat(sign, 1), sq))
		u.Quo(u, twoA)
		// x**2 = u
		out = append(out, quadraticRoots(big.NewRat(1, 1), new(big.Rat), new(big.Rat).Neg(u))...)
	}
	return out, true
}

func sqrtRatExact(r *big.Rat) (*big.Rat, bool) {
	num := new(big.Int).Sqrt(r.Num())
	den := new(big.Int).Sqrt(r.Denom())
	if new(big.Int).Mul(num, num).Cmp(r.Num()) != 0 || new(big.Int).Mul(den, den).Cmp(r.Denom()) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}

// numericRoots finds roots as eigenvalues of the companion matrix and
// polishes them with Newton steps on p.
func numericRoots(p *Poly) []Root {
	n := p.Degree()
	lead, _ := p.Lead().Float64()
	comp := mat.NewDense(n, n, nil)
	for i := 1; i < n; i++ {
		comp.Set(i, i-1, 1)
	}
	for i := 0; i < n; i++ {
		c, _ := p.Coef(i).Float64()
		comp.Set(i, n-1, -c/lead)
	}

	var eig mat.Eigen
	if !eig.Factorize(comp, mat.EigenNone) {
		return nil
	}
	deriv := p.Deriv()
	var out []Root
	for _, z := range eig.Values(nil) {
		z = polish(p, deriv, z)
		out = append(out, numericRoot(z))
	}
	return out
}

func polish(p, deriv *Poly, z complex128) complex128 {
	for i := 0; i < 20; i++ {
		d := deriv.EvalComplex(z)
		if d == 0 {
			break
		}
		step := p.EvalComplex(z) / d
		z -= step
		if cmplx.Abs(step) < 1e-15*(1+cmplx.Abs(z)) {
			break
		}
	}
	return z
}

func numericRoot(z complex128) Root {
	re, im := roundSignificant(real(z)), roundSignificant(imag(z))
	if math.Abs(im) < 1e-12*(1+math.Abs(re)) {
		im = 0
	}
	if math.Abs(re) < 1e-12*(1+math.Abs(im)) {
		re = 0
	}
	r := Root{Re: NewFloat(re), Im: Int(0), Value: complex(re, im), Mult: 1}
	if im != 0 {
		r.Im = NewFloat(im)
	}
	return r
}

// roundSignificant keeps 15 significant digits, dropping float noise.
func roundSignificant(v float64) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, 14-math.Floor(math.Log10(math.Abs(v))))
	return math.Round(v*scale) / scale
}

func sortRoots(roots []Root) {
	sort.SliceStable(roots, func(i, j int) bool {
		ri, rj := roots[i].IsReal(), roots[j].IsReal()
		if ri != rj {
			return ri
		}
		a, b := roots[i].Value, roots[j].Value
		if real(a) != real(b) {
			return real(a) < real(b)
		}
		return imag(a) < imag(b)
	})
}

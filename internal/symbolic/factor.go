package symbolic

import (
	"math/big"
	"sort"
)

// Factor writes e as a product. Univariate rational functions are split into
// linear factors over the rationals; anything else has its common numeric
// content and common powers pulled out of the sum.
func Factor(e Expr) Expr {
	free := FreeSymbols(e)
	if len(free) == 1 {
		if num, den, ok := AsRational(e, free[0]); ok && !num.IsZero() {
			x := free[0]
			if den.Degree() == 0 {
				return factorPoly(num, x)
			}
			return factorRatio(num, den, x)
		}
	}
	return factorCommon(Expand(e))
}

// factorPoly returns content * prod (b*x - a)**m * remainder.
func factorPoly(p *Poly, x string) Expr {
	if p.Degree() <= 0 {
		return p.Expr(x)
	}
	content := p.Content()
	rest := p.Primitive()
	var factors []Expr
	factors = append(factors, NewNum(content))

	zeros := 0
	for rest.Coef(0).Sign() == 0 {
		rest, _ = rest.DivMod(PolyInts(0, 1))
		zeros++
	}
	if zeros > 0 {
		factors = append(factors, PowOf(Symbol(x), Int(int64(zeros))))
	}

	for _, r := range rationalRoots(rest) {
		// b*x - a with r = a/b keeps integer coefficients
		lin := NewPoly(new(big.Rat).Neg(new(big.Rat).SetInt(r.Num())), new(big.Rat).SetInt(r.Denom()))
		mult := 0
		for rest.Degree() > 0 {
			q, rem := rest.DivMod(lin)
			if !rem.IsZero() {
				break
			}
			rest = q
			mult++
		}
		if mult > 0 {
			factors = append(factors, rawPow(lin.Expr(x), mult))
		}
	}
	if rest.Degree() > 0 {
		factors = append(factors, rest.Expr(x))
	} else {
		factors[0] = NewNum(new(big.Rat).Mul(content, rest.Coef(0)))
	}
	if len(factors) == 2 && isOne(factors[0]) {
		return factors[1]
	}
	return rawMul(factors...)
}

func factorRatio(num, den *Poly, x string) Expr {
	coef := Expr(Int(1))
	var out []Expr
	for _, f := range factorsOf(factorPoly(num, x)) {
		if isNumber(f) {
			coef = mulNumbers(coef, f)
			continue
		}
		out = append(out, f)
	}
	for _, f := range factorsOf(factorPoly(den, x)) {
		if isNumber(f) {
			coef = mulNumbers(coef, PowOf(f, Int(-1)))
			continue
		}
		base, exp := asPow(f)
		out = append(out, &Pow{base: base, exp: Neg(exp)})
	}
	return rawMul(append([]Expr{coef}, out...)...)
}

func rawPow(base Expr, k int) Expr {
	if k == 1 {
		return base
	}
	return &Pow{base: base, exp: Int(int64(k))}
}

// factorCommon pulls the gcd of the numeric coefficients and the lowest
// common power of every shared base out of a sum.
func factorCommon(e Expr) Expr {
	terms := termsOf(e)
	if len(terms) < 2 {
		return e
	}

	var content *big.Rat
	common := make(map[string]*big.Rat)
	bases := make(map[string]Expr)
	for i, t := range terms {
		coef, rest := coeffAndRest(t)
		n, ok := coef.(*Num)
		if !ok {
			return e
		}
		if content == nil {
			content = new(big.Rat).Abs(n.r)
		} else {
			content = ratGCD(content, n.r)
		}

		seen := make(map[string]*big.Rat)
		if !isOne(rest) {
			for _, f := range factorsOf(rest) {
				base, exp := asPow(f)
				k, ok := exp.(*Num)
				if !ok || k.Sign() <= 0 {
					continue
				}
				key := base.String()
				seen[key] = k.r
				bases[key] = base
			}
		}
		if i == 0 {
			common = seen
			continue
		}
		for key, k := range common {
			other, ok := seen[key]
			if !ok {
				delete(common, key)
				continue
			}
			if other.Cmp(k) < 0 {
				common[key] = other
			}
		}
	}

	if isNegativeTerm(terms[0]) {
		content.Neg(content)
	}
	keys := make([]string, 0, len(common))
	for key := range common {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	divisor := []Expr{NewNum(content)}
	outer := []Expr{NewNum(content)}
	for _, key := range keys {
		p := PowOf(bases[key], NewNum(common[key]))
		outer = append(outer, p)
		divisor = append(divisor, p)
	}
	if len(outer) == 1 && content.Cmp(big.NewRat(1, 1)) == 0 {
		return e
	}

	inv := PowOf(MulOf(divisor...), Int(-1))
	inner := make([]Expr, len(terms))
	for i, t := range terms {
		inner[i] = Expand(MulOf(t, inv))
	}
	outer = append(outer, AddOf(inner...))
	return rawMul(outer...)
}

func ratGCD(a, b *big.Rat) *big.Rat {
	num := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a.Num()), new(big.Int).Abs(b.Num()))
	den := lcm(a.Denom(), b.Denom())
	return new(big.Rat).SetFrac(num, den)
}

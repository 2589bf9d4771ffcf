package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

var nan = math.NaN()

// Num is an exact rational number.
type Num struct{ r *big.Rat }

// Int returns the integer n.
func Int(n int64) *Num { return &Num{r: new(big.Rat).SetInt64(n)} }

// Rat returns p/q. q must be non-zero.
func Rat(p, q int64) *Num { return &Num{r: big.NewRat(p, q)} }

// NewNum copies r into a Num.
func NewNum(r *big.Rat) *Num { return &Num{r: new(big.Rat).Set(r)} }

func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.r) }
func (n *Num) Sign() int             { return n.r.Sign() }
func (n *Num) IsZero() bool          { return n.r.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.r.IsInt() && n.r.Num().IsInt64() && n.r.Num().Int64() == 1 }
func (n *Num) IsInt() bool           { return n.r.IsInt() }
func (n *Num) Float64() float64      { f, _ := n.r.Float64(); return f }
func (n *Num) Subs(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return Int(0) }
func (n *Num) Eval(Env) (float64, error) {
	return n.Float64(), nil
}
func (n *Num) args() []Expr { return nil }
func (n *Num) rank() int    { return rankNumber }

// Int64 returns the value when n is an integer that fits in int64.
func (n *Num) Int64() (int64, bool) {
	if !n.r.IsInt() || !n.r.Num().IsInt64() {
		return 0, false
	}
	return n.r.Num().Int64(), true
}

func (n *Num) String() string {
	if n.r.IsInt() {
		return n.r.Num().String()
	}
	return n.r.Num().String() + "/" + n.r.Denom().String()
}

func (n *Num) LaTeX() string {
	if n.r.IsInt() {
		return n.r.Num().String()
	}
	num := new(big.Int).Abs(n.r.Num())
	sign := ""
	if n.r.Sign() < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, num.String(), n.r.Denom().String())
}

// Float is an inexact number produced by numeric algorithms.
type Float struct{ v float64 }

// NewFloat wraps v.
func NewFloat(v float64) *Float { return &Float{v: v} }

func (f *Float) Value() float64        { return f.v }
func (f *Float) Subs(string, Expr) Expr { return f }
func (f *Float) Diff(string) Expr      { return Int(0) }
func (f *Float) Eval(Env) (float64, error) {
	return f.v, nil
}
func (f *Float) args() []Expr   { return nil }
func (f *Float) rank() int      { return rankNumber }
func (f *Float) String() string { return formatFloat(f.v) }
func (f *Float) LaTeX() string  { return formatFloat(f.v) }

func formatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func isNumber(e Expr) bool {
	switch e.(type) {
	case *Num, *Float:
		return true
	}
	return false
}

func numberFloat(e Expr) float64 {
	switch v := e.(type) {
	case *Num:
		return v.Float64()
	case *Float:
		return v.v
	}
	return nan
}

func numberSign(e Expr) int {
	switch v := e.(type) {
	case *Num:
		return v.Sign()
	case *Float:
		switch {
		case v.v > 0:
			return 1
		case v.v < 0:
			return -1
		}
	}
	return 0
}

func isZero(e Expr) bool {
	return isNumber(e) && numberSign(e) == 0
}

func isOne(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsOne()
}

func isMinusOne(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.r.Cmp(big.NewRat(-1, 1)) == 0
}

// accumulator folds exact and inexact numbers. Exact values stay exact until
// an inexact one is seen.
type accumulator struct {
	exact   *big.Rat
	inexact float64
	float   bool
}

func newAccumulator() *accumulator {
	return &accumulator{exact: new(big.Rat)}
}

func (a *accumulator) add(e Expr) {
	switch v := e.(type) {
	case *Num:
		a.exact.Add(a.exact, v.r)
	case *Float:
		a.float = true
		a.inexact += v.v
	}
}

func (a *accumulator) mul(e Expr) {
	switch v := e.(type) {
	case *Num:
		a.exact.Mul(a.exact, v.r)
	case *Float:
		a.float = true
		a.inexact *= v.v
	}
}

func (a *accumulator) sum() Expr {
	if a.float {
		f, _ := a.exact.Float64()
		return NewFloat(f + a.inexact)
	}
	return NewNum(a.exact)
}

func (a *accumulator) product() Expr {
	if a.float {
		f, _ := a.exact.Float64()
		return NewFloat(f * a.inexact)
	}
	return NewNum(a.exact)
}

func newProductAccumulator() *accumulator {
	return &accumulator{exact: big.NewRat(1, 1), inexact: 1}
}

func addNumbers(a, b Expr) Expr {
	acc := newAccumulator()
	acc.add(a)
	acc.add(b)
	return acc.sum()
}

func mulNumbers(a, b Expr) Expr {
	acc := newProductAccumulator()
	acc.mul(a)
	acc.mul(b)
	return acc.product()
}

package symbolic

import (
	"fmt"
	"math"
	"strings"
)

// Func is an elementary function applied to an argument.
type Func struct {
	name string
	arg  Expr
}

func (f *Func) Name() string { return f.name }
func (f *Func) Arg() Expr    { return f.arg }
func (f *Func) args() []Expr { return []Expr{f.arg} }
func (f *Func) rank() int    { return rankFunc }

var elementary = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"sinh": math.Sinh,
	"cosh": math.Cosh,
	"tanh": math.Tanh,
	"exp":  math.Exp,
	"log":  math.Log,
	"abs":  math.Abs,
}

var (
	oddFuncs  = map[string]bool{"sin": true, "tan": true, "asin": true, "atan": true, "sinh": true, "tanh": true}
	evenFuncs = map[string]bool{"cos": true, "cosh": true, "abs": true}
)

// IsFunction reports whether name is a known elementary function.
func IsFunction(name string) bool {
	_, ok := elementary[name]
	return ok
}

// FuncOf applies the elementary function name to arg, evaluating the
// trivial special values.
func FuncOf(name string, arg Expr) Expr {
	switch name {
	case "sqrt":
		return Sqrt(arg)
	case "ln":
		name = "log"
	}

	if fv, ok := arg.(*Float); ok {
		if fn, ok := elementary[name]; ok {
			if v := fn(fv.v); !math.IsNaN(v) && !math.IsInf(v, 0) {
				return NewFloat(v)
			}
		}
	}

	if coef, _ := coeffAndRest(arg); numberSign(coef) < 0 {
		switch {
		case oddFuncs[name]:
			return Neg(FuncOf(name, Neg(arg)))
		case evenFuncs[name]:
			return FuncOf(name, Neg(arg))
		}
	}

	if v, ok := inverseTrigValue(name, arg); ok {
		return v
	}

	switch name {
	case "sin", "tan", "sinh", "tanh", "asin", "atan":
		if isZero(arg) {
			return Int(0)
		}
		if (name == "sin" || name == "tan") && arg == Expr(Pi) {
			return Int(0)
		}
	case "cos", "cosh":
		if isZero(arg) {
			return Int(1)
		}
		if name == "cos" && arg == Expr(Pi) {
			return Int(-1)
		}
	case "acos":
		if isOne(arg) {
			return Int(0)
		}
		if coef, _ := coeffAndRest(arg); numberSign(coef) < 0 {
			if v := FuncOf(name, Neg(arg)); !isFunc(v, name) {
				return Sub(Pi, v)
			}
		}
	case "exp":
		if isZero(arg) {
			return Int(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "log" {
			return inner.arg
		}
	case "log":
		if isOne(arg) {
			return Int(0)
		}
		if arg == Expr(E) {
			return Int(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			if n.Sign() < 0 {
				return Neg(n)
			}
			return n
		}
		if c, ok := arg.(*Const); ok && c != I {
			return c
		}
	}
	return &Func{name: name, arg: arg}
}

// inverse trig values at the standard angles, as fractions of pi
var inverseTrig = []struct {
	name string
	at   float64
	p, q int64
}{
	{"asin", 0.5, 1, 6},
	{"asin", math.Sqrt2 / 2, 1, 4},
	{"asin", math.Sqrt(3) / 2, 1, 3},
	{"asin", 1, 1, 2},
	{"acos", 0, 1, 2},
	{"acos", 0.5, 1, 3},
	{"acos", math.Sqrt2 / 2, 1, 4},
	{"acos", math.Sqrt(3) / 2, 1, 6},
	{"atan", 1, 1, 4},
	{"atan", math.Sqrt(3), 1, 3},
	{"atan", math.Sqrt(3) / 3, 1, 6},
}

// inverseTrigValue maps asin, acos and atan of an exact constant argument
// to a multiple of pi when the argument is one of the standard values.
func inverseTrigValue(name string, arg Expr) (Expr, bool) {
	if name != "asin" && name != "acos" && name != "atan" {
		return nil, false
	}
	if _, ok := arg.(*Float); ok || len(FreeSymbols(arg)) > 0 {
		return nil, false
	}
	v, err := arg.Eval(nil)
	if err != nil {
		return nil, false
	}
	for _, s := range inverseTrig {
		if s.name == name && math.Abs(v-s.at) < 1e-12 {
			return MulOf(Rat(s.p, s.q), Pi), true
		}
	}
	return nil, false
}

func isFunc(e Expr, name string) bool {
	f, ok := e.(*Func)
	return ok && f.name == name
}

var funcLaTeX = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`,
	"asin": `\arcsin`, "acos": `\arccos`, "atan": `\arctan`,
	"sinh": `\sinh`, "cosh": `\cosh`, "tanh": `\tanh`,
	"log": `\log`,
}

func (f *Func) String() string {
	if f.name == "abs" {
		return "Abs(" + f.arg.String() + ")"
	}
	return f.name + "(" + f.arg.String() + ")"
}

func (f *Func) LaTeX() string {
	switch f.name {
	case "exp":
		return "e^{" + f.arg.LaTeX() + "}"
	case "abs":
		return "|" + f.arg.LaTeX() + "|"
	}
	return funcLaTeX[f.name] + "(" + f.arg.LaTeX() + ")"
}

func (f *Func) latexPower(exp string) string {
	if cmd, ok := funcLaTeX[f.name]; ok {
		return cmd + "^{" + exp + "}(" + f.arg.LaTeX() + ")"
	}
	return "(" + f.LaTeX() + ")^{" + exp + "}"
}

func (f *Func) Subs(name string, value Expr) Expr {
	return FuncOf(f.name, f.arg.Subs(name, value))
}

func (f *Func) Diff(name string) Expr {
	inner := f.arg.Diff(name)
	if isZero(inner) {
		return Int(0)
	}
	u := f.arg
	var outer Expr
	switch f.name {
	case "sin":
		outer = FuncOf("cos", u)
	case "cos":
		outer = Neg(FuncOf("sin", u))
	case "tan":
		outer = AddOf(PowOf(FuncOf("tan", u), Int(2)), Int(1))
	case "asin":
		outer = PowOf(Sub(Int(1), PowOf(u, Int(2))), Rat(-1, 2))
	case "acos":
		outer = Neg(PowOf(Sub(Int(1), PowOf(u, Int(2))), Rat(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(PowOf(u, Int(2)), Int(1)), Int(-1))
	case "sinh":
		outer = FuncOf("cosh", u)
	case "cosh":
		outer = FuncOf("sinh", u)
	case "tanh":
		outer = Sub(Int(1), PowOf(FuncOf("tanh", u), Int(2)))
	case "exp":
		outer = f
	case "log":
		outer = PowOf(u, Int(-1))
	case "abs":
		outer = Div(u, f)
	default:
		outer = Int(0)
	}
	return MulOf(outer, inner)
}

func (f *Func) Eval(env Env) (float64, error) {
	v, err := f.arg.Eval(env)
	if err != nil {
		return 0, err
	}
	fn, ok := elementary[f.name]
	if !ok {
		return 0, fmt.Errorf("unknown function %s", f.name)
	}
	return fn(v), nil
}

// AppliedFunc is an unknown function of one variable, such as y(x) in a
// differential equation.
type AppliedFunc struct {
	name string
	arg  Expr
}

// Apply returns the unknown function name applied to arg.
func Apply(name string, arg Expr) *AppliedFunc { return &AppliedFunc{name: name, arg: arg} }

func (a *AppliedFunc) Name() string   { return a.name }
func (a *AppliedFunc) Arg() Expr      { return a.arg }
func (a *AppliedFunc) args() []Expr   { return []Expr{a.arg} }
func (a *AppliedFunc) rank() int      { return rankApplied }
func (a *AppliedFunc) String() string { return a.name + "(" + a.arg.String() + ")" }
func (a *AppliedFunc) LaTeX() string  { return a.name + "(" + a.arg.LaTeX() + ")" }

func (a *AppliedFunc) Subs(name string, value Expr) Expr {
	return &AppliedFunc{name: a.name, arg: a.arg.Subs(name, value)}
}

func (a *AppliedFunc) Diff(name string) Expr {
	if !Has(a.arg, name) {
		return Int(0)
	}
	d := &Derivative{fn: a, order: 1}
	if s, ok := a.arg.(*Sym); ok && s.name == name {
		return d
	}
	return MulOf(d, a.arg.Diff(name))
}

func (a *AppliedFunc) Eval(Env) (float64, error) {
	return 0, fmt.Errorf("%w: %s", ErrUnbound, a.String())
}

// Derivative is the n-th derivative of an unknown function with respect to
// its argument.
type Derivative struct {
	fn    *AppliedFunc
	order int
}

func (d *Derivative) Func() *AppliedFunc { return d.fn }
func (d *Derivative) Order() int         { return d.order }
func (d *Derivative) args() []Expr       { return []Expr{d.fn} }
func (d *Derivative) rank() int          { return rankDerivative }

func (d *Derivative) String() string {
	if d.order == 1 {
		return fmt.Sprintf("Derivative(%s, %s)", d.fn, d.fn.arg)
	}
	return fmt.Sprintf("Derivative(%s, (%s, %d))", d.fn, d.fn.arg, d.order)
}

func (d *Derivative) LaTeX() string {
	arg := "(" + d.fn.arg.LaTeX() + ")"
	if d.order <= 3 {
		return d.fn.name + strings.Repeat("'", d.order) + arg
	}
	return fmt.Sprintf("%s^{(%d)}%s", d.fn.name, d.order, arg)
}

func (d *Derivative) Subs(string, Expr) Expr { return d }

func (d *Derivative) Diff(name string) Expr {
	if s, ok := d.fn.arg.(*Sym); ok && s.name == name {
		return &Derivative{fn: d.fn, order: d.order + 1}
	}
	return Int(0)
}

func (d *Derivative) Eval(Env) (float64, error) {
	return 0, fmt.Errorf("%w: %s", ErrUnbound, d.String())
}

package symbolic

import (
	"fmt"
	"math"
)

// Sym is a free variable.
type Sym struct{ name string }

// Symbol returns the variable called name.
func Symbol(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Name() string   { return s.name }
func (s *Sym) String() string { return s.name }
func (s *Sym) args() []Expr   { return nil }
func (s *Sym) rank() int      { return rankSym }

var greek = map[string]string{
	"alpha": `\alpha`, "beta": `\beta`, "gamma": `\gamma`, "delta": `\delta`,
	"epsilon": `\epsilon`, "theta": `\theta`, "lambda": `\lambda`, "mu": `\mu`,
	"nu": `\nu`, "omega": `\omega`, "phi": `\phi`, "psi": `\psi`, "rho": `\rho`,
	"sigma": `\sigma`, "tau": `\tau`, "xi": `\xi`, "zeta": `\zeta`, "eta": `\eta`,
	"kappa": `\kappa`, "chi": `\chi`,
}

func (s *Sym) LaTeX() string {
	if g, ok := greek[s.name]; ok {
		return g
	}
	// C1 prints as C_{1}
	i := len(s.name)
	for i > 0 && s.name[i-1] >= '0' && s.name[i-1] <= '9' {
		i--
	}
	if i > 0 && i < len(s.name) {
		return s.name[:i] + "_{" + s.name[i:] + "}"
	}
	return s.name
}

func (s *Sym) Subs(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}

func (s *Sym) Diff(name string) Expr {
	if s.name == name {
		return Int(1)
	}
	return Int(0)
}

func (s *Sym) Eval(env Env) (float64, error) {
	v, ok := env[s.name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnbound, s.name)
	}
	return v, nil
}

// Const is a named mathematical constant.
type Const struct {
	name  string
	latex string
	value float64
}

var (
	Pi = &Const{name: "pi", latex: `\pi`, value: math.Pi}
	E  = &Const{name: "E", latex: "e", value: math.E}
	I  = &Const{name: "I", latex: "i", value: math.NaN()}
)

func (c *Const) String() string         { return c.name }
func (c *Const) LaTeX() string          { return c.latex }
func (c *Const) Subs(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr       { return Int(0) }
func (c *Const) args() []Expr           { return nil }
func (c *Const) rank() int              { return rankConst }

func (c *Const) Eval(Env) (float64, error) {
	if c == I {
		return 0, ErrNotReal
	}
	return c.value, nil
}

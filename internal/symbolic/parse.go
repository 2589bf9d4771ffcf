package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokName
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// latexAliases maps LaTeX spellings users commonly paste into plain syntax.
var latexAliases = strings.NewReplacer(
	`\cdot`, "*",
	`\times`, "*",
	`\pi`, "pi",
	`\left`, "",
	`\right`, "",
	`\sin`, "sin",
	`\cos`, "cos",
	`\tan`, "tan",
	`\ln`, "ln",
	`\log`, "log",
	`\exp`, "exp",
	"$", "",
	"{", "(",
	"}", ")",
	"−", "-",
	"·", "*",
	"×", "*",
	"π", "pi",
)

func tokenize(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			seenDot := false
			for i < len(runes) && (unicode.IsDigit(runes[i]) || (runes[i] == '.' && !seenDot)) {
				if runes[i] == '.' {
					seenDot = true
				}
				i++
			}
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') && i+1 < len(runes) {
				j := i + 1
				if runes[j] == '+' || runes[j] == '-' {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					for j < len(runes) && unicode.IsDigit(runes[j]) {
						j++
					}
					i = j
				}
			}
			toks = append(toks, token{kind: tokNumber, text: string(runes[start:i]), pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokName, text: string(runes[start:i]), pos: start})
		case r == '*' && i+1 < len(runes) && runes[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "**", pos: i})
			i += 2
		case strings.ContainsRune("+-*/^'", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(' || r == '[':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')' || r == ']':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at %d", ErrParse, r, i)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(runes)})
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

func (p *parser) expect(kind tokenKind, what string) error {
	t := p.next()
	if t.kind != kind {
		return p.errorf(t, "expected %s", what)
	}
	return nil
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	found := t.text
	if t.kind == tokEOF {
		found = "end of input"
	}
	return fmt.Errorf("%w: %s, found %q at %d", ErrParse, fmt.Sprintf(format, args...), found, t.pos)
}

// Parse reads an expression written in the usual calculator syntax: + - * /,
// ** or ^ for powers, implicit multiplication (2x, 3(x+1), (a)(b)), the
// constants pi, E and I, the elementary functions and diff(f, x[, n]). Names
// not known as functions but followed by a parenthesis, such as y(x), denote
// unknown functions.
func Parse(src string) (Expr, error) {
	src = strings.TrimSpace(latexAliases.Replace(src))
	if src == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrParse)
	}
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected token")
	}
	return e, nil
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			right = Neg(right)
		}
		left = AddOf(left, right)
	}
	return left, nil
}

func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("*", "/"):
			op := p.next().text
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			if op == "/" {
				if isZero(right) {
					return nil, fmt.Errorf("%w: division by zero", ErrParse)
				}
				right = PowOf(right, Int(-1))
			}
			left = MulOf(left, right)
		case p.startsOperand():
			right, err := p.power()
			if err != nil {
				return nil, err
			}
			left = MulOf(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) startsOperand() bool {
	switch p.peek().kind {
	case tokNumber, tokName, tokLParen:
		return true
	}
	return false
}

func (p *parser) unary() (Expr, error) {
	if p.isOp("-") {
		p.next()
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	}
	if p.isOp("+") {
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if p.isOp("**", "^") {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		if isZero(base) && isNumber(exp) && numberSign(exp) < 0 {
			return nil, fmt.Errorf("%w: division by zero", ErrParse)
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

// postfix handles prime notation for unknown functions: y'(x), y''(x).
func (p *parser) postfix() (Expr, error) {
	t := p.peek()
	if t.kind == tokName && p.toks[p.pos+1].kind == tokOp && p.toks[p.pos+1].text == "'" {
		p.next()
		order := 0
		for p.isOp("'") {
			p.next()
			order++
		}
		arg := Expr(Symbol("x"))
		if p.peek().kind == tokLParen {
			p.next()
			a, err := p.expr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokRParen, "')'"); err != nil {
				return nil, err
			}
			arg = a
		}
		s, ok := arg.(*Sym)
		if !ok {
			return nil, fmt.Errorf("%w: derivative argument must be a variable", ErrParse)
		}
		return nthDerivative(Apply(t.text, s), s.name, order), nil
	}
	return p.primary()
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return parseNumber(t)
	case tokLParen:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case tokName:
		if p.peek().kind == tokLParen {
			return p.call(t)
		}
		return nameValue(t.text), nil
	}
	return nil, p.errorf(t, "expected a number, name or '('")
}

func nameValue(name string) Expr {
	switch name {
	case "pi", "Pi", "PI":
		return Pi
	case "E", "e":
		return E
	case "I", "j":
		return I
	}
	return Symbol(name)
}

func parseNumber(t token) (Expr, error) {
	r, ok := new(big.Rat).SetString(t.text)
	if !ok {
		return nil, fmt.Errorf("%w: bad number %q", ErrParse, t.text)
	}
	return NewNum(r), nil
}

func (p *parser) call(name token) (Expr, error) {
	p.next()
	var args []Expr
	if p.peek().kind != tokRParen {
		for {
			a, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}

	fn := strings.ToLower(name.text)
	switch {
	case fn == "diff" || fn == "derivative":
		return applyDiff(args)
	case fn == "log" && len(args) == 2:
		return Div(FuncOf("log", args[0]), FuncOf("log", args[1])), nil
	case fn == "sqrt" || fn == "ln" || IsFunction(fn):
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument, got %d", ErrParse, name.text, len(args))
		}
		return FuncOf(fn, args[0]), nil
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: unknown function %s", ErrParse, name.text)
	}
	if _, ok := args[0].(*Sym); !ok {
		return nil, fmt.Errorf("%w: unknown function %s", ErrParse, name.text)
	}
	return Apply(name.text, args[0]), nil
}

// applyDiff evaluates diff(f), diff(f, x), diff(f, x, n) and diff(f, x, x).
func applyDiff(args []Expr) (Expr, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: diff needs an expression", ErrParse)
	}
	f := args[0]
	var name string
	order := 1
	switch len(args) {
	case 1:
		free := FreeSymbols(f)
		if len(free) != 1 {
			return nil, fmt.Errorf("%w: diff needs a variable", ErrParse)
		}
		name = free[0]
	default:
		s, ok := args[1].(*Sym)
		if !ok {
			return nil, fmt.Errorf("%w: diff variable must be a name", ErrParse)
		}
		name = s.name
		for _, extra := range args[2:] {
			switch v := extra.(type) {
			case *Num:
				k, ok := v.Int64()
				if !ok || k < 0 {
					return nil, fmt.Errorf("%w: diff order must be a non-negative integer", ErrParse)
				}
				order += int(k) - 1
			case *Sym:
				if v.name != name {
					return nil, fmt.Errorf("%w: mixed partial derivatives are not supported", ErrParse)
				}
				order++
			default:
				return nil, fmt.Errorf("%w: bad diff argument %s", ErrParse, extra)
			}
		}
	}
	return nthDerivative(f, name, order), nil
}

func nthDerivative(f Expr, name string, order int) Expr {
	for i := 0; i < order; i++ {
		f = f.Diff(name)
	}
	return f
}

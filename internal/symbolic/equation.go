package symbolic

import (
	"fmt"
	"strings"
)

// Equation is LHS = RHS.
type Equation struct {
	LHS, RHS Expr
}

// ParseEquation reads "lhs = rhs", "lhs == rhs" or "Eq(lhs, rhs)". Input
// without an equals sign is read as "expr = 0".
func ParseEquation(src string) (*Equation, error) {
	s := strings.TrimSpace(src)
	if inner, ok := stripCall(s, "Eq"); ok {
		parts := splitTopLevel(inner, ',')
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: Eq takes two arguments", ErrParse)
		}
		return parseSides(parts[0], parts[1])
	}

	s = strings.ReplaceAll(s, "==", "=")
	parts := strings.Split(s, "=")
	switch len(parts) {
	case 1:
		return parseSides(parts[0], "0")
	case 2:
		return parseSides(parts[0], parts[1])
	}
	return nil, fmt.Errorf("%w: more than one '=' in equation", ErrParse)
}

func parseSides(lhs, rhs string) (*Equation, error) {
	l, err := Parse(lhs)
	if err != nil {
		return nil, fmt.Errorf("left side: %w", err)
	}
	r, err := Parse(rhs)
	if err != nil {
		return nil, fmt.Errorf("right side: %w", err)
	}
	return &Equation{LHS: l, RHS: r}, nil
}

func stripCall(s, name string) (string, bool) {
	if !strings.HasPrefix(s, name+"(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	inner := s[len(name)+1 : len(s)-1]
	depth := 0
	for _, r := range inner {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "", false
			}
		}
	}
	return inner, depth == 0
}

func splitTopLevel(s string, sep rune) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// Expr returns LHS - RHS.
func (e *Equation) Expr() Expr { return Sub(e.LHS, e.RHS) }

func (e *Equation) String() string { return e.LHS.String() + " = " + e.RHS.String() }
func (e *Equation) LaTeX() string  { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

// IsDifferential reports whether the equation involves derivatives of an
// unknown function.
func (e *Equation) IsDifferential() bool {
	found := false
	for _, side := range []Expr{e.LHS, e.RHS} {
		Walk(side, func(n Expr) bool {
			if _, ok := n.(*Derivative); ok {
				found = true
			}
			return !found
		})
	}
	return found
}

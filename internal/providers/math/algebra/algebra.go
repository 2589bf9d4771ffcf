package algebra

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/latexbot/internal/providers/math/common"
	"github.com/GriffinCanCode/latexbot/internal/symbolic"
	"github.com/GriffinCanCode/latexbot/internal/types"
)

// symbolic operations accepted by math.symbolic
var operations = []string{"simplify", "expand", "factor", "diff", "integrate"}

// AlgebraOps handles equation solving and expression manipulation
type AlgebraOps struct {
	*common.MathOps
}

// GetTools returns algebra tool definitions
func (a *AlgebraOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "math.solve",
			Name:        "solve",
			Description: "Solve an equation, or a differential equation written with diff",
			Category:    types.CategoryAlgebra,
			Parameters: []types.Parameter{
				{Name: "equation", Type: types.TypeString, Description: "Equation such as x**2 - 4 = 0", Required: true},
				{Name: "variable", Type: types.TypeString, Description: "Unknown to solve for; x or the only symbol when omitted"},
			},
			Returns: "image",
		},
		{
			ID:          "math.symbolic",
			Name:        "symbolic",
			Description: "Simplify, expand, factor, differentiate or integrate an expression",
			Category:    types.CategoryAlgebra,
			Parameters: []types.Parameter{
				{Name: "expression", Type: types.TypeString, Description: "Expression such as sin(x)**2 + cos(x)**2", Required: true},
				{Name: "operation", Type: types.TypeString, Description: "Operation to apply", Default: "simplify", Choices: operations},
			},
			Returns: "image",
		},
	}
}

// Solve finds the roots of an equation, or the general solution of a
// differential equation, and renders them as "Solution: ...".
func (a *AlgebraOps) Solve(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	input, err := common.RequireString(params, "equation")
	if err != nil {
		return common.Error(err)
	}
	eq, err := symbolic.ParseEquation(input)
	if err != nil {
		return common.Error(err)
	}

	if eq.IsDifferential() {
		return a.dsolve(ctx, eq)
	}

	variable, _ := common.GetString(params, "variable")
	sol, err := symbolic.Solve(eq, variable)
	if err != nil {
		return common.Error(err)
	}

	roots := make([]string, len(sol.Roots))
	for i, r := range sol.Roots {
		roots[i] = r.String()
	}
	text := "Solution: " + sol.String()
	switch {
	case sol.RealOnly:
		text += " (numeric, real roots only)"
	case sol.Approx:
		text += " (numeric)"
	}
	img := a.RenderFormula(ctx, "Solution: $"+sol.LaTeX()+"$")
	return common.Reply(text, map[string]interface{}{
		"variable":    sol.Var,
		"solutions":   roots,
		"approximate": sol.Approx,
		"real_only":   sol.RealOnly,
		"latex":       sol.LaTeX(),
	}, img)
}

func (a *AlgebraOps) dsolve(ctx context.Context, eq *symbolic.Equation) (*types.Result, error) {
	sol, err := symbolic.DSolve(eq)
	if err != nil {
		return common.Error(err)
	}
	img := a.RenderFormula(ctx, "Solution: $"+sol.LaTeX()+"$")
	return common.Reply("Solution: "+sol.String(), map[string]interface{}{
		"solution": sol.String(),
		"latex":    sol.LaTeX(),
	}, img)
}

// Symbolic applies one algebraic operation to an expression.
func (a *AlgebraOps) Symbolic(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	input, err := common.RequireString(params, "expression")
	if err != nil {
		return common.Error(err)
	}
	op, err := common.Choice(params, "operation", "simplify", operations...)
	if err != nil {
		return common.Error(err)
	}
	e, err := symbolic.Parse(input)
	if err != nil {
		return common.Error(err)
	}

	data := map[string]interface{}{"operation": op}
	var out symbolic.Expr
	switch op {
	case "simplify":
		out = symbolic.Simplify(e)
	case "expand":
		if out, err = symbolic.ExpandStrict(e); err != nil {
			return common.Error(err)
		}
	case "factor":
		out = symbolic.Factor(e)
	case "diff", "integrate":
		x, err := common.ChooseVariable(e, "x", "x")
		if err != nil {
			return common.Error(err)
		}
		data["variable"] = x
		if op == "diff" {
			out = symbolic.Simplify(e.Diff(x))
		} else if out, err = symbolic.Integrate(e, x); err != nil {
			return common.Error(fmt.Errorf("cannot integrate %s: %w", e, err))
		}
	}

	data["result"] = out.String()
	data["latex"] = out.LaTeX()
	img := a.RenderFormula(ctx, out.LaTeX())
	return common.Reply(common.DisplayMath(out.LaTeX()), data, img)
}

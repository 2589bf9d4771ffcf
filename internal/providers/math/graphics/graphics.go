package graphics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/latexbot/internal/providers/math/common"
	"github.com/GriffinCanCode/latexbot/internal/render"
	"github.com/GriffinCanCode/latexbot/internal/symbolic"
	"github.com/GriffinCanCode/latexbot/internal/types"
)

const (
	defaultXMin = -10.0
	defaultXMax = 10.0
)

var errNoRenderer = errors.New("image rendering is not available")

// GraphicsOps turns formulas and functions into images
type GraphicsOps struct {
	*common.MathOps
}

// GetTools returns graphics tool definitions
func (g *GraphicsOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "math.latex",
			Name:        "latex",
			Description: "Render LaTeX to a transparent image; \\\\ or a newline starts a new line",
			Category:    types.CategoryGraphics,
			Parameters: []types.Parameter{
				{Name: "formula", Type: types.TypeString, Description: "LaTeX formula or text with $math$", Required: true},
				{Name: "bg_color", Type: types.TypeString, Description: "Background color", Default: "none"},
				{Name: "font_color", Type: types.TypeString, Description: "Font color", Default: "white"},
			},
			Returns: "image",
		},
		{
			ID:          "math.plot",
			Name:        "plot",
			Description: "Plot a function of one variable",
			Category:    types.CategoryGraphics,
			Parameters: []types.Parameter{
				{Name: "equation", Type: types.TypeString, Description: "Function such as y = sin(x)/x", Required: true},
				{Name: "x_min", Type: types.TypeNumber, Description: "Left end of the x range", Default: defaultXMin},
				{Name: "x_max", Type: types.TypeNumber, Description: "Right end of the x range", Default: defaultXMax},
			},
			Returns: "image",
		},
	}
}

// Latex renders a formula with the requested colors.
func (g *GraphicsOps) Latex(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if g.Renderer == nil {
		return common.Error(errNoRenderer)
	}
	formula, err := common.RequireString(params, "formula")
	if err != nil {
		return common.Error(err)
	}

	img, err := g.Renderer.Render(ctx, render.Request{
		Text:       formula,
		Background: common.GetStringOr(params, "bg_color", ""),
		Foreground: common.GetStringOr(params, "font_color", ""),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return common.Error(err)
	}
	return common.Reply("", map[string]interface{}{
		"width":  img.Width,
		"height": img.Height,
		"lines":  len(render.SplitLines(formula)),
	}, img)
}

// Plot draws y = f(x) over [x_min, x_max].
func (g *GraphicsOps) Plot(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if g.Renderer == nil {
		return common.Error(errNoRenderer)
	}
	input, err := common.RequireString(params, "equation")
	if err != nil {
		return common.Error(err)
	}
	xMin, err := common.GetNumberOr(params, "x_min", defaultXMin)
	if err != nil {
		return common.Error(err)
	}
	xMax, err := common.GetNumberOr(params, "x_max", defaultXMax)
	if err != nil {
		return common.Error(err)
	}
	if xMin >= xMax {
		return common.Failuref("Error: x_min (%g) must be less than x_max (%g)", xMin, xMax)
	}

	fn, err := ParseFunction(input)
	if err != nil {
		return common.Error(err)
	}

	img, err := g.Renderer.Plot(ctx, render.PlotRequest{
		Title:  "$" + fn.LaTeX() + "$",
		XLabel: fn.Var,
		YLabel: fn.Name,
		F:      symbolic.Compile(fn.Body, fn.Var),
		XMin:   xMin,
		XMax:   xMax,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return common.Error(err)
	}
	return common.Reply("", map[string]interface{}{
		"function": fn.String(),
		"variable": fn.Var,
		"x_min":    xMin,
		"x_max":    xMax,
	}, img)
}

// Function is a plottable function of one variable.
type Function struct {
	Name string // y, or f(x) for a named function
	Var  string
	Body symbolic.Expr
}

func (f *Function) String() string { return f.Name + " = " + f.Body.String() }

// LaTeX returns the function as a mathtext equation.
func (f *Function) LaTeX() string { return f.Name + " = " + f.Body.LaTeX() }

// ParseFunction accepts "y = expr", "f(t) = expr" or a bare expression.
func ParseFunction(input string) (*Function, error) {
	fn := &Function{Name: "y"}
	preferred := "x"

	if strings.Contains(input, "=") {
		eq, err := symbolic.ParseEquation(input)
		if err != nil {
			return nil, err
		}
		switch lhs := eq.LHS.(type) {
		case *symbolic.Sym:
			fn.Name = lhs.Name()
			if symbolic.Has(eq.RHS, fn.Name) {
				return nil, fmt.Errorf("%s appears on both sides", fn.Name)
			}
		case *symbolic.AppliedFunc:
			arg, ok := lhs.Arg().(*symbolic.Sym)
			if !ok {
				return nil, fmt.Errorf("left side %s must be a name or f(x)", eq.LHS)
			}
			fn.Name = lhs.Name() + "(" + arg.Name() + ")"
			preferred = arg.Name()
		default:
			return nil, fmt.Errorf("left side %s must be a name or f(x)", eq.LHS)
		}
		fn.Body = eq.RHS
	} else {
		body, err := symbolic.Parse(input)
		if err != nil {
			return nil, err
		}
		fn.Body = body
	}

	x, err := common.ChooseVariable(fn.Body, preferred, preferred)
	if err != nil {
		return nil, err
	}
	for _, s := range symbolic.FreeSymbols(fn.Body) {
		if s != x {
			return nil, fmt.Errorf("%w: %s depends on %s as well as %s", symbolic.ErrUnbound, fn.Name, s, x)
		}
	}
	fn.Var = x
	return fn, nil
}

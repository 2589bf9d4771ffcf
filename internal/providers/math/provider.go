package math

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/latexbot/internal/providers/math/algebra"
	"github.com/GriffinCanCode/latexbot/internal/providers/math/common"
	"github.com/GriffinCanCode/latexbot/internal/providers/math/graphics"
	"github.com/GriffinCanCode/latexbot/internal/providers/math/linalg"
	"github.com/GriffinCanCode/latexbot/internal/providers/math/transforms"
	"github.com/GriffinCanCode/latexbot/internal/render"
	"github.com/GriffinCanCode/latexbot/internal/types"
)

// Provider implements the bot's math commands
type Provider struct {
	// Module instances
	graphics   *graphics.GraphicsOps
	algebra    *algebra.AlgebraOps
	linalg     *linalg.LinalgOps
	transforms *transforms.TransformOps
}

// NewProvider creates a modular math provider. A nil renderer gives a
// text-only provider whose latex and plot tools fail.
func NewProvider(renderer *render.Renderer, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	ops := &common.MathOps{Renderer: renderer, Logger: logger.Named("math")}

	return &Provider{
		graphics:   &graphics.GraphicsOps{MathOps: ops},
		algebra:    &algebra.AlgebraOps{MathOps: ops},
		linalg:     &linalg.LinalgOps{MathOps: ops},
		transforms: &transforms.TransformOps{MathOps: ops},
	}
}

// Definition returns service metadata with all module tools
func (m *Provider) Definition() types.Service {
	// Collect tools from all modules
	tools := []types.Tool{}
	tools = append(tools, m.graphics.GetTools()...)
	tools = append(tools, m.algebra.GetTools()...)
	tools = append(tools, m.linalg.GetTools()...)
	tools = append(tools, m.transforms.GetTools()...)

	return types.Service{
		ID:          "math",
		Name:        "Math Service",
		Description: "LaTeX rendering, plotting, equation solving, symbolic algebra, matrices and integral transforms",
		Category:    types.CategoryMath,
		Capabilities: []string{
			"latex",
			"plotting",
			"solving",
			"symbolic",
			"linear-algebra",
			"transforms",
		},
		Tools: tools,
	}
}

// Execute routes to appropriate module
func (m *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	// Graphics
	case "math.latex":
		return m.graphics.Latex(ctx, params, appCtx)
	case "math.plot":
		return m.graphics.Plot(ctx, params, appCtx)

	// Algebra
	case "math.solve":
		return m.algebra.Solve(ctx, params, appCtx)
	case "math.symbolic":
		return m.algebra.Symbolic(ctx, params, appCtx)

	// Linear algebra
	case "math.matrix":
		return m.linalg.Matrix(ctx, params, appCtx)

	// Transforms
	case "math.fourier":
		return m.transforms.Fourier(ctx, params, appCtx)
	case "math.laplace":
		return m.transforms.Laplace(ctx, params, appCtx)

	default:
		return common.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

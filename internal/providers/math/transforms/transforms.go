package transforms

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/latexbot/internal/providers/math/common"
	"github.com/GriffinCanCode/latexbot/internal/render"
	"github.com/GriffinCanCode/latexbot/internal/symbolic"
	"github.com/GriffinCanCode/latexbot/internal/transform"
	"github.com/GriffinCanCode/latexbot/internal/types"
)

// Sampling window for numeric spectra: [-spectrumHalfWidth, spectrumHalfWidth)
// at spectrumSamples points.
const (
	spectrumHalfWidth = 10.0
	spectrumSamples   = 1024

	// spectrum points below this fraction of the peak are cut from the chart
	spectrumFloor = 1e-3
	// fewest points kept on the chart
	spectrumMinPoints = 16
)

var (
	fourierTypes = []string{"forward", "inverse", "spectrum"}
	laplaceTypes = []string{"forward", "inverse"}
)

// TransformOps handles Fourier and Laplace transforms
type TransformOps struct {
	*common.MathOps
}

// GetTools returns transform tool definitions
func (t *TransformOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "math.fourier",
			Name:        "fourier",
			Description: "Fourier transform F(k) = ∫ f(x) exp(-2πikx) dx, its inverse, or a sampled spectrum",
			Category:    types.CategoryTransforms,
			Parameters: []types.Parameter{
				{Name: "function", Type: types.TypeString, Description: "Function such as exp(-x**2)", Required: true},
				{Name: "transform_type", Type: types.TypeString, Description: "Direction", Default: "forward", Choices: fourierTypes},
			},
			Returns: "image",
		},
		{
			ID:          "math.laplace",
			Name:        "laplace",
			Description: "One-sided Laplace transform in s, or its inverse in t",
			Category:    types.CategoryTransforms,
			Parameters: []types.Parameter{
				{Name: "function", Type: types.TypeString, Description: "Function such as t*exp(-t)", Required: true},
				{Name: "transform_type", Type: types.TypeString, Description: "Direction", Default: "forward", Choices: laplaceTypes},
			},
			Returns: "image",
		},
	}
}

// pair names the variables and result label of one transform direction
type pair struct {
	from, to string
	label    string // F or f
	apply    func(e symbolic.Expr, from, to string) (symbolic.Expr, error)
}

// Fourier transforms a function of x into k, back, or samples its spectrum.
func (t *TransformOps) Fourier(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	e, kind, err := parseInput(params, fourierTypes)
	if err != nil {
		return common.Error(err)
	}
	switch kind {
	case "inverse":
		return t.closedForm(ctx, e, kind, pair{from: "k", to: "x", label: "f", apply: transform.InverseFourier})
	case "spectrum":
		return t.spectrum(ctx, e)
	default:
		return t.closedForm(ctx, e, kind, pair{from: "x", to: "k", label: "F", apply: transform.Fourier})
	}
}

// Laplace transforms a function of t into s, or back.
func (t *TransformOps) Laplace(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	e, kind, err := parseInput(params, laplaceTypes)
	if err != nil {
		return common.Error(err)
	}
	if kind == "inverse" {
		return t.closedForm(ctx, e, kind, pair{from: "s", to: "t", label: "f", apply: transform.InverseLaplace})
	}
	return t.closedForm(ctx, e, kind, pair{from: "t", to: "s", label: "F", apply: transform.Laplace})
}

func parseInput(params map[string]interface{}, kinds []string) (symbolic.Expr, string, error) {
	input, err := common.RequireString(params, "function")
	if err != nil {
		return nil, "", err
	}
	kind, err := common.Choice(params, "transform_type", "forward", kinds...)
	if err != nil {
		return nil, "", err
	}
	e, err := symbolic.Parse(input)
	if err != nil {
		return nil, "", err
	}
	return e, kind, nil
}

func (t *TransformOps) closedForm(ctx context.Context, e symbolic.Expr, kind string, p pair) (*types.Result, error) {
	from, err := common.ChooseVariable(e, p.from, p.from)
	if err != nil {
		return common.Error(err)
	}
	to := p.to
	if from == to {
		to = p.from
	}

	out, err := p.apply(e, from, to)
	if err != nil {
		return common.Error(err)
	}

	lhs := fmt.Sprintf("%s(%s)", p.label, to)
	latex := lhs + " = " + out.LaTeX()
	img := t.RenderFormula(ctx, latex)
	return common.Reply(common.DisplayMath(latex), map[string]interface{}{
		"transform_type": kind,
		"variable":       from,
		"result":         lhs + " = " + out.String(),
		"latex":          latex,
	}, img)
}

func (t *TransformOps) spectrum(ctx context.Context, e symbolic.Expr) (*types.Result, error) {
	x, err := common.ChooseVariable(e, "x", "x")
	if err != nil {
		return common.Error(err)
	}
	spec, err := transform.Sampled(symbolic.Compile(e, x), spectrumHalfWidth, spectrumSamples)
	if err != nil {
		return common.Error(err)
	}
	freq, peak := spec.Peak()
	if peak == 0 {
		return common.Failuref("Error: %s has no spectrum on [-%g, %g]", e, spectrumHalfWidth, spectrumHalfWidth)
	}

	n := TrimSpectrum(spec.Magnitude, peak*spectrumFloor)
	text := fmt.Sprintf("Peak |F(k)| = %.6g at k = %.6g", peak, freq)
	data := map[string]interface{}{
		"transform_type": "spectrum",
		"variable":       x,
		"peak_frequency": freq,
		"peak_magnitude": peak,
	}

	if t.Renderer == nil {
		return common.Reply(text, data)
	}
	img, err := t.Renderer.Spectrum(ctx, render.SpectrumRequest{
		Title:     "$f(" + x + ") = " + e.LaTeX() + "$",
		Freq:      spec.Freq[:n],
		Magnitude: spec.Magnitude[:n],
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		t.Log().Debug("spectrum image skipped", zap.Error(err))
	}
	return common.Reply(text, data, img)
}

// TrimSpectrum returns how many leading points to keep: everything up to the
// last magnitude above floor, and at least spectrumMinPoints.
func TrimSpectrum(mag []float64, floor float64) int {
	last := 0
	for i, m := range mag {
		if m > floor {
			last = i
		}
	}
	return min(len(mag), max(last+1, spectrumMinPoints))
}

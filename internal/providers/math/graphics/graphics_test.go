package graphics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/latexbot/internal/providers/math/common"
	"github.com/GriffinCanCode/latexbot/internal/render"
)

func newOps() *GraphicsOps {
	return &GraphicsOps{MathOps: &common.MathOps{
		Renderer: render.NewRenderer(render.Options{DPI: 72}, zap.NewNop()),
		Logger:   zap.NewNop(),
	}}
}

func TestLatex(t *testing.T) {
	result, err := newOps().Latex(context.Background(), map[string]interface{}{
		"formula":    `E = mc^2 \\ a^2 + b^2 = c^2`,
		"bg_color":   "black",
		"font_color": "#ff8800",
	}, nil)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message())
	require.Len(t, result.Attachments, 1)
	assert.Equal(t, "image/png", result.Attachments[0].ContentType)
	assert.Equal(t, 2, result.Data["lines"])
	assert.Greater(t, result.Data["width"], 0)
	assert.Greater(t, result.Data["height"], 0)
}

func TestLatexFailures(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]interface{}
	}{
		{"missing formula", map[string]interface{}{}},
		{"blank formula", map[string]interface{}{"formula": "  \n "}},
		{"bad color", map[string]interface{}{"formula": "x", "font_color": "not-a-color"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newOps().Latex(context.Background(), tt.params, nil)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Contains(t, result.Message(), "Error: ")
			assert.Empty(t, result.Attachments)
		})
	}
}

func TestLatexWithoutRenderer(t *testing.T) {
	ops := &GraphicsOps{MathOps: &common.MathOps{}}
	result, err := ops.Latex(context.Background(), map[string]interface{}{"formula": "x"}, nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestPlot(t *testing.T) {
	result, err := newOps().Plot(context.Background(), map[string]interface{}{
		"equation": "y = sin(x)/x",
		"x_min":    "-5",
		"x_max":    5,
	}, nil)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message())
	require.Len(t, result.Attachments, 1)
	assert.Equal(t, "plot.png", result.Attachments[0].Name)
	assert.Equal(t, "x", result.Data["variable"])
	assert.Equal(t, -5.0, result.Data["x_min"])
}

func TestPlotFailures(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]interface{}
		contains string
	}{
		{"missing", map[string]interface{}{}, "equation is required"},
		{"reversed range", map[string]interface{}{"equation": "x", "x_min": 3, "x_max": 1}, "x_min"},
		{"bad bound", map[string]interface{}{"equation": "x", "x_min": "left"}, "x_min must be a number"},
		{"malformed", map[string]interface{}{"equation": "y = (x"}, "parse error"},
		{"nowhere finite", map[string]interface{}{"equation": "log(-1 - x**2)"}, "no finite values"},
		{"extra symbol", map[string]interface{}{"equation": "a*x"}, "depends on a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newOps().Plot(context.Background(), tt.params, nil)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Contains(t, result.Message(), tt.contains)
		})
	}
}

func TestParseFunction(t *testing.T) {
	tests := []struct {
		input    string
		name     string
		variable string
		str      string
	}{
		{"x**2", "y", "x", "y = x**2"},
		{"y = 2*x + 1", "y", "x", "y = 2*x + 1"},
		{"f(t) = t**2", "f(t)", "t", "f(t) = t**2"},
		{"v = exp(-u)", "v", "u", "v = exp(-u)"},
		{"3", "y", "x", "y = 3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			fn, err := ParseFunction(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.name, fn.Name)
			assert.Equal(t, tt.variable, fn.Var)
			assert.Equal(t, tt.str, fn.String())
		})
	}
}

func TestParseFunctionRejects(t *testing.T) {
	for _, input := range []string{"y = x*y", "x + 1 = 2", "y = a*x + b*x"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseFunction(input)
			assert.Error(t, err)
		})
	}
}

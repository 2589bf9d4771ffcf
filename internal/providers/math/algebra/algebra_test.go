package algebra

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/latexbot/internal/providers/math/common"
	"github.com/GriffinCanCode/latexbot/internal/render"
	"github.com/GriffinCanCode/latexbot/internal/symbolic"
)

func textOnly() *AlgebraOps {
	return &AlgebraOps{MathOps: &common.MathOps{}}
}

func TestSolve(t *testing.T) {
	tests := []struct {
		name      string
		params    map[string]interface{}
		solutions []string
		text      string
	}{
		{
			name:      "quadratic",
			params:    map[string]interface{}{"equation": "x**2 - 4 = 0"},
			solutions: []string{"-2", "2"},
			text:      "Solution: [-2, 2]",
		},
		{
			name:      "implicit zero",
			params:    map[string]interface{}{"equation": "2*x + 3 - 7"},
			solutions: []string{"2"},
			text:      "Solution: [2]",
		},
		{
			name:      "explicit variable",
			params:    map[string]interface{}{"equation": "a*x + b = 0", "variable": "x"},
			solutions: []string{"-b/a"},
			text:      "Solution: [-b/a]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := textOnly().Solve(context.Background(), tt.params, nil)
			require.NoError(t, err)
			require.True(t, result.Success, result.Message())
			assert.Equal(t, tt.solutions, result.Data["solutions"])
			assert.Equal(t, tt.text, result.Text)
		})
	}
}

func TestSolveDifferential(t *testing.T) {
	result, err := textOnly().Solve(context.Background(), map[string]interface{}{"equation": "diff(y(x), x) - y(x) = 0"}, nil)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message())
	assert.Equal(t, "Solution: y(x) = C1*exp(x)", result.Text)
}

func TestSolveFailures(t *testing.T) {
	tests := []struct {
		name     string
		equation interface{}
		contains string
	}{
		{"missing", nil, "equation is required"},
		{"blank", "   ", "equation is required"},
		{"malformed", "x**2 - = 4", "parse error"},
		{"two equals", "x = 1 = 2", "more than one"},
		{"identity", "x = x", "every value"},
		{"ambiguous", "a + b = 1", "cannot choose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := map[string]interface{}{}
			if tt.equation != nil {
				params["equation"] = tt.equation
			}
			result, err := textOnly().Solve(context.Background(), params, nil)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Contains(t, result.Message(), "Error: ")
			assert.Contains(t, result.Message(), tt.contains)
		})
	}
}

func withRenderer() *AlgebraOps {
	return &AlgebraOps{MathOps: &common.MathOps{
		Renderer: render.NewRenderer(render.Options{DPI: 72}, zap.NewNop()),
	}}
}

func TestSolveRendersImage(t *testing.T) {
	for _, equation := range []string{
		"x**2 - 4 = 0",
		"x**2 + 1 = 0",
		"sin(x) = 0.5",
		"x**5 - x - 1 = 0",
		"diff(y(x), x) - y(x) = 0",
		"y'' + 2*y' + 5*y = 0",
	} {
		t.Run(equation, func(t *testing.T) {
			result, err := withRenderer().Solve(context.Background(), map[string]interface{}{"equation": equation}, nil)
			require.NoError(t, err)
			require.True(t, result.Success, result.Message())
			require.Len(t, result.Attachments, 1)
			assert.Equal(t, "image/png", result.Attachments[0].ContentType)
			assert.NotEmpty(t, result.Attachments[0].Data)
		})
	}
}

func TestSolveStandardAngles(t *testing.T) {
	result, err := textOnly().Solve(context.Background(), map[string]interface{}{"equation": "sin(x) = 0.5"}, nil)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message())
	assert.NotContains(t, result.Text, "asin")
	assert.Contains(t, result.Text, "pi/6")
	assert.NotContains(t, result.Text, "numeric")
}

func TestSolveRealRootsOnly(t *testing.T) {
	result, err := textOnly().Solve(context.Background(), map[string]interface{}{"equation": "x**200 - 3 = 0"}, nil)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message())
	assert.Contains(t, result.Text, "(numeric, real roots only)")
	assert.Equal(t, true, result.Data["real_only"])
	assert.Len(t, result.Data["solutions"], 2)

	result, err = textOnly().Solve(context.Background(), map[string]interface{}{"equation": "x**5 - x - 1 = 0"}, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.Text, " (numeric)"), result.Text)
	assert.Len(t, result.Data["solutions"], 5)
}

func TestSymbolicRendersImage(t *testing.T) {
	tests := []struct {
		expression string
		operation  string
	}{
		{"(x + 1)**3", "expand"},
		{"x**2*exp(-x)", "diff"},
		{"x**2*sin(x)", "integrate"},
		{"1/(x**2 + 1)", "simplify"},
	}
	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			result, err := withRenderer().Symbolic(context.Background(), map[string]interface{}{
				"expression": tt.expression,
				"operation":  tt.operation,
			}, nil)
			require.NoError(t, err)
			require.True(t, result.Success, result.Message())
			require.Len(t, result.Attachments, 1)
			assert.Equal(t, "image/png", result.Attachments[0].ContentType)
		})
	}
}

func TestSymbolic(t *testing.T) {
	tests := []struct {
		expression string
		operation  string
		expected   string
	}{
		{"sin(x)**2 + cos(x)**2", "", "1"},
		{"(x + 1)**2", "expand", "x**2 + 2*x + 1"},
		{"x**2 - 4", "factor", "(x + 2)*(x - 2)"},
		{"x**3", "diff", "3*x**2"},
		{"t**3", "DIFF", "3*t**2"},
	}

	for _, tt := range tests {
		t.Run(tt.expression+" "+tt.operation, func(t *testing.T) {
			params := map[string]interface{}{"expression": tt.expression}
			if tt.operation != "" {
				params["operation"] = tt.operation
			}
			result, err := textOnly().Symbolic(context.Background(), params, nil)
			require.NoError(t, err)
			require.True(t, result.Success, result.Message())
			assert.Equal(t, tt.expected, result.Data["result"])
			assert.Equal(t, "$$"+result.Data["latex"].(string)+"$$", result.Text)
		})
	}
}

func TestSymbolicIntegrate(t *testing.T) {
	result, err := textOnly().Symbolic(context.Background(), map[string]interface{}{
		"expression": "x**2*sin(x)",
		"operation":  "integrate",
	}, nil)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message())
	assert.Equal(t, "x", result.Data["variable"])

	anti, err := symbolic.Parse(result.Data["result"].(string))
	require.NoError(t, err)
	df := symbolic.Compile(anti.Diff("x"), "x")
	for _, x := range []float64{-1, 0.5, 2} {
		assert.InDelta(t, x*x*math.Sin(x), df(x), 1e-9)
	}
}

func TestSymbolicFailures(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]interface{}
	}{
		{"missing expression", map[string]interface{}{}},
		{"bad operation", map[string]interface{}{"expression": "x", "operation": "limit"}},
		{"parse error", map[string]interface{}{"expression": "sin(", "operation": "expand"}},
		{"ambiguous variable", map[string]interface{}{"expression": "a*b", "operation": "diff"}},
		{"no antiderivative", map[string]interface{}{"expression": "exp(x**2)", "operation": "integrate"}},
		{"expansion too large", map[string]interface{}{"expression": "(x + 1)**100", "operation": "expand"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := textOnly().Symbolic(context.Background(), tt.params, nil)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Contains(t, result.Message(), "Error: ")
		})
	}
}

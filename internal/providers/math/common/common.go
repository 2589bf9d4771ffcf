package common

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/latexbot/internal/render"
	"github.com/GriffinCanCode/latexbot/internal/symbolic"
	"github.com/GriffinCanCode/latexbot/internal/types"
)

// MathOps carries what every tool module needs
type MathOps struct {
	Renderer *render.Renderer
	Logger   *zap.Logger
}

// Success creates a successful result with data only
func Success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

// Reply creates a successful result with a message and optional images
func Reply(text string, data map[string]interface{}, images ...*render.Image) (*types.Result, error) {
	result := &types.Result{Success: true, Text: text, Data: data}
	for _, img := range images {
		if img != nil {
			result.Attachments = append(result.Attachments, Attach(img))
		}
	}
	return result, nil
}

// Failure creates a failed result
func Failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}

// Failuref creates a failed result from a format string
func Failuref(format string, args ...interface{}) (*types.Result, error) {
	return Failure(fmt.Sprintf(format, args...))
}

// Error reports err to the user the way every command does
func Error(err error) (*types.Result, error) {
	return Failure("Error: " + err.Error())
}

// Attach converts a rendered image into a result attachment
func Attach(img *render.Image) types.Attachment {
	return types.Attachment{Name: img.Name, ContentType: img.ContentType, Data: img.Data}
}

// GetNumber extracts a float64 from params. Numeric strings are accepted
// so that form and query input work too.
func GetNumber(params map[string]interface{}, key string) (float64, bool) {
	val, ok := params[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// GetNumberOr returns the number under key, def when it is absent, or an
// error when it is present but not a number.
func GetNumberOr(params map[string]interface{}, key string, def float64) (float64, error) {
	if _, ok := params[key]; !ok {
		return def, nil
	}
	v, ok := GetNumber(params, key)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

// GetString extracts a trimmed string from params
func GetString(params map[string]interface{}, key string) (string, bool) {
	val, ok := params[key].(string)
	return strings.TrimSpace(val), ok
}

// GetStringOr returns the string under key or def when it is absent or blank
func GetStringOr(params map[string]interface{}, key, def string) string {
	if v, ok := GetString(params, key); ok && v != "" {
		return v
	}
	return def
}

// RequireString returns the non-blank string under key
func RequireString(params map[string]interface{}, key string) (string, error) {
	v, _ := GetString(params, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// Choice returns the lower-cased value under key, def when absent, or an
// error when it is not one of allowed.
func Choice(params map[string]interface{}, key, def string, allowed ...string) (string, error) {
	v := strings.ToLower(GetStringOr(params, key, def))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown %s %q, expected one of %s", key, v, strings.Join(allowed, ", "))
}

// ChooseVariable picks the variable an expression is a function of:
// preferred when present, otherwise the only free symbol, otherwise
// fallback for constants.
func ChooseVariable(e symbolic.Expr, preferred, fallback string) (string, error) {
	if symbolic.Has(e, preferred) {
		return preferred, nil
	}
	free := symbolic.FreeSymbols(e)
	switch len(free) {
	case 0:
		return fallback, nil
	case 1:
		return free[0], nil
	}
	return "", fmt.Errorf("%w among %s", symbolic.ErrAmbiguousSymbol, strings.Join(free, ", "))
}

// RenderFormula draws a LaTeX line with the renderer defaults. Rendering
// problems are logged and yield no image, so callers can fall back to text.
func (m *MathOps) RenderFormula(ctx context.Context, text string) *render.Image {
	if m.Renderer == nil {
		return nil
	}
	img, err := m.Renderer.Render(ctx, render.Request{Text: text})
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			m.Log().Debug("formula image skipped", zap.String("text", text), zap.Error(err))
		}
		return nil
	}
	return img
}

// Log returns the module logger, or a no-op logger when none is set
func (m *MathOps) Log() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

// DisplayMath wraps LaTeX for a chat message
func DisplayMath(latex string) string {
	return "$$" + latex + "$$"
}

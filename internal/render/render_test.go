package render

import (
	"bytes"
	"context"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/plot/plotter"
)

func newTestRenderer() *Renderer {
	return NewRenderer(Options{DPI: 100}, zap.NewNop())
}

func TestRenderProducesTransparentPNG(t *testing.T) {
	r := newTestRenderer()
	img, err := r.Render(context.Background(), Request{Text: `x^2 + y^2 = 1`})
	require.NoError(t, err)

	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "latex.png", img.Name)
	assert.GreaterOrEqual(t, img.Width, int(DefaultMinWidth*100))
	assert.Greater(t, img.Height, 0)

	decoded, err := png.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, img.Width, decoded.Bounds().Dx())
	_, _, _, a := decoded.At(0, 0).RGBA()
	assert.Zero(t, a, "corner pixel should be transparent")
}

func TestRenderOpaqueBackground(t *testing.T) {
	r := newTestRenderer()
	img, err := r.Render(context.Background(), Request{Text: `a \\ b`, Background: "white", Foreground: "k"})
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	cr, cg, cb, ca := decoded.At(0, 0).RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}, [4]uint32{cr, cg, cb, ca})
}

func TestRenderMoreLinesIsTaller(t *testing.T) {
	r := newTestRenderer()
	one, err := r.Render(context.Background(), Request{Text: "a"})
	require.NoError(t, err)
	three, err := r.Render(context.Background(), Request{Text: "a\nb\nc"})
	require.NoError(t, err)
	assert.Greater(t, three.Height, one.Height)
}

func TestRenderErrors(t *testing.T) {
	r := newTestRenderer()

	_, err := r.Render(context.Background(), Request{Text: "  "})
	assert.ErrorIs(t, err, ErrEmptyFormula)

	_, err = r.Render(context.Background(), Request{Text: "x", Foreground: "nocolor"})
	assert.ErrorIs(t, err, ErrBadColor)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, Request{Text: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlot(t *testing.T) {
	r := newTestRenderer()
	img, err := r.Plot(context.Background(), PlotRequest{
		Title: `y = x^2`,
		F:     func(x float64) float64 { return x * x },
		XMin:  -2,
		XMax:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, 600, img.Width)
	assert.Equal(t, 400, img.Height)
}

func TestPlotErrors(t *testing.T) {
	r := newTestRenderer()
	ctx := context.Background()

	_, err := r.Plot(ctx, PlotRequest{F: math.Sin, XMin: 1, XMax: 1})
	assert.ErrorIs(t, err, ErrBadRange)
	_, err = r.Plot(ctx, PlotRequest{F: math.Sin, XMin: 0, XMax: math.Inf(1)})
	assert.ErrorIs(t, err, ErrBadRange)
	_, err = r.Plot(ctx, PlotRequest{XMin: 0, XMax: 1})
	assert.ErrorIs(t, err, ErrBadRange)
	_, err = r.Plot(ctx, PlotRequest{F: func(float64) float64 { return math.NaN() }, XMin: 0, XMax: 1})
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestSpectrum(t *testing.T) {
	r := newTestRenderer()
	img, err := r.Spectrum(context.Background(), SpectrumRequest{
		Title:     "spectrum",
		Freq:      []float64{0, 1, 2, 3},
		Magnitude: []float64{1, 0.5, 0.25, 0.125},
	})
	require.NoError(t, err)
	assert.Equal(t, "spectrum.png", img.Name)

	_, err = r.Spectrum(context.Background(), SpectrumRequest{Freq: []float64{0}, Magnitude: []float64{1, 2}})
	assert.ErrorIs(t, err, ErrBadRange)
}

func TestYRange(t *testing.T) {
	lo, hi := YRange([]float64{0, 10})
	assert.InDelta(t, -0.5, lo, 1e-12)
	assert.InDelta(t, 10.5, hi, 1e-12)

	lo, hi = YRange([]float64{3, 3, 3})
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 4.0, hi)

	// 1/x near zero: one huge sample must not flatten the rest
	ys := make([]float64, 0, 101)
	for i := -50; i <= 50; i++ {
		if i == 0 {
			ys = append(ys, 1e9)
			continue
		}
		ys = append(ys, float64(i)/50)
	}
	lo, hi = YRange(ys)
	assert.Less(t, hi, 10.0)
	assert.Greater(t, lo, -10.0)
}

func TestSegments(t *testing.T) {
	pts := plotter.XYs{
		{X: 0, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: math.NaN()},
		{X: 3, Y: 1}, {X: 4, Y: 100}, {X: 5, Y: -100}, {X: 6, Y: 0},
	}
	segs := segments(pts, -10, 10)
	require.Len(t, segs, 3)
	assert.Len(t, segs[0], 2)
	assert.Equal(t, 4.0, segs[1][1].X)
	assert.Equal(t, 5.0, segs[2][0].X)
}

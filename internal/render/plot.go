package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DefaultSamples is the number of points drawn per curve.
const DefaultSamples = 500

var (
	// ErrBadRange is returned for an empty or non-finite plotting interval.
	ErrBadRange = errors.New("invalid plot range")
	// ErrNothingToPlot is returned when a function has no finite value on
	// the interval.
	ErrNothingToPlot = errors.New("function has no finite values on the interval")
)

const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch

	// a full range this many times wider than the 2-98% band is dominated
	// by outliers
	outlierRatio = 10
)

var curveColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// PlotRequest describes a function plot.
type PlotRequest struct {
	Title   string // LaTeX, math between $ delimiters
	XLabel  string
	YLabel  string
	F       func(float64) float64
	XMin    float64
	XMax    float64
	Samples int
}

// Plot samples F on [XMin, XMax] and draws it as a line chart. Points where F
// is not finite break the curve.
func (r *Renderer) Plot(ctx context.Context, req PlotRequest) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.F == nil {
		return nil, fmt.Errorf("%w: no function", ErrBadRange)
	}
	if !(req.XMin < req.XMax) || math.IsInf(req.XMin, 0) || math.IsInf(req.XMax, 0) {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrBadRange, req.XMin, req.XMax)
	}
	n := req.Samples
	if n < 2 {
		n = r.opts.Samples
	}

	pts := make(plotter.XYs, n)
	ys := make([]float64, 0, n)
	step := (req.XMax - req.XMin) / float64(n-1)
	for i := range pts {
		x := req.XMin + float64(i)*step
		y := req.F(x)
		pts[i] = plotter.XY{X: x, Y: y}
		if finite(y) {
			ys = append(ys, y)
		}
	}
	if len(ys) == 0 {
		return nil, fmt.Errorf("%w [%v, %v]", ErrNothingToPlot, req.XMin, req.XMax)
	}
	lo, hi := YRange(ys)

	return r.chart(ctx, chart{
		title:  req.Title,
		xLabel: orDefault(req.XLabel, "x"),
		yLabel: orDefault(req.YLabel, "y"),
		curves: segments(pts, lo, hi),
		xMin:   req.XMin,
		xMax:   req.XMax,
		yMin:   lo,
		yMax:   hi,
	}, "plot.png")
}

// SpectrumRequest describes a magnitude spectrum.
type SpectrumRequest struct {
	Title     string
	Freq      []float64
	Magnitude []float64
}

// Spectrum draws magnitude against frequency.
func (r *Renderer) Spectrum(ctx context.Context, req SpectrumRequest) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Freq) < 2 || len(req.Freq) != len(req.Magnitude) {
		return nil, fmt.Errorf("%w: %d frequencies, %d magnitudes", ErrBadRange, len(req.Freq), len(req.Magnitude))
	}
	pts := make(plotter.XYs, len(req.Freq))
	for i := range pts {
		pts[i] = plotter.XY{X: req.Freq[i], Y: req.Magnitude[i]}
	}
	hi := floats.Max(req.Magnitude)
	if hi <= 0 || !finite(hi) {
		hi = 1
	}
	return r.chart(ctx, chart{
		title:  req.Title,
		xLabel: "k",
		yLabel: "|F(k)|",
		curves: []plotter.XYs{pts},
		xMin:   req.Freq[0],
		xMax:   req.Freq[len(req.Freq)-1],
		yMin:   0,
		yMax:   hi * 1.05,
	}, "spectrum.png")
}

type chart struct {
	title          string
	xLabel, yLabel string
	curves         []plotter.XYs
	xMin, xMax     float64
	yMin, yMax     float64
}

// chart draws c with its title set by the formula typesetter. A title the
// typesetter rejects fails the whole chart with ErrRender.
func (r *Renderer) chart(ctx context.Context, c chart, name string) (*Image, error) {
	canvas, err := r.drawChart(c)
	if err != nil {
		r.logger.Debug("chart rejected", zap.String("title", c.title), zap.Error(err))
		return nil, err
	}
	return r.encode(ctx, canvas, name)
}

func (r *Renderer) drawChart(c chart) (canvas *vgimg.Canvas, err error) {
	defer func() {
		if p := recover(); p != nil {
			canvas, err = nil, fmt.Errorf("%w: %v", ErrRender, p)
		}
	}()

	p := plot.New()
	if c.title != "" {
		p.Title.Text = c.title
		p.Title.TextStyle.Handler = mathHandler{ts: r.typesetter()}
	}
	p.X.Label.Text = c.xLabel
	p.Y.Label.Text = c.yLabel
	p.Add(plotter.NewGrid())
	for _, pts := range c.curves {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("build line: %w", err)
		}
		line.LineStyle.Color = curveColor
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
	}
	p.X.Min, p.X.Max = c.xMin, c.xMax
	p.Y.Min, p.Y.Max = c.yMin, c.yMax

	canvas = vgimg.NewWith(vgimg.UseWH(plotWidth, plotHeight), vgimg.UseDPI(r.opts.DPI))
	p.Draw(draw.New(canvas))
	return canvas, nil
}

// YRange picks the vertical extent for the finite samples ys. When a few
// extreme values stretch the range far beyond the bulk of the data, as near
// a pole, the 2% and 98% quantiles are used instead. The result is padded by
// 5% and never empty.
func YRange(ys []float64) (lo, hi float64) {
	sorted := append([]float64(nil), ys...)
	sort.Float64s(sorted)
	lo, hi = sorted[0], sorted[len(sorted)-1]

	qlo := stat.Quantile(0.02, stat.Empirical, sorted, nil)
	qhi := stat.Quantile(0.98, stat.Empirical, sorted, nil)
	if qhi > qlo && hi-lo > outlierRatio*(qhi-qlo) {
		lo, hi = qlo, qhi
	}
	if hi == lo {
		return lo - 1, hi + 1
	}
	pad := 0.05 * (hi - lo)
	return lo - pad, hi + pad
}

// segments splits pts at non-finite values and at jumps across the visible
// band from beyond one edge to beyond the other.
func segments(pts plotter.XYs, lo, hi float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	flush := func() {
		if len(cur) > 1 {
			out = append(out, cur)
		}
		cur = nil
	}
	for i, pt := range pts {
		if !finite(pt.Y) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := pts[i-1].Y
			if (prev > hi && pt.Y < lo) || (prev < lo && pt.Y > hi) {
				flush()
			}
		}
		cur = append(cur, pt)
	}
	flush()
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrRender wraps formulas the typesetter cannot parse or draw.
var ErrRender = errors.New("could not render formula")

const (
	// DefaultDPI matches print-quality output.
	DefaultDPI = 300

	// space above the first and below the last line
	edgePad = vg.Inch / 5
	// horizontal room around the widest measured line
	sidePad = vg.Inch / 4
)

// Options configures a Renderer.
type Options struct {
	DPI        int
	MinWidth   float64 // inches
	Background string  // used when a request leaves it empty
	Foreground string
	Samples    int // points per plotted curve
}

// DefaultOptions returns the options used by the bot.
func DefaultOptions() Options {
	return Options{
		DPI:        DefaultDPI,
		MinWidth:   DefaultMinWidth,
		Background: "none",
		Foreground: "white",
		Samples:    DefaultSamples,
	}
}

// pngType is the media type of every encoded image.
const pngType = "image/png"

// Renderer draws formulas and plots. It is safe for concurrent use.
type Renderer struct {
	opts   Options
	fonts  *font.Cache
	logger *zap.Logger
}

// NewRenderer creates a renderer with the Liberation font family loaded.
func NewRenderer(opts Options, logger *zap.Logger) *Renderer {
	def := DefaultOptions()
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	if opts.MinWidth <= 0 {
		opts.MinWidth = def.MinWidth
	}
	if opts.Background == "" {
		opts.Background = def.Background
	}
	if opts.Foreground == "" {
		opts.Foreground = def.Foreground
	}
	if opts.Samples < 2 {
		opts.Samples = def.Samples
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		opts:   opts,
		fonts:  font.NewCache(liberation.Collection()),
		logger: logger,
	}
}

func (r *Renderer) typesetter() *typesetter {
	return &typesetter{fonts: r.fonts}
}

// Options returns the effective options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Request describes a formula image.
type Request struct {
	Text       string
	Background string
	Foreground string
}

// Image is an encoded picture ready to attach to a message.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
	Width       int // pixels
	Height      int
}

// Render draws each line of req.Text centered in its own slot.
func (r *Renderer) Render(ctx context.Context, req Request) (img *Image, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layout, err := estimate(req.Text, r.opts.MinWidth)
	if err != nil {
		return nil, err
	}
	bg, fg, err := r.colors(req.Background, req.Foreground)
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Debug("draw panic", zap.String("text", req.Text), zap.Any("panic", p))
			img, err = nil, fmt.Errorf("%w: %v", ErrRender, p)
		}
	}()

	size := font.Points(layout.FontSize)
	ts := r.typesetter()

	// Grow the estimate to the measured extents.
	width := vg.Length(layout.Width) * vg.Inch
	step := vg.Length(layout.LineStep) * vg.Inch
	boxes := make([]*box, len(layout.Lines))
	for i, line := range layout.Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b, err := ts.Layout(mathText(line), size)
		if err != nil {
			r.logger.Debug("formula rejected", zap.String("line", line), zap.Error(err))
			return nil, err
		}
		boxes[i] = b
		width = max(width, b.width+2*sidePad)
		step = max(step, b.ascent+b.descent)
	}
	height := 2*edgePad + vg.Length(len(boxes))*step

	c := vgimg.NewWith(
		vgimg.UseWH(width, height),
		vgimg.UseDPI(r.opts.DPI),
		vgimg.UseBackgroundColor(bg),
	)
	c.SetColor(fg)
	top := height - edgePad - step/2
	for i, b := range boxes {
		if b == nil {
			continue
		}
		// center each line's ink box in its slot
		center := top - vg.Length(i)*step
		b.draw(c, vg.Point{
			X: (width - b.width) / 2,
			Y: center - (b.ascent-b.descent)/2,
		})
	}
	return r.encode(ctx, c, "latex.png")
}

// colors resolves a request's colors against the renderer defaults.
func (r *Renderer) colors(bgSpec, fgSpec string) (bg, fg color.Color, err error) {
	if bgSpec == "" {
		bgSpec = r.opts.Background
	}
	if fgSpec == "" {
		fgSpec = r.opts.Foreground
	}
	if bg, err = ParseColor(bgSpec, color.Transparent); err != nil {
		return nil, nil, err
	}
	if fg, err = ParseColor(fgSpec, color.White); err != nil {
		return nil, nil, err
	}
	return bg, fg, nil
}

func (r *Renderer) encode(ctx context.Context, c *vgimg.Canvas, name string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	data := buf.Bytes()
	bounds := c.Image().Bounds()
	return &Image{
		Name:        name,
		ContentType: pngType,
		Data:        data,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

// mathText wraps a line in math delimiters unless it already has some.
func mathText(line string) string {
	line = strings.TrimSpace(line)
	if strings.Contains(line, "$") {
		return line
	}
	return "$" + line + "$"
}

package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
)

func layoutOf(t *testing.T, src string) *box {
	t.Helper()
	b, err := newTestRenderer().typesetter().Layout(mathText(src), font.Points(20))
	require.NoError(t, err, src)
	return b
}

func inked(img image.Image) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				return true
			}
		}
	}
	return false
}

func TestRenderFormulas(t *testing.T) {
	r := newTestRenderer()
	formulas := []string{
		`x^2`,
		`x_1`,
		`\sum_{i=1}^{n}`,
		`e^{-x^2}`,
		`x_1^2 + x_2^2`,
		`\frac{a}{b}`,
		`\sqrt{x}`,
		`\sqrt[3]{x + 1}`,
		`|x|`,
		`\left( \frac{1}{2} \right)`,
		`\sin^{2}(x) + \cos^{2}(x) = 1`,
		`y^{(4)}(x) = C_{1} e^{-x}`,
		`\int_{0}^{\infty} e^{-s t} f(t) \, dt`,
		`\lim_{x \to 0} \frac{\sin(x)}{x}`,
		`\alpha \cdot \beta \le \gamma`,
		`\text{if } x \ne 0`,
		`\mathbf{A} \times \mathbf{B}`,
		`Solution: $[-2, 2]$`,
		`[-\frac{\pi}{6}, \frac{5 \pi}{6}]`,
	}
	for _, f := range formulas {
		t.Run(f, func(t *testing.T) {
			img, err := r.Render(context.Background(), Request{Text: f})
			require.NoError(t, err)
			decoded, err := png.Decode(bytes.NewReader(img.Data))
			require.NoError(t, err)
			assert.True(t, inked(decoded), "nothing drawn")
		})
	}
}

func TestRenderRejectsMalformed(t *testing.T) {
	r := newTestRenderer()
	for _, f := range []string{`\nosuchmacro`, `\frac{a}`, `x }`, `"quoted"`} {
		_, err := r.Render(context.Background(), Request{Text: f})
		assert.ErrorIs(t, err, ErrRender, f)
	}
}

func TestLayoutScripts(t *testing.T) {
	x := layoutOf(t, `x`)
	sup := layoutOf(t, `x^2`)
	sub := layoutOf(t, `x_1`)

	assert.Greater(t, sup.ascent, x.ascent)
	assert.Greater(t, sup.width, x.width)
	assert.Equal(t, x.descent, sup.descent)

	assert.Greater(t, sub.descent, x.descent)
	assert.Equal(t, x.ascent, sub.ascent)

	both := layoutOf(t, `x_1^2`)
	assert.InDelta(t, float64(max(sup.width, sub.width)), float64(both.width), 1e-9)
}

func TestLayoutLimitsStack(t *testing.T) {
	sum := layoutOf(t, `\sum`)
	limits := layoutOf(t, `\sum_{i=1}^{n}`)
	assert.Greater(t, limits.ascent, sum.ascent)
	assert.Greater(t, limits.descent, sum.descent)

	integral := layoutOf(t, `\int`)
	bounds := layoutOf(t, `\int_{0}^{1}`)
	assert.Greater(t, bounds.width, integral.width, "integral bounds sit beside the sign")
}

func TestLayoutFraction(t *testing.T) {
	a := layoutOf(t, `a`)
	fr := layoutOf(t, `\frac{a}{b}`)
	assert.Greater(t, fr.ascent, a.ascent)
	assert.Greater(t, fr.descent, a.descent)
	assert.Less(t, fr.width, 2*a.width, "numerator and denominator stack")
}

func TestLayoutFencesGrow(t *testing.T) {
	plain := layoutOf(t, `(a)`)
	tall := layoutOf(t, `(\frac{a}{b})`)
	fr := layoutOf(t, `\frac{a}{b}`)
	assert.GreaterOrEqual(t, tall.ascent, fr.ascent)
	assert.Greater(t, tall.width-fr.width, plain.width-layoutOf(t, `a`).width,
		"parentheses around a fraction are drawn larger")

	abs := layoutOf(t, `|x|`)
	assert.Greater(t, abs.width, layoutOf(t, `x`).width)
}

func TestLayoutSignsAreNotSpaced(t *testing.T) {
	y := layoutOf(t, `y`)
	neg := layoutOf(t, `-x`)
	diff := layoutOf(t, `y-x`)
	assert.Greater(t, diff.width-y.width, neg.width, "binary minus gets spacing")

	inBracket := layoutOf(t, `[-2]`)
	spaced := layoutOf(t, `[1-2]`)
	assert.Greater(t, spaced.width-layoutOf(t, `1`).width, inBracket.width)
}

func TestLayoutTextKeepsSpaces(t *testing.T) {
	joined := layoutOf(t, `ab: $x$`)
	spaced := layoutOf(t, `a b: $x$`)
	assert.Greater(t, spaced.width, joined.width)
}

func TestNormalizeTeX(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`\left( x \right)`, `( x )`},
		{`\left. x \right|`, ` x \vert `},
		{`|x|`, `\vert x\vert `},
		{`\|v\|`, `\Vert v\Vert `},
		{`a \le b \ge c \ne d`, `a \leq b \geq c \neq d`},
		{`\leq \leftarrow \neq`, `\leq \leftarrow \neq`},
		{`\text{if } x`, `\textregular{if } x`},
		{`\displaystyle\sum`, `\sum`},
		{`\bigl( x \bigr)`, `( x )`},
		{`\bigcup`, `\bigcup`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeTeX(tt.in), tt.in)
	}
}

func TestMathHandlerMatchesLayout(t *testing.T) {
	r := newTestRenderer()
	h := mathHandler{ts: r.typesetter()}
	fnt := font.Font{Typeface: "Liberation", Variant: "Serif", Size: 12}

	w, ht, d := h.Box(`$y = x^{2}$`, fnt)
	b, err := r.typesetter().Layout(`$y = x^{2}$`, 12)
	require.NoError(t, err)
	assert.Equal(t, [3]vg.Length{b.width, b.ascent, b.descent}, [3]vg.Length{w, ht, d})

	assert.Equal(t, []string{"a", "b"}, h.Lines("a\nb\n"))
	assert.Panics(t, func() { h.Box(`$\nosuch$`, fnt) })
}

func TestPlotTitleWithPower(t *testing.T) {
	r := newTestRenderer()
	img, err := r.Plot(context.Background(), PlotRequest{
		Title: `$f(x) = e^{-x^{2}} \cdot \frac{1}{\sqrt{2 \pi}}$`,
		F:     func(x float64) float64 { return math.Exp(-x * x) },
		XMin:  -2,
		XMax:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, "plot.png", img.Name)

	_, err = r.Plot(context.Background(), PlotRequest{
		Title: `$\nosuch$`,
		F:     math.Sin,
		XMin:  0,
		XMax:  1,
	})
	assert.ErrorIs(t, err, ErrRender, "a bad title fails the chart")
}

func TestRotatePoint(t *testing.T) {
	p := rotatePoint(math.Pi/2, vg.Point{X: 1, Y: 0})
	assert.InDelta(t, 0, float64(p.X), 1e-9)
	assert.InDelta(t, 1, float64(p.Y), 1e-9)
}

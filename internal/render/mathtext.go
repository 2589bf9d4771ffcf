package render

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"codeberg.org/go-latex/latex"
	"codeberg.org/go-latex/latex/ast"
	"codeberg.org/go-latex/latex/mtex/symbols"
	stdfnt "golang.org/x/image/font"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Sizes relative to the current font size, in ems.
const (
	scriptScale = 0.7
	fracScale   = 0.85
	bigOpScale  = 1.4
	minScale    = 0.45 // smallest size relative to the outer text

	axisHeight = 0.25
	ruleWidth  = 0.045
	thinSpace  = 1.0 / 6
	medSpace   = 2.0 / 9
	thickSpace = 5.0 / 18
)

// box is a laid out piece of math, measured from its baseline origin.
// Exactly one of text, rule or path is drawn, then the children.
type box struct {
	width, ascent, descent vg.Length

	face font.Face
	text string

	rule bool // filled over the whole box

	path []vg.Point // stroked polyline
	line vg.Length

	kids []kid
}

type kid struct {
	at  vg.Point
	box *box
}

// put places k with its origin at (x, y) and grows b to cover it.
func (b *box) put(x, y vg.Length, k *box) {
	b.kids = append(b.kids, kid{at: vg.Point{X: x, Y: y}, box: k})
	b.width = max(b.width, x+k.width)
	b.ascent = max(b.ascent, y+k.ascent)
	b.descent = max(b.descent, k.descent-y)
}

func (b *box) draw(c vg.Canvas, at vg.Point) {
	switch {
	case b.text != "":
		c.FillString(b.face, at, b.text)
	case b.rule:
		var p vg.Path
		p.Move(vg.Point{X: at.X, Y: at.Y - b.descent})
		p.Line(vg.Point{X: at.X + b.width, Y: at.Y - b.descent})
		p.Line(vg.Point{X: at.X + b.width, Y: at.Y + b.ascent})
		p.Line(vg.Point{X: at.X, Y: at.Y + b.ascent})
		p.Close()
		c.Fill(p)
	case len(b.path) > 1:
		var p vg.Path
		p.Move(at.Add(b.path[0]))
		for _, pt := range b.path[1:] {
			p.Line(at.Add(pt))
		}
		c.SetLineWidth(b.line)
		c.Stroke(p)
	}
	for _, k := range b.kids {
		k.box.draw(c, at.Add(k.at))
	}
}

type atomKind int

const (
	ordAtom atomKind = iota
	opAtom
	binAtom
	relAtom
	openAtom
	closeAtom
	punctAtom
	spaceAtom
)

// atom is one item of a row before spacing is applied.
type atom struct {
	box    *box
	kind   atomKind
	limits bool // scripts go above and below

	delim string // fence glyph, resized to its contents
	ambi  bool   // fence that opens or closes by position
	st    mathStyle
}

type shape int

const (
	autoShape shape = iota
	romanShape
	italicShape
	boldShape
	monoShape
	sansShape
)

type mathStyle struct {
	size  vg.Length
	outer vg.Length
	depth int
	math  bool
	shape shape
}

func (s mathStyle) shrink(f float64, depth int) mathStyle {
	s.size = max(s.size*vg.Length(f), s.outer*minScale)
	s.depth += depth
	return s
}

func (s mathStyle) script() mathStyle { return s.shrink(scriptScale, 1) }

func (s mathStyle) em(f float64) vg.Length { return s.size * vg.Length(f) }

// typesetter lays out LaTeX math with the Liberation fonts. It covers the
// common subset: scripts, fractions, roots, fences, big operators, function
// names, Greek letters and font commands.
type typesetter struct {
	fonts *font.Cache
}

// Layout parses src and lays it out at size. Text outside $...$ is set
// upright with its spaces kept.
func (t *typesetter) Layout(src string, size vg.Length) (b *box, err error) {
	defer func() {
		if p := recover(); p != nil {
			b, err = nil, fmt.Errorf("%w: %v", ErrRender, p)
		}
	}()
	node, err := latex.ParseExpr(normalizeTeX(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return t.row(asList(node), mathStyle{size: size, outer: size}), nil
}

var (
	fenceSizer = regexp.MustCompile(`\\(left|right|bigl|bigr|Bigl|Bigr|big|Big)\b\.?`)
	ignored    = regexp.MustCompile(`\\(displaystyle|textstyle|limits|nolimits)\b`)
	aliases    = strings.NewReplacer(
		`\|`, `\Vert `,
		`|`, `\vert `,
		`~`, `\ `,
		`&`, ` `,
		`\text{`, `\textregular{`,
		`\mathrm{`, `\mathregular{`,
		`\lbrace`, `\{`,
		`\rbrace`, `\}`,
	)
	shortRelations = regexp.MustCompile(`\\(le|ge|ne|lt|gt)\b`)
)

// normalizeTeX rewrites constructs the parser has no rule for into ones it
// knows. Fence sizing is dropped since fences are sized by their contents.
func normalizeTeX(src string) string {
	src = fenceSizer.ReplaceAllString(src, "")
	src = ignored.ReplaceAllString(src, "")
	src = shortRelations.ReplaceAllStringFunc(src, func(m string) string {
		switch m {
		case `\le`:
			return `\leq`
		case `\ge`:
			return `\geq`
		case `\ne`:
			return `\neq`
		case `\lt`:
			return `<`
		default:
			return `>`
		}
	})
	return aliases.Replace(src)
}

func asList(n ast.Node) ast.List {
	switch n := n.(type) {
	case nil:
		return nil
	case ast.List:
		return n
	case *ast.Arg:
		return n.List
	case *ast.OptArg:
		return n.List
	default:
		return ast.List{n}
	}
}

// row lays out nodes left to right, attaching scripts to the item before
// them and sizing fences to what they enclose.
func (t *typesetter) row(nodes ast.List, st mathStyle) *box {
	var atoms []atom
	for i := 0; i < len(nodes); {
		var a atom
		ok := true
		switch nodes[i].(type) {
		case *ast.Sup, *ast.Sub:
			a = atom{box: &box{}, st: st}
		default:
			a, ok = t.atom(nodes[i], &st)
			i++
		}
		sup, sub, next := scriptsAt(nodes, i)
		i = next
		if !ok {
			continue
		}
		if sup != nil || sub != nil {
			a = t.attach(a, sup, sub, st)
		}
		atoms = append(atoms, a)
	}
	t.fence(atoms)
	return pack(atoms, st)
}

func scriptsAt(nodes ast.List, i int) (sup *ast.Sup, sub *ast.Sub, next int) {
	for ; i < len(nodes); i++ {
		switch n := nodes[i].(type) {
		case *ast.Sup:
			if sup != nil {
				return sup, sub, i
			}
			sup = n
		case *ast.Sub:
			if sub != nil {
				return sup, sub, i
			}
			sub = n
		default:
			return sup, sub, i
		}
	}
	return sup, sub, i
}

// atom lays out one node. Font switches update st and produce nothing.
func (t *typesetter) atom(n ast.Node, st *mathStyle) (atom, bool) {
	switch n := n.(type) {
	case *ast.MathExpr:
		inner := *st
		inner.math = true
		return atom{box: t.row(n.List, inner), st: *st}, true
	case ast.List:
		return atom{box: t.row(n, *st), st: *st}, true
	case *ast.Word:
		return atom{box: t.glyph(n.Text, true, *st), st: *st}, true
	case *ast.Literal:
		return atom{box: t.glyph(n.Text, false, *st), st: *st}, true
	case *ast.Symbol:
		return t.symbol(n.Text, *st), true
	case *ast.Macro:
		return t.macro(n, st)
	default:
		return atom{box: &box{}, st: *st}, true
	}
}

func (t *typesetter) face(st mathStyle, italic bool) font.Face {
	fnt := font.Font{Typeface: "Liberation", Variant: "Serif"}
	switch st.shape {
	case autoShape:
		if italic && st.math {
			fnt.Style = stdfnt.StyleItalic
		}
	case italicShape:
		fnt.Style = stdfnt.StyleItalic
	case boldShape:
		fnt.Weight = stdfnt.WeightBold
	case monoShape:
		fnt.Variant = "Mono"
	case sansShape:
		fnt.Variant = "Sans"
	}
	return t.fonts.Lookup(fnt, st.size)
}

func (t *typesetter) glyph(s string, italic bool, st mathStyle) *box {
	face := t.face(st, italic)
	e := face.Extents()
	return &box{
		width:   face.Width(s),
		ascent:  e.Ascent,
		descent: e.Descent,
		face:    face,
		text:    s,
	}
}

func (t *typesetter) space(st mathStyle, em float64) atom {
	return atom{box: &box{width: st.em(em)}, kind: spaceAtom, st: st}
}

func (t *typesetter) symbol(s string, st mathStyle) atom {
	if !st.math {
		if s == " " {
			face := t.face(st, false)
			return atom{box: &box{width: face.Width(" ")}, kind: spaceAtom, st: st}
		}
		return atom{box: t.glyph(s, false, st), st: st}
	}
	switch s {
	case "(", "[":
		return atom{box: t.glyph(s, false, st), kind: openAtom, delim: s, st: st}
	case ")", "]":
		return atom{box: t.glyph(s, false, st), kind: closeAtom, delim: s, st: st}
	case "-":
		return atom{box: t.glyph("−", false, st), kind: binAtom, st: st}
	case "'":
		return atom{box: t.glyph("′", false, st), st: st}
	case ".", "!", "/":
		return atom{box: t.glyph(s, false, st), st: st}
	}
	return atom{box: t.glyph(s, false, st), kind: symbolKind(s), st: st}
}

func symbolKind(s string) atomKind {
	switch {
	case symbols.BinaryOperators.Has(s):
		return binAtom
	case symbols.RelationSymbols.Has(s), symbols.ArrowSymbols.Has(s), extraRelations[s]:
		return relAtom
	case symbols.PunctuationSymbols.Has(s):
		return punctAtom
	default:
		return ordAtom
	}
}

var extraRelations = map[string]bool{
	`\to`: true, `\ne`: true, `\implies`: true, `\iff`: true,
	`\gets`: true, `\leqslant`: true, `\geqslant`: true,
}

// fences maps fence macros and brackets to their glyph and whether they
// open (+1), close (-1) or depend on position (0).
var fences = map[string]struct {
	glyph string
	side  int
}{
	`\{`:      {"{", 1},
	`\}`:      {"}", -1},
	`\langle`: {"⟨", 1},
	`\rangle`: {"⟩", -1},
	`\lfloor`: {"⌊", 1},
	`\rfloor`: {"⌋", -1},
	`\lceil`:  {"⌈", 1},
	`\rceil`:  {"⌉", -1},
	`\vert`:   {"|", 0},
	`\Vert`:   {"‖", 0},
}

var spaces = map[string]float64{
	`\,`:      3.0 / 18,
	`\:`:      4.0 / 18,
	`\;`:      5.0 / 18,
	`\!`:      -3.0 / 18,
	`\ `:      1.0 / 3,
	`\quad`:   1,
	`\qquad`:  2,
	`\hspace`: 1,
}

var fontSwitches = map[string]shape{
	`\rm`: romanShape, `\regular`: romanShape, `\default`: autoShape,
	`\it`: italicShape, `\cal`: italicShape, `\scr`: italicShape,
	`\bf`: boldShape, `\bb`: boldShape, `\frak`: boldShape,
	`\tt`: monoShape, `\sf`: sansShape,
}

var fontCommands = map[string]shape{
	`\mathbf`: boldShape, `\textbf`: boldShape, `\mathbb`: boldShape, `\textbb`: boldShape,
	`\mathfrak`: boldShape, `\textfrak`: boldShape,
	`\mathit`: italicShape, `\textit`: italicShape, `\mathcal`: italicShape, `\textcal`: italicShape,
	`\mathscr`: italicShape, `\textscr`: italicShape,
	`\mathtt`: monoShape, `\texttt`: monoShape,
	`\mathsf`: sansShape, `\textsf`: sansShape,
	`\mathregular`: romanShape, `\textregular`: romanShape,
	`\mathdefault`: autoShape, `\textdefault`: romanShape,
}

func (t *typesetter) macro(m *ast.Macro, st *mathStyle) (atom, bool) {
	name := m.Name.Name
	key := strings.TrimPrefix(name, `\`)
	arg := func(i int) ast.List {
		if i < len(m.Args) {
			return asList(m.Args[i])
		}
		return nil
	}

	switch name {
	case `\frac`, `\dfrac`, `\tfrac`:
		return atom{box: t.fraction(arg(0), arg(1), true, *st), st: *st}, true
	case `\binom`:
		fr := t.fraction(arg(0), arg(1), false, *st)
		return atom{box: hpack(
			t.delimiter("(", fr.ascent, fr.descent, *st), fr,
			t.delimiter(")", fr.ascent, fr.descent, *st),
		), st: *st}, true
	case `\stackrel`:
		top := t.row(arg(0), st.script())
		return atom{box: t.over(t.row(arg(1), *st), top, *st), kind: relAtom, st: *st}, true
	case `\sqrt`:
		return t.sqrt(m, *st), true
	case `\overline`:
		return atom{box: t.overline(t.row(arg(0), *st), *st), st: *st}, true
	case `\operatorname`:
		inner := *st
		inner.shape = romanShape
		return atom{box: t.row(arg(0), inner), kind: opAtom, st: *st}, true
	case `\exp`:
		fn := t.glyph("exp", false, *st)
		body := t.row(arg(0), *st)
		return atom{box: hpack(fn, &box{width: st.em(thinSpace)}, body), st: *st}, true
	}

	if sh, ok := fontSwitches[name]; ok {
		st.shape = sh
		return atom{}, false
	}
	if sh, ok := fontCommands[name]; ok {
		inner := *st
		inner.shape = sh
		if strings.HasPrefix(name, `\text`) {
			inner.math = false
		}
		return atom{box: t.row(arg(0), inner), st: *st}, true
	}
	if em, ok := spaces[name]; ok {
		return t.space(*st, em), true
	}
	if f, ok := fences[name]; ok {
		a := atom{box: t.glyph(f.glyph, false, *st), delim: f.glyph, st: *st}
		switch f.side {
		case 1:
			a.kind = openAtom
		case -1:
			a.kind = closeAtom
		default:
			a.kind, a.ambi = openAtom, true
		}
		return a, true
	}
	if symbols.FunctionNames.Has(key) {
		inner := *st
		inner.shape = romanShape
		return atom{
			box:    t.glyph(key, false, inner),
			kind:   opAtom,
			limits: symbols.OverUnderFunctions.Has(key),
			st:     *st,
		}, true
	}
	if big, ok := bigOperators[name]; ok {
		return atom{
			box:    t.bigOperator(big, *st),
			kind:   opAtom,
			limits: symbols.OverUnderSymbols.Has(name),
			st:     *st,
		}, true
	}
	if g, ok := macroGlyphs[key]; ok {
		r := []rune(g)[0]
		italic := unicode.Is(unicode.Greek, r) && unicode.IsLower(r)
		return atom{box: t.glyph(g, italic, *st), kind: symbolKind(name), st: *st}, true
	}
	inner := *st
	inner.shape = romanShape
	return atom{box: t.glyph(key, false, inner), st: *st}, true
}

// attach sets sup and sub on a, beside it or above and below for limits.
func (t *typesetter) attach(a atom, sup *ast.Sup, sub *ast.Sub, st mathStyle) atom {
	scr := st.script()
	base := a.box
	var supBox, subBox *box
	if sup != nil {
		supBox = t.row(asList(sup.Node), scr)
	}
	if sub != nil {
		subBox = t.row(asList(sub.Node), scr)
	}

	out := &box{}
	gap := st.em(0.12)
	if a.limits && st.depth == 0 {
		w := base.width
		if supBox != nil {
			w = max(w, supBox.width)
		}
		if subBox != nil {
			w = max(w, subBox.width)
		}
		out.put((w-base.width)/2, 0, base)
		if supBox != nil {
			out.put((w-supBox.width)/2, base.ascent+gap+supBox.descent, supBox)
		}
		if subBox != nil {
			out.put((w-subBox.width)/2, -(base.descent + gap + subBox.ascent), subBox)
		}
		out.width = w
		a.box = out
		return a
	}

	out.put(0, 0, base)
	x := base.width + st.em(0.04)
	w := base.width
	if supBox != nil {
		shift := max(st.em(0.45), base.ascent-st.em(0.45))
		out.put(x, shift, supBox)
		w = max(w, x+supBox.width)
	}
	if subBox != nil {
		shift := max(st.em(0.2), base.descent-st.em(0.1))
		if supBox != nil {
			shift = max(shift, st.em(0.28))
		}
		out.put(x, -shift, subBox)
		w = max(w, x+subBox.width)
	}
	out.width = w
	a.box = out
	return a
}

func (t *typesetter) fraction(num, den ast.List, rule bool, st mathStyle) *box {
	inner := st.shrink(fracScale, 1)
	n := t.row(num, inner)
	d := t.row(den, inner)

	axis := st.em(axisHeight)
	thick := max(st.em(ruleWidth), vg.Points(0.4))
	gap := st.em(0.12)
	pad := st.em(0.1)
	w := max(n.width, d.width) + 2*pad

	out := &box{}
	out.put((w-n.width)/2, axis+thick/2+gap+n.descent, n)
	out.put((w-d.width)/2, -(d.ascent + gap + thick/2 - axis), d)
	if rule {
		out.put(0, axis, &box{width: w, ascent: thick / 2, descent: thick / 2, rule: true})
	}
	out.width = w
	return out
}

func (t *typesetter) over(base, top *box, st mathStyle) *box {
	w := max(base.width, top.width)
	out := &box{}
	out.put((w-base.width)/2, 0, base)
	out.put((w-top.width)/2, base.ascent+st.em(0.1)+top.descent, top)
	return out
}

func (t *typesetter) overline(body *box, st mathStyle) *box {
	thick := max(st.em(ruleWidth), vg.Points(0.4))
	out := &box{}
	out.put(0, 0, body)
	out.put(0, body.ascent+st.em(0.1)+thick/2, &box{width: body.width, ascent: thick / 2, descent: thick / 2, rule: true})
	return out
}

func (t *typesetter) sqrt(m *ast.Macro, st mathStyle) atom {
	var index, radicand ast.List
	for _, a := range m.Args {
		switch a := a.(type) {
		case *ast.OptArg:
			index = a.List
		case *ast.Arg:
			radicand = a.List
		}
	}
	body := t.row(radicand, st)

	thick := max(st.em(ruleWidth), vg.Points(0.4))
	gap := st.em(0.12)
	top := body.ascent + gap
	bottom := -body.descent
	h := top - bottom
	rw := st.em(0.45) + h/10

	var off vg.Length
	out := &box{}
	if len(index) > 0 {
		idx := t.row(index, st.script().script())
		off = max(0, idx.width-rw/2)
		out.put(0, bottom+0.6*h+idx.descent, idx)
	}
	end := rw + gap + body.width + gap/2
	sign := &box{
		width:   end,
		ascent:  top + thick/2,
		descent: -bottom,
		line:    thick,
		path: []vg.Point{
			{X: 0, Y: bottom + 0.5*h},
			{X: 0.2 * rw, Y: bottom + 0.58*h},
			{X: 0.5 * rw, Y: bottom},
			{X: rw, Y: top},
			{X: end, Y: top},
		},
	}
	out.put(off, 0, sign)
	out.put(off+rw+gap, 0, body)
	return atom{box: out, st: st}
}

var bigOperators = map[string]string{
	`\sum`: "∑", `\prod`: "∏", `\coprod`: "∐",
	`\int`: "∫", `\oint`: "∮", `\iint`: "∬", `\iiint`: "∭",
	`\bigcup`: "⋃", `\bigcap`: "⋂", `\bigoplus`: "⨁", `\bigotimes`: "⨂",
	`\bigvee`: "⋁", `\bigwedge`: "⋀",
}

func (t *typesetter) bigOperator(g string, st mathStyle) *box {
	big := st
	if st.depth == 0 {
		big.size = st.em(bigOpScale)
	}
	big.shape = romanShape
	b := t.glyph(g, false, big)
	out := &box{}
	out.put(0, st.em(axisHeight)-(b.ascent-b.descent)/2, b)
	return out
}

// fence matches open and close delimiters and grows each pair to the
// height of what it encloses. Unmatched delimiters keep their size.
func (t *typesetter) fence(atoms []atom) {
	var open []int
	for i := range atoms {
		a := &atoms[i]
		if a.delim == "" {
			continue
		}
		if a.ambi {
			if n := len(open); n > 0 && atoms[open[n-1]].delim == a.delim {
				a.kind = closeAtom
			} else {
				a.kind = openAtom
			}
		}
		switch a.kind {
		case openAtom:
			open = append(open, i)
		case closeAtom:
			n := len(open)
			if n == 0 {
				continue
			}
			j := open[n-1]
			open = open[:n-1]
			var asc, desc vg.Length
			for _, in := range atoms[j+1 : i] {
				asc = max(asc, in.box.ascent)
				desc = max(desc, in.box.descent)
			}
			atoms[j].box = t.delimiter(atoms[j].delim, asc, desc, atoms[j].st)
			a.box = t.delimiter(a.delim, asc, desc, a.st)
		}
	}
}

// delimiter draws g tall enough to cover the extent asc/desc, centered on
// it. Content no taller than a plain glyph keeps the text size.
func (t *typesetter) delimiter(g string, asc, desc vg.Length, st mathStyle) *box {
	plain := t.glyph(g, false, st)
	if asc <= plain.ascent*1.15 && desc <= plain.descent*1.5 {
		return plain
	}
	grown := st
	grown.size = st.size * (asc + desc) / (plain.ascent + plain.descent)
	b := t.glyph(g, false, grown)
	out := &box{}
	out.put(0, (asc-desc)/2-(b.ascent-b.descent)/2, b)
	return out
}

// pack joins atoms with math spacing. Binary operators with nothing to
// their left act as signs.
func pack(atoms []atom, st mathStyle) *box {
	out := &box{}
	var x vg.Length
	prev := spaceAtom
	for i, a := range atoms {
		kind := a.kind
		if kind == binAtom {
			switch {
			case i == 0, i == len(atoms)-1:
				kind = ordAtom
			case prev == binAtom, prev == relAtom, prev == openAtom, prev == punctAtom, prev == opAtom:
				kind = ordAtom
			}
		}
		if i > 0 && st.math {
			x += glue(prev, kind, st)
		}
		out.put(x, 0, a.box)
		x += a.box.width
		prev = kind
	}
	out.width = max(x, 0)
	return out
}

func glue(left, right atomKind, st mathStyle) vg.Length {
	switch {
	case left == spaceAtom || right == spaceAtom:
		return 0
	case left == binAtom || right == binAtom:
		if st.depth > 0 {
			return 0
		}
		return st.em(medSpace)
	case left == relAtom || right == relAtom:
		if st.depth > 0 || left == openAtom {
			return 0
		}
		return st.em(thickSpace)
	case left == punctAtom:
		return st.em(thinSpace)
	case left == opAtom && (right == ordAtom || right == opAtom):
		return st.em(thinSpace)
	case left == ordAtom && right == opAtom:
		return st.em(thinSpace)
	default:
		return 0
	}
}

func hpack(boxes ...*box) *box {
	out := &box{}
	var x vg.Length
	for _, b := range boxes {
		out.put(x, 0, b)
		x += b.width
	}
	out.width = x
	return out
}

// mathHandler is a text.Handler for plot labels backed by the typesetter.
type mathHandler struct {
	ts *typesetter
}

var _ text.Handler = mathHandler{}

func (h mathHandler) Cache() *font.Cache { return h.ts.fonts }

func (h mathHandler) Extents(fnt font.Font) font.Extents {
	face := h.ts.fonts.Lookup(fnt, fnt.Size)
	return face.Extents()
}

func (h mathHandler) Lines(txt string) []string {
	return strings.Split(strings.TrimRight(txt, "\n"), "\n")
}

func (h mathHandler) Box(txt string, fnt font.Font) (width, height, depth vg.Length) {
	b := h.layout(txt, fnt.Size)
	return b.width, b.ascent, b.descent
}

func (h mathHandler) Draw(c vg.Canvas, txt string, sty text.Style, pt vg.Point) {
	txt = strings.TrimRight(txt, "\n")
	if txt == "" {
		return
	}
	c.SetColor(sty.Color)
	if sty.Rotation != 0 {
		c.Push()
		defer c.Pop()
		c.Rotate(sty.Rotation)
		pt = rotatePoint(-sty.Rotation, pt)
	}

	e := h.Extents(sty.Font)
	gap := e.Height - e.Ascent - e.Descent
	lines := h.Lines(txt)
	boxes := make([]*box, len(lines))
	var height vg.Length
	for i, line := range lines {
		boxes[i] = h.layout(line, sty.Font.Size)
		height += boxes[i].ascent + boxes[i].descent
		if i > 0 {
			height += gap
		}
	}

	top := pt.Y + height*(1+vg.Length(sty.YAlign)) - (e.Height - e.Ascent)
	for _, b := range boxes {
		top -= b.ascent
		x := pt.X + vg.Length(sty.XAlign)*b.width
		b.draw(c, vg.Point{X: x, Y: top})
		top -= b.descent + gap
	}
}

// layout panics on bad input; plot drawing recovers it into ErrRender.
func (h mathHandler) layout(txt string, size vg.Length) *box {
	b, err := h.ts.Layout(mathText(txt), size)
	if err != nil {
		panic(err)
	}
	return b
}

func rotatePoint(rad float64, p vg.Point) vg.Point {
	sin, cos := math.Sincos(rad)
	s, c := vg.Length(sin), vg.Length(cos)
	return vg.Point{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// macroGlyphs maps symbol commands to the characters drawn for them.
var macroGlyphs = map[string]string{
	// Greek
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ϵ",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"omicron": "ο", "pi": "π", "varpi": "ϖ", "rho": "ρ", "varrho": "ϱ",
	"sigma": "σ", "varsigma": "ς", "tau": "τ", "upsilon": "υ", "phi": "ϕ",
	"varphi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Alpha": "Α", "Beta": "Β", "Gamma": "Γ", "Delta": "Δ", "Epsilon": "Ε",
	"Zeta": "Ζ", "Eta": "Η", "Theta": "Θ", "Iota": "Ι", "Kappa": "Κ",
	"Lambda": "Λ", "Mu": "Μ", "Nu": "Ν", "Xi": "Ξ", "Omicron": "Ο", "Pi": "Π",
	"Rho": "Ρ", "Sigma": "Σ", "Tau": "Τ", "Upsilon": "Υ", "Phi": "Φ",
	"Chi": "Χ", "Psi": "Ψ", "Omega": "Ω",

	// binary operators
	"cdot": "·", "cdotp": "·", "ldotp": ".", "times": "×", "div": "÷", "pm": "±",
	"mp": "∓", "ast": "∗", "star": "⋆", "circ": "∘", "bullet": "•",
	"cap": "∩", "cup": "∪", "wedge": "∧", "vee": "∨", "oplus": "⊕",
	"ominus": "⊖", "otimes": "⊗", "odot": "⊙", "oslash": "⊘",
	"setminus": "∖", "dagger": "†", "ddagger": "‡", "diamond": "⋄",

	// relations
	"leq": "≤", "geq": "≥", "neq": "≠", "approx": "≈", "equiv": "≡",
	"sim": "∼", "simeq": "≃", "cong": "≅", "propto": "∝", "ll": "≪",
	"gg": "≫", "in": "∈", "ni": "∋", "notin": "∉", "subset": "⊂",
	"supset": "⊃", "subseteq": "⊆", "supseteq": "⊇", "perp": "⊥",
	"parallel": "∥", "mid": "∣", "models": "⊨", "doteq": "≐", "asymp": "≍",
	"prec": "≺", "succ": "≻", "preceq": "⪯", "succeq": "⪰",
	"vdash": "⊢", "dashv": "⊣", "leqslant": "⩽", "geqslant": "⩾",

	// arrows
	"to": "→", "rightarrow": "→", "leftarrow": "←", "gets": "←",
	"leftrightarrow": "↔", "Rightarrow": "⇒", "Leftarrow": "⇐",
	"Leftrightarrow": "⇔", "implies": "⇒", "iff": "⇔", "mapsto": "↦",
	"longrightarrow": "⟶", "longleftarrow": "⟵", "longleftrightarrow": "⟷",
	"Longrightarrow": "⟹", "Longleftarrow": "⟸", "Longleftrightarrow": "⟺",
	"longmapsto": "⟼", "uparrow": "↑", "downarrow": "↓", "updownarrow": "↕",
	"Uparrow": "⇑", "Downarrow": "⇓", "nearrow": "↗", "searrow": "↘",
	"swarrow": "↙", "nwarrow": "↖",

	// miscellaneous
	"infty": "∞", "partial": "∂", "nabla": "∇", "hbar": "ħ", "ell": "ℓ",
	"forall": "∀", "exists": "∃", "emptyset": "∅", "varnothing": "∅",
	"prime": "′", "ldots": "…", "dots": "…", "cdots": "⋯", "vdots": "⋮",
	"ddots": "⋱", "angle": "∠", "neg": "¬", "lnot": "¬", "Re": "ℜ", "Im": "ℑ",
	"aleph": "ℵ", "wp": "℘", "degree": "°", "backslash": "\\", "top": "⊤",
	"bot": "⊥", "triangle": "△", "square": "□", "checkmark": "✓",
	"dag": "†", "S": "§", "P": "¶",
}

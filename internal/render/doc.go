// Package render turns formula text and sampled functions into PNG images.
//
// Formula rendering happens in two steps. EstimateLayout picks a font size and
// canvas size from the shape of the text alone, then the Renderer lays out
// each line with its typesetter and grows the canvas if the estimate was too
// small. Lines are drawn centered, one per slot, top to bottom.
//
// The typesetter parses LaTeX with go-latex and draws glyphs from the
// Liberation fonts straight onto the vg canvas. Scripts, fractions, roots,
// big operators and fences are laid out as nested boxes. Plot titles go
// through the same typesetter as a text.Handler.
//
// All images are encoded as PNG. A background of "none" or "transparent"
// leaves the alpha channel empty so the image sits cleanly on any chat theme.
package render

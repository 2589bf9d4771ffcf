package render

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrEmptyFormula is returned when there is nothing to draw.
var ErrEmptyFormula = errors.New("formula is empty")

// Layout defaults, in inches and points.
const (
	DefaultMinWidth = 4.0

	smallFont  = 12.0
	mediumFont = 16.0
	largeFont  = 20.0

	widthPerRune   = 0.012 // inches per rune per point
	lineStepFactor = 2.2
	verticalMargin = 0.4
)

// Layout is the estimated geometry of a formula block.
type Layout struct {
	Lines    []string
	Longest  int     // runes in the longest line
	FontSize float64 // points
	Width    float64 // inches
	Height   float64 // inches
	LineStep float64 // inches between line centers
}

// SplitLines breaks text on newlines and on the LaTeX line break \\.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, `\\`, "\n")
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

// EstimateLayout sizes a canvas for text using DefaultMinWidth as the width
// floor.
func EstimateLayout(text string) (Layout, error) {
	return estimate(text, DefaultMinWidth)
}

func estimate(text string, minWidth float64) (Layout, error) {
	lines := SplitLines(text)
	longest, blank := 0, true
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			blank = false
		}
		if n := utf8.RuneCountInString(line); n > longest {
			longest = n
		}
	}
	if blank {
		return Layout{}, ErrEmptyFormula
	}

	size := fontSize(longest, len(lines))
	step := lineStepFactor * size / 72
	return Layout{
		Lines:    lines,
		Longest:  longest,
		FontSize: size,
		Width:    max(minWidth, widthPerRune*float64(longest)*size),
		Height:   verticalMargin + float64(len(lines))*step,
		LineStep: step,
	}, nil
}

func fontSize(longest, lines int) float64 {
	switch {
	case longest > 50 || lines > 5:
		return smallFont
	case longest > 30 || lines > 3:
		return mediumFont
	default:
		return largeFont
	}
}

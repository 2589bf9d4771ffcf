package render

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrBadColor is returned for a color specification that cannot be parsed.
var ErrBadColor = errors.New("unrecognised color")

// single-letter shorthands understood by matplotlib
var shorthand = map[string]color.RGBA{
	"b": {0, 0, 255, 255},
	"g": {0, 128, 0, 255},
	"r": {255, 0, 0, 255},
	"c": {0, 191, 191, 255},
	"m": {191, 0, 191, 255},
	"y": {191, 191, 0, 255},
	"k": {0, 0, 0, 255},
	"w": {255, 255, 255, 255},
}

// ParseColor accepts "none", "transparent", a single-letter shorthand, an SVG
// color name or a hex triplet in #rgb, #rrggbb or #rrggbbaa form. The empty
// string parses as fallback.
func ParseColor(spec string, fallback color.Color) (color.Color, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	switch s {
	case "":
		return fallback, nil
	case "none", "transparent":
		return color.Transparent, nil
	}
	if c, ok := shorthand[s]; ok {
		return c, nil
	}
	if c, ok := colornames.Map[strings.ReplaceAll(s, " ", "")]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		if c, ok := parseHex(s[1:]); ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrBadColor, spec)
}

func parseHex(h string) (color.Color, bool) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return nil, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, false
	}
	// NRGBA keeps the straight alpha the user wrote.
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

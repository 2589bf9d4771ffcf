package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		spec     string
		expected color.Color
	}{
		{"", color.Black},
		{"none", color.Transparent},
		{"Transparent", color.Transparent},
		{"w", color.RGBA{255, 255, 255, 255}},
		{"k", color.RGBA{0, 0, 0, 255}},
		{"red", color.RGBA{255, 0, 0, 255}},
		{"Light Blue", color.RGBA{173, 216, 230, 255}},
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"#1e90ff", color.NRGBA{30, 144, 255, 255}},
		{"#00000080", color.NRGBA{0, 0, 0, 128}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			c, err := ParseColor(tt.spec, color.Black)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, spec := range []string{"nocolor", "#12", "#ggg", "#1234567", "rgb(1,2,3)"} {
		_, err := ParseColor(spec, nil)
		assert.ErrorIs(t, err, ErrBadColor, spec)
	}
}

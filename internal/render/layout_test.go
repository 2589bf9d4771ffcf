package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateLayout(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		lines    int
		fontSize float64
		width    float64
	}{
		{"short", `x^2`, 1, 20, DefaultMinWidth},
		{"medium", strings.Repeat("a", 40), 1, 16, 0.012 * 40 * 16},
		{"long", strings.Repeat("a", 60), 1, 12, 0.012 * 60 * 12},
		{"four lines", "a\nb\nc\nd", 4, 16, DefaultMinWidth},
		{"six lines", "a\nb\nc\nd\ne\nf", 6, 12, DefaultMinWidth},
		{"latex breaks", `a = 1 \\ b = 2`, 2, 20, DefaultMinWidth},
		{"wide short", strings.Repeat("a", 30), 1, 20, max(DefaultMinWidth, 0.012*30*20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := EstimateLayout(tt.text)
			require.NoError(t, err)
			assert.Len(t, l.Lines, tt.lines)
			assert.Equal(t, tt.fontSize, l.FontSize)
			assert.InDelta(t, tt.width, l.Width, 1e-9)
			assert.InDelta(t, 2.2*tt.fontSize/72, l.LineStep, 1e-12)
			assert.InDelta(t, 0.4+float64(tt.lines)*l.LineStep, l.Height, 1e-12)
		})
	}
}

func TestEstimateLayoutSingleLineFloor(t *testing.T) {
	for _, text := range []string{"x", "1", `\alpha`, "é", strings.Repeat("y", 200)} {
		l, err := EstimateLayout(text)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, l.Width, DefaultMinWidth, text)
		assert.Greater(t, l.Height, 0.0, text)
	}
}

func TestEstimateLayoutCountsRunes(t *testing.T) {
	l, err := EstimateLayout(strings.Repeat("α", 35))
	require.NoError(t, err)
	assert.Equal(t, 35, l.Longest)
	assert.Equal(t, 16.0, l.FontSize)
}

func TestEstimateLayoutEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n", `\\`, " \\\\ \n "} {
		_, err := EstimateLayout(text)
		assert.ErrorIs(t, err, ErrEmptyFormula, "%q", text)
	}
}

func TestEstimateLayoutKeepsBlankSlots(t *testing.T) {
	l, err := EstimateLayout("a\n\nb")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "b"}, l.Lines)
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb\n"))
	assert.Equal(t, []string{"a ", " b"}, SplitLines(`a \\ b`))
}

package linalg

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"gonum.org/v1/gonum/mat"
)

// MaxDim bounds each side of an input matrix
const MaxDim = 32

// values closer to zero than this print as 0
const zeroTol = 1e-10

// ErrBadMatrix is returned for input that does not describe a matrix
var ErrBadMatrix = errors.New("invalid matrix")

// ParseMatrix reads a matrix written as JSON, [[1, 2], [3, 4]], or as rows
// separated by semicolons or newlines, 1 2; 3 4.
func ParseMatrix(input string) (*mat.Dense, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadMatrix)
	}

	var rows [][]float64
	if strings.HasPrefix(s, "[[") || strings.HasPrefix(s, "[ [") {
		if err := sonic.UnmarshalString(s, &rows); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadMatrix, err)
		}
	} else {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		var err error
		if rows, err = parseRows(s); err != nil {
			return nil, err
		}
	}
	return build(rows)
}

func parseRows(s string) ([][]float64, error) {
	var rows [][]float64
	for _, line := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '\n' }) {
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", ErrBadMatrix, f)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func build(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrBadMatrix)
	}
	r, c := len(rows), len(rows[0])
	if r > MaxDim || c > MaxDim {
		return nil, fmt.Errorf("%w: %dx%d is larger than %dx%d", ErrBadMatrix, r, c, MaxDim, MaxDim)
	}
	data := make([]float64, 0, r*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("%w: row %d has %d entries, expected %d", ErrBadMatrix, i+1, len(row), c)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: entries must be finite", ErrBadMatrix)
			}
		}
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data), nil
}

// Rows returns m as nested slices with near-zero entries cleaned.
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = clean(m.At(i, j))
		}
	}
	return out
}

// FormatMatrix prints m with aligned columns, one row per line.
func FormatMatrix(m mat.Matrix) string {
	r, c := m.Dims()
	cells := make([][]string, r)
	widths := make([]int, c)
	for i, row := range Rows(m) {
		cells[i] = make([]string, c)
		for j, v := range row {
			cells[i][j] = FormatNumber(v)
			widths[j] = max(widths[j], len(cells[i][j]))
		}
	}

	var b strings.Builder
	for i, row := range cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[ ")
		for j, cell := range row {
			if j > 0 {
				b.WriteString("  ")
			}
			b.WriteString(strings.Repeat(" ", widths[j]-len(cell)))
			b.WriteString(cell)
		}
		b.WriteString(" ]")
	}
	return b.String()
}

// FormatNumber prints v with up to ten significant digits.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(clean(v), 'g', 10, 64)
}

// FormatComplex prints v as a real number when its imaginary part vanishes.
func FormatComplex(v complex128) string {
	re, im := clean(real(v)), clean(imag(v))
	switch {
	case im == 0:
		return FormatNumber(re)
	case re == 0:
		return FormatNumber(im) + "i"
	case im < 0:
		return FormatNumber(re) + " - " + FormatNumber(-im) + "i"
	default:
		return FormatNumber(re) + " + " + FormatNumber(im) + "i"
	}
}

// clean maps values within zeroTol of zero, and negative zero, to 0 and
// rounds away float noise in the last digits.
func clean(v float64) float64 {
	if math.Abs(v) < zeroTol {
		return 0
	}
	if r := math.Round(v); math.Abs(v-r) < zeroTol*math.Max(1, math.Abs(v)) {
		return r
	}
	return v
}

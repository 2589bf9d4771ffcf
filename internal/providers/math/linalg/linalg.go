package linalg

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/GriffinCanCode/latexbot/internal/providers/math/common"
	"github.com/GriffinCanCode/latexbot/internal/types"
)

// relative singular value cutoff for rank
const rankCond = 1e-10

var (
	binaryOps = []string{"add", "subtract", "multiply", "solve"}
	unaryOps  = []string{"determinant", "inverse", "transpose", "eigenvalues", "rank"}
)

// LinalgOps handles matrix arithmetic and decompositions
type LinalgOps struct {
	*common.MathOps
}

// GetTools returns linear algebra tool definitions
func (l *LinalgOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "math.matrix",
			Name:        "matrix",
			Description: "Matrix operations; write matrices as [[1, 2], [3, 4]] or 1 2; 3 4",
			Category:    types.CategoryLinalg,
			Parameters: []types.Parameter{
				{Name: "matrix1", Type: types.TypeString, Description: "First matrix", Required: true},
				{Name: "matrix2", Type: types.TypeString, Description: "Second matrix for add, subtract, multiply and solve"},
				{Name: "operation", Type: types.TypeString, Description: "Operation to apply", Default: "multiply", Choices: append(slices.Clone(binaryOps), unaryOps...)},
			},
			Returns: "text",
		},
	}
}

// Matrix applies one operation to one or two matrices.
func (l *LinalgOps) Matrix(ctx context.Context, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	input, err := common.RequireString(params, "matrix1")
	if err != nil {
		return common.Error(err)
	}
	a, err := ParseMatrix(input)
	if err != nil {
		return common.Error(fmt.Errorf("matrix1: %w", err))
	}

	var b *mat.Dense
	second, _ := common.GetString(params, "matrix2")
	if second != "" {
		if b, err = ParseMatrix(second); err != nil {
			return common.Error(fmt.Errorf("matrix2: %w", err))
		}
	}

	def := "determinant"
	if b != nil {
		def = "multiply"
	}
	op, err := common.Choice(params, "operation", def, append(slices.Clone(binaryOps), unaryOps...)...)
	if err != nil {
		return common.Error(err)
	}
	if slices.Contains(binaryOps, op) && b == nil {
		return common.Failuref("Error: %s needs matrix2", op)
	}

	data := map[string]interface{}{"operation": op}
	var text string
	switch op {
	case "add", "subtract":
		text, err = l.sum(a, b, op == "subtract", data)
	case "multiply":
		text, err = l.multiply(a, b, data)
	case "solve":
		text, err = l.solve(a, b, data)
	case "determinant":
		text, err = l.determinant(a, data)
	case "inverse":
		text, err = l.inverse(a, data)
	case "transpose":
		text = setMatrix(data, a.T())
	case "eigenvalues":
		text, err = l.eigenvalues(a, data)
	case "rank":
		text = l.rank(a, data)
	}
	if err != nil {
		return common.Error(err)
	}
	return common.Reply(text, data)
}

func (l *LinalgOps) sum(a, b *mat.Dense, subtract bool, data map[string]interface{}) (string, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return "", fmt.Errorf("cannot combine a %dx%d matrix with a %dx%d matrix", ar, ac, br, bc)
	}
	var out mat.Dense
	if subtract {
		out.Sub(a, b)
	} else {
		out.Add(a, b)
	}
	return setMatrix(data, &out), nil
}

func (l *LinalgOps) multiply(a, b *mat.Dense, data map[string]interface{}) (string, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		return "", fmt.Errorf("cannot multiply a %dx%d matrix by a %dx%d matrix", ar, ac, br, bc)
	}
	var out mat.Dense
	out.Mul(a, b)
	return setMatrix(data, &out), nil
}

// solve finds X with A X = B.
func (l *LinalgOps) solve(a, b *mat.Dense, data map[string]interface{}) (string, error) {
	if err := square(a); err != nil {
		return "", err
	}
	ar, _ := a.Dims()
	if br, _ := b.Dims(); br != ar {
		return "", fmt.Errorf("right-hand side has %d rows, expected %d", br, ar)
	}
	var x mat.Dense
	if err := x.Solve(a, b); err != nil {
		return "", fmt.Errorf("matrix is singular or nearly so: %w", err)
	}
	return setMatrix(data, &x), nil
}

func (l *LinalgOps) determinant(a *mat.Dense, data map[string]interface{}) (string, error) {
	if err := square(a); err != nil {
		return "", err
	}
	det := clean(mat.Det(a))
	data["result"] = det
	return "Determinant: " + FormatNumber(det), nil
}

func (l *LinalgOps) inverse(a *mat.Dense, data map[string]interface{}) (string, error) {
	if err := square(a); err != nil {
		return "", err
	}
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return "", fmt.Errorf("matrix is singular or nearly so: %w", err)
	}
	return setMatrix(data, &inv), nil
}

func (l *LinalgOps) eigenvalues(a *mat.Dense, data map[string]interface{}) (string, error) {
	if err := square(a); err != nil {
		return "", err
	}
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return "", fmt.Errorf("eigenvalue decomposition did not converge")
	}
	vals := eig.Values(nil)
	slices.SortFunc(vals, func(x, y complex128) int {
		if c := cmp.Compare(clean(real(x)), clean(real(y))); c != 0 {
			return c
		}
		return cmp.Compare(clean(imag(x)), clean(imag(y)))
	})

	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = FormatComplex(v)
	}
	data["result"] = out
	return "Eigenvalues: " + strings.Join(out, ", "), nil
}

func (l *LinalgOps) rank(a *mat.Dense, data map[string]interface{}) string {
	var svd mat.SVD
	rank := 0
	if svd.Factorize(a, mat.SVDNone) {
		rank = svd.Rank(rankCond)
	}
	data["result"] = rank
	return fmt.Sprintf("Rank: %d", rank)
}

func square(a mat.Matrix) error {
	r, c := a.Dims()
	if r != c {
		return fmt.Errorf("matrix must be square, got %dx%d", r, c)
	}
	return nil
}

func setMatrix(data map[string]interface{}, m mat.Matrix) string {
	r, c := m.Dims()
	data["result"] = Rows(m)
	data["rows"], data["cols"] = r, c
	return "Result:\n```\n" + FormatMatrix(m) + "\n```"
}

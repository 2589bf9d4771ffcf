package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/latexbot/internal/types"
)

type mockProvider struct {
	id      string
	execute func(toolID string) (*types.Result, error)
}

func (m *mockProvider) Definition() types.Service {
	return types.Service{
		ID:          m.id,
		Name:        "Mock Service",
		Description: "A mock service for testing",
		Category:    types.CategoryMath,
		Tools: []types.Tool{
			{
				ID:          m.id + ".solve",
				Name:        "solve",
				Description: "Solve an equation for its unknown",
				Category:    types.CategoryAlgebra,
			},
			{
				ID:          m.id + ".plot",
				Name:        "plot",
				Description: "Plot a function over an interval",
				Category:    types.CategoryGraphics,
				Parameters:  []types.Parameter{{Name: "equation", Type: types.TypeString, Required: true}},
			},
		},
	}
}

func (m *mockProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if m.execute != nil {
		return m.execute(toolID)
	}
	return &types.Result{Success: true, Text: "ok"}, nil
}

func TestRegister(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&mockProvider{id: "math"}))
	assert.Error(t, r.Register(&mockProvider{id: "math"}), "duplicate")
	assert.Error(t, r.Register(&mockProvider{id: ""}))

	_, ok := r.Get("math")
	assert.True(t, ok)
}

func TestListSorted(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&mockProvider{id: "b"}))
	require.NoError(t, r.Register(&mockProvider{id: "a"}))

	services := r.List(nil)
	require.Len(t, services, 2)
	assert.Equal(t, "a", services[0].ID)

	cat := types.CategoryLinalg
	assert.Empty(t, r.List(&cat))
}

func TestTool(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&mockProvider{id: "math"}))

	tool, ok := r.Tool("math.plot")
	require.True(t, ok)
	assert.Equal(t, "plot", tool.Name)

	_, ok = r.Tool("math.nope")
	assert.False(t, ok)
	_, ok = r.Tool("nodot")
	assert.False(t, ok)
}

func TestDiscover(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&mockProvider{id: "math"}))

	results := r.Discover("plot a function", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "math.plot", results[0].ID)

	assert.Len(t, r.Discover("solve plot", 1), 1)
	assert.Empty(t, r.Discover("zzz", 5))
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name    string
		toolID  string
		execute func(string) (*types.Result, error)
		success bool
		message string
		wantErr error
	}{
		{
			name:    "success",
			toolID:  "math.solve",
			success: true,
			message: "ok",
		},
		{
			name:    "invalid id",
			toolID:  "solve",
			message: "invalid tool ID: solve",
			wantErr: ErrInvalidToolID,
		},
		{
			name:    "unknown service",
			toolID:  "chem.balance",
			message: "service not found: chem",
			wantErr: ErrServiceNotFound,
		},
		{
			name:   "provider panic",
			toolID: "math.solve",
			execute: func(string) (*types.Result, error) {
				var m map[string]int
				m["boom"]++
				return nil, nil
			},
			message: "Error: internal failure while running math.solve",
			wantErr: ErrPanic,
		},
		{
			name:   "provider error without result",
			toolID: "math.solve",
			execute: func(string) (*types.Result, error) {
				return nil, errors.New("backend down")
			},
			message: "Error: backend down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(nil)
			require.NoError(t, r.Register(&mockProvider{id: "math", execute: tt.execute}))

			result, err := r.Execute(context.Background(), tt.toolID, nil, nil)
			require.NotNil(t, result)
			assert.Equal(t, tt.success, result.Success)
			assert.Equal(t, tt.message, result.Message())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.success {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStats(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&mockProvider{id: "a"}))
	require.NoError(t, r.Register(&mockProvider{id: "b"}))

	stats := r.Stats()
	assert.Equal(t, 2, stats["total_services"])
	assert.Equal(t, 4, stats["total_tools"])
	assert.Equal(t, map[string]int{"algebra": 2, "graphics": 2}, stats["categories"])
}

package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/latexbot/internal/types"
)

var (
	// ErrInvalidToolID is returned for a tool ID without a service prefix.
	ErrInvalidToolID = errors.New("invalid tool ID format")
	// ErrServiceNotFound is returned when no provider owns a tool ID.
	ErrServiceNotFound = errors.New("service not found")
	// ErrPanic is returned when a provider panics.
	ErrPanic = errors.New("tool panicked")
)

// Registry manages tool providers and routes executions to them
type Registry struct {
	services sync.Map
	logger   *zap.Logger
}

// Provider interface for service implementations
type Provider interface {
	Definition() types.Service
	Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error)
}

// NewRegistry creates a new service registry
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// Register adds a service provider
func (r *Registry) Register(provider Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return fmt.Errorf("service ID cannot be empty")
	}
	if _, loaded := r.services.LoadOrStore(def.ID, provider); loaded {
		return fmt.Errorf("service %q already registered", def.ID)
	}
	return nil
}

// Get retrieves a service by ID
func (r *Registry) Get(serviceID string) (Provider, bool) {
	val, ok := r.services.Load(serviceID)
	if !ok {
		return nil, false
	}
	return val.(Provider), true
}

// List returns all registered services ordered by ID
func (r *Registry) List(category *types.Category) []types.Service {
	var services []types.Service
	r.services.Range(func(_, value interface{}) bool {
		def := value.(Provider).Definition()
		if category == nil || def.Category == *category {
			services = append(services, def)
		}
		return true
	})
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services
}

// Tool looks up a tool definition by ID
func (r *Registry) Tool(toolID string) (types.Tool, bool) {
	serviceID, _, ok := strings.Cut(toolID, ".")
	if !ok {
		return types.Tool{}, false
	}
	provider, ok := r.Get(serviceID)
	if !ok {
		return types.Tool{}, false
	}
	for _, tool := range provider.Definition().Tools {
		if tool.ID == toolID {
			return tool, true
		}
	}
	return types.Tool{}, false
}

// Discover ranks tools by how well they match a free-text query
func (r *Registry) Discover(query string, limit int) []types.Tool {
	type scoredTool struct {
		tool  types.Tool
		score float64
	}

	q := strings.ToLower(query)
	var results []scoredTool
	r.services.Range(func(_, value interface{}) bool {
		for _, tool := range value.(Provider).Definition().Tools {
			if score := relevance(q, tool); score > 0 {
				results = append(results, scoredTool{tool: tool, score: score})
			}
		}
		return true
	})

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].tool.ID < results[j].tool.ID
	})

	output := make([]types.Tool, 0, limit)
	for i := 0; i < len(results) && i < limit; i++ {
		output = append(output, results[i].tool)
	}
	return output
}

// Execute runs a tool. It never panics: provider errors and panics become a
// failed Result carrying a message for the user, along with the error.
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (result *types.Result, err error) {
	serviceID, _, ok := strings.Cut(toolID, ".")
	if !ok {
		return failure(fmt.Sprintf("invalid tool ID: %s", toolID)), fmt.Errorf("%w: %s", ErrInvalidToolID, toolID)
	}
	provider, ok := r.Get(serviceID)
	if !ok {
		return failure(fmt.Sprintf("service not found: %s", serviceID)), fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("tool panicked",
				zap.String("tool", toolID),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()),
			)
			result = failure(fmt.Sprintf("Error: internal failure while running %s", toolID))
			err = fmt.Errorf("%w: %s: %v", ErrPanic, toolID, p)
		}
	}()

	result, err = provider.Execute(ctx, toolID, params, appCtx)
	if err != nil {
		if result == nil {
			result = failure("Error: " + err.Error())
		}
		return result, err
	}
	if result == nil {
		return failure("Error: no result"), fmt.Errorf("tool %s returned no result", toolID)
	}
	return result, nil
}

// Stats returns registry statistics
func (r *Registry) Stats() map[string]interface{} {
	var total, totalTools int
	categories := make(map[string]int)

	r.services.Range(func(_, value interface{}) bool {
		def := value.(Provider).Definition()
		total++
		totalTools += len(def.Tools)
		for _, tool := range def.Tools {
			categories[string(tool.Category)]++
		}
		return true
	})

	return map[string]interface{}{
		"total_services": total,
		"total_tools":    totalTools,
		"categories":     categories,
	}
}

func relevance(query string, tool types.Tool) float64 {
	score := 0.0
	if strings.Contains(query, strings.ToLower(tool.Name)) || strings.Contains(query, tool.ID) {
		score += 10.0
	}
	for _, word := range strings.Fields(strings.ToLower(tool.Description)) {
		if len(word) > 3 && strings.Contains(query, word) {
			score += 3.0
		}
	}
	for _, p := range tool.Parameters {
		for _, choice := range p.Choices {
			if strings.Contains(query, choice) {
				score += 5.0
			}
		}
	}
	if strings.Contains(query, string(tool.Category)) {
		score += 2.0
	}
	return score
}

func failure(msg string) *types.Result {
	return &types.Result{Success: false, Error: &msg}
}

package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/latexbot/internal/api/middleware"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/latexbot/internal/service"
	"github.com/GriffinCanCode/latexbot/internal/types"
)

// Source labels metrics and tool contexts for API calls
const Source = "http"

const (
	defaultDiscoverLimit = 10
	maxBodyBytes         = 64 << 10
)

// Handlers serves the ops API
type Handlers struct {
	registry *service.Registry
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	timeout  time.Duration
}

// NewHandlers creates the API handlers. timeout bounds each execution.
func NewHandlers(registry *service.Registry, metrics *monitoring.Metrics, logger *zap.Logger, timeout time.Duration) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handlers{
		registry: registry,
		metrics:  metrics,
		logger:   logger,
		timeout:  timeout,
	}
}

// Root describes the service
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "latexbot",
		"status":  "running",
	})
}

// Health reports liveness with command counters and registry statistics
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"metrics":  h.metrics.Snapshot(),
		"registry": h.registry.Stats(),
	})
}

// ListCommands lists every tool, or the best matches for ?q=
func (h *Handlers) ListCommands(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		var tools []types.Tool
		for _, svc := range h.registry.List(nil) {
			tools = append(tools, svc.Tools...)
		}
		c.JSON(http.StatusOK, gin.H{"tools": tools, "count": len(tools)})
		return
	}

	limit := defaultDiscoverLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	tools := h.registry.Discover(query, limit)
	c.JSON(http.StatusOK, gin.H{"tools": tools, "count": len(tools)})
}

// ExecuteCommand runs a tool. The JSON result carries attachments base64
// encoded; ?format=png returns the first image itself.
func (h *Handlers) ExecuteCommand(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var req types.ExecuteRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}
	if req.ToolID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "tool_id is required"})
		return
	}
	if _, ok := h.registry.Tool(req.ToolID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "unknown tool: " + req.ToolID})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	requestID := middleware.GetRequestID(c)
	timer := monitoring.NewTimer(h.metrics, Source, toolName(req.ToolID))
	result, err := h.registry.Execute(ctx, req.ToolID, req.Params, &types.Context{
		RequestID: requestID,
		Source:    Source,
	})
	timer.Stop(result.Success)
	if err != nil {
		h.logger.Warn("tool error",
			zap.String("request_id", requestID),
			zap.String("tool", req.ToolID),
			zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"success": false, "error": "tool timed out"})
			return
		}
	}
	for _, a := range result.Attachments {
		h.metrics.RecordImage(strings.TrimSuffix(a.Name, ".png"), len(a.Data))
	}

	if c.Query("format") == "png" && len(result.Attachments) > 0 {
		// header follows the bytes, not the declared type
		a := result.Attachments[0]
		c.Data(http.StatusOK, mimetype.Detect(a.Data).String(), a.Data)
		return
	}

	out, err := sonic.Marshal(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

func readBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		return nil, errors.New("request body too large or unreadable")
	}
	return body, nil
}

func toolName(toolID string) string {
	if _, name, ok := strings.Cut(toolID, "."); ok {
		return name
	}
	return toolID
}

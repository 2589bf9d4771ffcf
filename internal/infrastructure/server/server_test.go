package server

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/latexbot/internal/infrastructure/config"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/monitoring"
	mathprovider "github.com/GriffinCanCode/latexbot/internal/providers/math"
	"github.com/GriffinCanCode/latexbot/internal/render"
	"github.com/GriffinCanCode/latexbot/internal/service"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *monitoring.Metrics) {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	registry := service.NewRegistry(nil)
	renderer := render.NewRenderer(render.Options{DPI: 72}, nil)
	require.NoError(t, registry.Register(mathprovider.NewProvider(renderer, nil)))

	return NewServer(cfg, Deps{Registry: registry, Metrics: metrics, Gatherer: reg}), metrics
}

func do(s *Server, method, target, body string, header ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(s, nethttp.MethodGet, "/health", "")
	require.Equal(t, nethttp.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	registry := body["registry"].(map[string]interface{})
	assert.EqualValues(t, 7, registry["total_tools"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestListCommands(t *testing.T) {
	s, _ := newTestServer(t, nil)

	body := decode(t, do(s, nethttp.MethodGet, "/commands", ""))
	assert.EqualValues(t, 7, body["count"])

	body = decode(t, do(s, nethttp.MethodGet, "/commands?q=eigenvalues+of+a+matrix&limit=1", ""))
	require.EqualValues(t, 1, body["count"])
	tool := body["tools"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "math.matrix", tool["id"])

	w := do(s, nethttp.MethodGet, "/commands?q=plot&limit=zero", "")
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}

func TestExecuteSolve(t *testing.T) {
	s, metrics := newTestServer(t, nil)

	w := do(s, nethttp.MethodPost, "/commands/execute",
		`{"tool_id":"math.solve","params":{"equation":"x**2 - 4 = 0"}}`)
	require.Equal(t, nethttp.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Solution: [-2, 2]", body["text"])
	assert.EqualValues(t, 1, metrics.Snapshot().Commands)
}

func TestExecuteReportsBadInput(t *testing.T) {
	s, metrics := newTestServer(t, nil)

	w := do(s, nethttp.MethodPost, "/commands/execute",
		`{"tool_id":"math.solve","params":{"equation":"x ** ** 2"}}`)
	require.Equal(t, nethttp.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "Error:")
	assert.EqualValues(t, 1, metrics.Snapshot().Failures)
}

func TestExecuteRejectsBadRequests(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"not json", `{"tool_id":`, nethttp.StatusBadRequest},
		{"no tool", `{"params":{}}`, nethttp.StatusBadRequest},
		{"unknown tool", `{"tool_id":"math.nope"}`, nethttp.StatusNotFound},
		{"unknown service", `{"tool_id":"chem.balance"}`, nethttp.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, nethttp.MethodPost, "/commands/execute", tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, false, decode(t, w)["success"])
		})
	}
}

func TestExecuteReturnsImage(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(s, nethttp.MethodPost, "/commands/execute?format=png",
		`{"tool_id":"math.latex","params":{"formula":"x^2"}}`)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)

	do(s, nethttp.MethodGet, "/health", "")
	w := do(s, nethttp.MethodGet, "/metrics", "")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "latexbot_http_requests_total")
}

func TestGzip(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(s, nethttp.MethodGet, "/commands", "", "Accept-Encoding", "gzip")
	require.Equal(t, nethttp.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(plain), "math.latex")
}

func TestRateLimit(t *testing.T) {
	s, metrics := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.RequestsPerSecond = 1
		cfg.RateLimit.Burst = 1
	})

	assert.Equal(t, nethttp.StatusOK, do(s, nethttp.MethodGet, "/", "").Code)
	assert.Equal(t, nethttp.StatusTooManyRequests, do(s, nethttp.MethodGet, "/", "").Code)
	assert.EqualValues(t, 1, metrics.Snapshot().RateLimited)
}

package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	CommandErrors   *prometheus.CounterVec
	RateLimited     *prometheus.CounterVec

	// Rendering metrics
	ImagesRendered *prometheus.CounterVec
	ImageBytes     *prometheus.HistogramVec

	// Chat gateway metrics
	GatewayConnected prometheus.Gauge
	BreakerState     *prometheus.GaugeVec

	startTime time.Time

	// Snapshot for the JSON health endpoint
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	Commands      int64   `json:"commands"`
	Failures      int64   `json:"failures"`
	RateLimited   int64   `json:"rate_limited"`
	Images        int64   `json:"images"`
	TotalDuration float64 `json:"total_duration_seconds"`
	Uptime        float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector registered with reg. A nil reg
// uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "latexbot_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "latexbot_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "latexbot_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Command metrics
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "latexbot_commands_total",
				Help: "Total number of commands executed",
			},
			[]string{"source", "command", "status"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "latexbot_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"command"},
		),
		CommandErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "latexbot_command_errors_total",
				Help: "Total number of failed commands",
			},
			[]string{"command", "error_type"},
		),
		RateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "latexbot_rate_limited_total",
				Help: "Requests rejected by a rate limiter",
			},
			[]string{"source"},
		),

		// Rendering metrics
		ImagesRendered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "latexbot_images_rendered_total",
				Help: "Total number of images rendered",
			},
			[]string{"kind"},
		),
		ImageBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "latexbot_image_bytes",
				Help:    "Encoded image size in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 2, 12),
			},
			[]string{"kind"},
		),

		// Chat gateway metrics
		GatewayConnected: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "latexbot_gateway_connected",
				Help: "1 while the chat gateway session is open",
			},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "latexbot_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "latexbot_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordCommand records one command execution
func (m *Metrics) RecordCommand(source, command string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.CommandsTotal.WithLabelValues(source, command, status).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Commands++
	m.snapshot.TotalDuration += duration.Seconds()
	if !success {
		m.snapshot.Failures++
	}
	m.mu.Unlock()
}

// RecordCommandError records a failed command by error class
func (m *Metrics) RecordCommandError(command, errorType string) {
	m.CommandErrors.WithLabelValues(command, errorType).Inc()
}

// RecordRateLimited records a rejected request
func (m *Metrics) RecordRateLimited(source string) {
	m.RateLimited.WithLabelValues(source).Inc()
	m.mu.Lock()
	m.snapshot.RateLimited++
	m.mu.Unlock()
}

// RecordImage records an encoded image
func (m *Metrics) RecordImage(kind string, size int) {
	m.ImagesRendered.WithLabelValues(kind).Inc()
	m.ImageBytes.WithLabelValues(kind).Observe(float64(size))
	m.mu.Lock()
	m.snapshot.Images++
	m.mu.Unlock()
}

// SetGatewayConnected records the chat gateway state
func (m *Metrics) SetGatewayConnected(up bool) {
	if up {
		m.GatewayConnected.Set(1)
		return
	}
	m.GatewayConnected.Set(0)
}

// SetBreakerState records a circuit breaker state
func (m *Metrics) SetBreakerState(name string, state int) {
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// Snapshot returns the current counters
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	s.Uptime = time.Since(m.startTime).Seconds()
	return s
}

package server

import (
	"context"
	"errors"
	"net"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/latexbot/internal/api/http"
	"github.com/GriffinCanCode/latexbot/internal/api/middleware"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/config"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/latexbot/internal/service"
	"github.com/GriffinCanCode/latexbot/internal/shared/id"
)

const shutdownGrace = 10 * time.Second

// Deps are the components the ops server exposes
type Deps struct {
	Registry *service.Registry
	Metrics  *monitoring.Metrics
	// Gatherer serves /metrics. Nil uses the default Prometheus registry.
	Gatherer prometheus.Gatherer
	Logger   *logging.Logger
}

// Server wraps the HTTP server and dependencies
type Server struct {
	router *gin.Engine
	http   *nethttp.Server
	logger *logging.Logger
}

// NewServer creates the ops server: health, metrics and the command API
func NewServer(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(id.Default()))
	router.Use(monitoring.Middleware(deps.Metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			OnLimited: func(*gin.Context) {
				deps.Metrics.RecordRateLimited(http.Source)
			},
		}))
	}

	handlers := http.NewHandlers(deps.Registry, deps.Metrics, logger.Component("api"), cfg.Discord.CommandTimeout)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Commands
	router.GET("/commands", handlers.ListCommands)
	router.POST("/commands/execute", handlers.ExecuteCommand)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	return &Server{
		router: router,
		http: &nethttp.Server{
			Addr:              addr,
			Handler:           gzhttp.GzipHandler(router),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the root handler, compression included
func (s *Server) Handler() nethttp.Handler {
	return s.http.Handler
}

// Run serves until Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	return s.http.Shutdown(ctx)
}

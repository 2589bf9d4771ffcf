package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/latexbot/internal/bot"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/config"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/latexbot/internal/infrastructure/server"
	mathProvider "github.com/GriffinCanCode/latexbot/internal/providers/math"
	"github.com/GriffinCanCode/latexbot/internal/render"
	"github.com/GriffinCanCode/latexbot/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Parse flags
	envFile := flag.String("env", ".env", "Dotenv file read before the environment")
	dev := flag.Bool("dev", false, "Development logging (colored, debug level)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Bot stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	// Metrics first, every component records into them
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(promRegistry)

	renderer := render.NewRenderer(render.Options{
		DPI:        cfg.Render.DPI,
		MinWidth:   cfg.Render.MinWidth,
		Background: cfg.Render.Background,
		Foreground: cfg.Render.Foreground,
		Samples:    cfg.Render.PlotSamples,
	}, logger.Component("render"))

	registry := service.NewRegistry(logger.Component("registry"))
	if err := registry.Register(mathProvider.NewProvider(renderer, logger.Logger)); err != nil {
		return err
	}

	catalog, err := bot.LoadCatalog()
	if err != nil {
		return err
	}
	if err := catalog.CheckTools(func(toolID string) bool {
		_, ok := registry.Tool(toolID)
		return ok
	}); err != nil {
		return err
	}

	b, err := bot.New(bot.Options{
		Config:   cfg.Discord,
		Catalog:  catalog,
		Executor: registry,
		Metrics:  metrics,
		Logger:   logger.Component("bot"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.NewServer(cfg, server.Deps{
			Registry: registry,
			Metrics:  metrics,
			Gatherer: promRegistry,
			Logger:   logger,
		})
		go func() {
			if err := srv.Run(); err != nil {
				errChan <- err
			}
		}()
	}

	if err := b.Open(); err != nil {
		return err
	}
	logger.Info("Bot running",
		zap.String("guild", cfg.Discord.GuildID),
		zap.Bool("ops_server", cfg.Server.Enabled),
	)

	// Wait for shutdown signal or error
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		logger.Error("Server error", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := b.Close(shutdownCtx); err != nil {
		logger.Warn("Failed to close gateway", zap.Error(err))
	}
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to stop HTTP server", zap.Error(err))
		}
	}
	return runErr
}

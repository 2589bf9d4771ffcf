/*
Package monitoring provides Prometheus metrics for commands, rendering and
the ops HTTP server.

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time a command
	timer := monitoring.NewTimer(metrics, "discord", "latex")
	// ... execute ...
	timer.Stop(result.Success)

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring

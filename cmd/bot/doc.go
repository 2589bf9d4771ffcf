// Package main runs the math bot.
//
// The bot answers Discord slash commands with rendered LaTeX, plots,
// equation solutions, symbolic algebra, matrix results and integral
// transforms. A small ops server runs beside the gateway session.
//
// Architecture:
//
//	Discord gateway → bot → tool registry → math provider → renderer
//	HTTP ops API   ↗
//
// The ops server provides:
//   - /health with command counters
//   - /metrics for Prometheus
//   - /commands to list and run tools without Discord
//
// Configuration:
//   - Environment variables (12-factor), DISCORD_TOKEN is required
//   - A .env file, overridden by the environment
//   - Defaults for everything else
//
// Usage:
//
//	# Production mode
//	DISCORD_TOKEN=... ./bot
//
//	# Development mode (colored logs, debug level)
//	./bot -dev -env local.env
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main

// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
//	logger.Info("Bot starting", zap.String("guild", cfg.Discord.GuildID))
//	render.NewRenderer(opts, logger.Component("render"))
package logging

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Discord   DiscordConfig
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Render    RenderConfig
}

// DiscordConfig holds chat gateway configuration.
type DiscordConfig struct {
	Token string `envconfig:"DISCORD_TOKEN" required:"true"`
	// GuildID registers commands on one guild, which applies instantly.
	// Empty registers them globally.
	GuildID        string        `envconfig:"DISCORD_GUILD_ID"`
	CommandTimeout time.Duration `envconfig:"COMMAND_TIMEOUT" default:"30s"`
	UserRate       float64       `envconfig:"USER_RATE_LIMIT" default:"0.5"`
	UserBurst      int           `envconfig:"USER_RATE_BURST" default:"3"`
	BreakerTimeout time.Duration `envconfig:"BREAKER_TIMEOUT" default:"30s"`
}

// ServerConfig holds ops HTTP server configuration.
type ServerConfig struct {
	Port    string `envconfig:"PORT" default:"8000"`
	Host    string `envconfig:"HOST" default:"0.0.0.0"`
	Enabled bool   `envconfig:"SERVER_ENABLED" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds HTTP rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"10"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"20"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// RenderConfig holds image rendering configuration.
type RenderConfig struct {
	DPI         int     `envconfig:"RENDER_DPI" default:"300"`
	MinWidth    float64 `envconfig:"RENDER_MIN_WIDTH" default:"4"`
	Background  string  `envconfig:"RENDER_BG" default:"none"`
	Foreground  string  `envconfig:"RENDER_FG" default:"white"`
	PlotSamples int     `envconfig:"PLOT_SAMPLES" default:"500"`
}

// Load reads the given dotenv files, ".env" when none are named, and then
// the environment. Variables already set in the environment win over the
// files. Missing files are skipped.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values that would fail later at runtime.
func (c *Config) Validate() error {
	switch {
	case c.Render.DPI <= 0:
		return fmt.Errorf("invalid config: RENDER_DPI must be positive, got %d", c.Render.DPI)
	case c.Render.MinWidth <= 0:
		return fmt.Errorf("invalid config: RENDER_MIN_WIDTH must be positive, got %v", c.Render.MinWidth)
	case c.Render.PlotSamples < 2:
		return fmt.Errorf("invalid config: PLOT_SAMPLES must be at least 2, got %d", c.Render.PlotSamples)
	case c.Discord.CommandTimeout <= 0:
		return fmt.Errorf("invalid config: COMMAND_TIMEOUT must be positive, got %s", c.Discord.CommandTimeout)
	case c.Discord.UserRate <= 0 || c.Discord.UserBurst <= 0:
		return fmt.Errorf("invalid config: USER_RATE_LIMIT and USER_RATE_BURST must be positive")
	}
	return nil
}

// Default returns default configuration without a token.
func Default() *Config {
	return &Config{
		Discord: DiscordConfig{
			CommandTimeout: 30 * time.Second,
			UserRate:       0.5,
			UserBurst:      3,
			BreakerTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Port:    "8000",
			Host:    "0.0.0.0",
			Enabled: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             20,
			Enabled:           true,
		},
		Render: RenderConfig{
			DPI:         300,
			MinWidth:    4,
			Background:  "none",
			Foreground:  "white",
			PlotSamples: 500,
		},
	}
}

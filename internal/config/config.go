// Package config loads bot configuration from the environment.
package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries everything the process needs at startup. Values come
// from environment variables, optionally seeded from a .env file in the
// working directory.
type Config struct {
	DiscordToken     string `env:"DISCORD_TOKEN,required"`
	Prefix           string `env:"PREFIX" envDefault:"!"`
	DevGuildID       string `env:"DEV_GUILD_ID"`
	DatabasePath     string `env:"DATABASE_PATH" envDefault:"hybridkit.db"`
	CommandCachePath string `env:"COMMAND_CACHE_PATH"`
	SentryDSN        string `env:"SENTRY_DSN"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads the configuration. A missing .env file is not an error;
// the process environment alone is enough.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config describes all runtime settings for the server. Loaded once in
// main, validated, then passed down; no globals.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DefaultHandSize int    `env:"DEFAULT_HAND_SIZE" envDefault:"5"`
	StaticDir       string `env:"STATIC_DIR" envDefault:"public"`

	DiscordWebhookURL string `env:"DISCORD_WEBHOOK_URL"`
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("HTTP_ADDR is empty")
	}
	if c.Env != "dev" && c.Env != "stage" && c.Env != "prod" {
		return fmt.Errorf("unsupported APP_ENV=%q (want dev|stage|prod)", c.Env)
	}
	if c.DefaultHandSize < 1 || c.DefaultHandSize > 10 {
		return fmt.Errorf("DEFAULT_HAND_SIZE=%d out of range (want 1..10)", c.DefaultHandSize)
	}
	return nil
}

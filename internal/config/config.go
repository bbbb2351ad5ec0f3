package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"MDTS Inventory"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"mdts"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
		// Disabled turns off bearer token checks (local development only).
		Disabled bool `envconfig:"AUTH_DISABLED" default:"false"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Transfers struct {
		DefaultPerPage int `envconfig:"TRANSFERS_DEFAULT_PER_PAGE" default:"10"`
		MaxPerPage     int `envconfig:"TRANSFERS_MAX_PER_PAGE" default:"100"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET is required unless AUTH_DISABLED=true")

// APISecret returns the secret bearer tokens are checked against. It is empty
// only when AUTH_DISABLED is set.
func (c *Config) APISecret() (string, error) {
	if c.Auth.Disabled {
		return "", nil
	}

	if c.Auth.JWTSecret == "" {
		return "", ErrMissingJWTSecret
	}

	return c.Auth.JWTSecret, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Transfers.DefaultPerPage < 1 || cfg.Transfers.DefaultPerPage > cfg.Transfers.MaxPerPage {
		return nil, fmt.Errorf("TRANSFERS_DEFAULT_PER_PAGE must be between 1 and %d", cfg.Transfers.MaxPerPage)
	}

	return &cfg, nil
}

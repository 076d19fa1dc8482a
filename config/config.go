package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Aravind-528/StyleKart/payment"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"stylekart"`
	JWTSecret  string `envconfig:"JWT_SECRET"`
	Port       string `envconfig:"PORT" default:"8080"`
	Env        string `envconfig:"ENV" default:"development"`

	// Comma-separated admin email whitelist for the order management routes.
	AdminEmails string `envconfig:"ADMIN_EMAILS"`

	Cashfree  payment.CashfreeConfig
	SprintNxt payment.SprintNxtConfig
}

// App is the loaded application configuration.
var App *Config

// LoadConfig loads configuration from the environment, reading a .env file
// first when one is present.
func LoadConfig() (*Config, error) {
	// A missing .env file is fine in deployed environments.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment config: %v", err)
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	App = &cfg
	return &cfg, nil
}

// IsProduction reports whether the service runs with the production flag.
// Security-sensitive fallbacks (plain webhook payloads) are rejected when set.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// AdminWhitelist returns the normalized admin email whitelist.
func (c *Config) AdminWhitelist() []string {
	if c.AdminEmails == "" {
		return nil
	}
	parts := strings.Split(c.AdminEmails, ",")
	emails := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(p)); trimmed != "" {
			emails = append(emails, trimmed)
		}
	}
	return emails
}

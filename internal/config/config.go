// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the war server needs at startup.
type Config struct {
	Port         int    `env:"WARSERVER_PORT" envDefault:"8080"`
	DBPath       string `env:"WARSERVER_DB" envDefault:"data/housewars.db"`
	AdminKey     string `env:"WARSERVER_ADMIN_KEY"`           // Empty disables mutating endpoints.
	RandomOrgKey string `env:"WARSERVER_RANDOM_ORG_KEY"`      // Empty falls back to crypto/rand.
	WorldSeed    int64  `env:"WARSERVER_WORLD_SEED" envDefault:"42"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

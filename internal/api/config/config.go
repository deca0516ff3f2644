package config

import (
	"fmt"

	"golang-market-intel/pkg/config"
)

// Config holds the full configuration for the read API service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Store    config.Store    `mapstructure:"store"`
	Database config.Database `mapstructure:"database"`
	Mongo    config.Mongo    `mapstructure:"mongo"`
	API      config.API      `mapstructure:"api"`
}

// Load loads the API configuration from the given path and the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	err := config.Load(path, &cfg, config.StoreDefaults, map[string]interface{}{
		"app.name": "market-intel-api",
		"api.host": "",
		"api.port": 8080,
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

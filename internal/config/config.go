package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"MONGODB_URI"` specify the environment variable name;
// `default:""` provides a fallback when the variable is not set.
type Config struct {
	MongoURI     string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	DatabaseName string `envconfig:"DATABASE_NAME" default:"product_management"`

	Server ServerConfig

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:""`

	// LowStockThreshold is the stock level at or below which a product
	// triggers low-stock warnings.
	LowStockThreshold int    `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`
	DefaultCurrency   string `envconfig:"DEFAULT_CURRENCY" default:"USD"`
}

// ServerConfig holds MCP server settings for remote deployment.
type ServerConfig struct {
	Host      string `envconfig:"MCP_HOST" default:"0.0.0.0"`
	Port      string `envconfig:"MCP_PORT" default:"8000"`
	Transport string `envconfig:"MCP_TRANSPORT" default:"stdio"`
}

// Addr returns the listen address for remote transports.
func (sc *ServerConfig) Addr() string {
	return sc.Host + ":" + sc.Port
}

// Remote reports whether the configured transport runs over HTTP rather
// than stdio.
func (sc *ServerConfig) Remote() bool {
	switch strings.ToLower(sc.Transport) {
	case "sse", "http", "streamable-http":
		return true
	}
	return false
}

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if cfg.LowStockThreshold < 0 {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD must be non-negative, got %d", cfg.LowStockThreshold)
	}
	return &cfg, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

const (
	DefaultFeedPath      = "/"
	DefaultHistoryTable  = "stock_history"
	DefaultHistoryWindow = 60
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file. Endpoint secrets may be
// supplied through the environment or a .env file next to the process.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Environment overrides (.env is optional)
	_ = godotenv.Load()
	config.applyEnvOverrides()
	config.applyDefaults()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyEnvOverrides replaces endpoint identifiers and credentials with values
// from well-known environment variables when they are set.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FEED_URL"); v != "" {
		c.Feed.URL = v
	}
	if v := os.Getenv("FEED_TRANSPORT"); v != "" {
		c.Feed.Transport = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Feed.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Feed.RedisPassword = v
	}
	if v := os.Getenv("DB_CONNECTION_STRING"); v != "" {
		c.Storage.DBConnectionString = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Feed.Transport == "" {
		c.Feed.Transport = "websocket"
	}
	if c.Feed.Path == "" {
		c.Feed.Path = DefaultFeedPath
	}
	if c.Feed.ReconnectMinSeconds <= 0 {
		c.Feed.ReconnectMinSeconds = 1
	}
	if c.Feed.ReconnectMaxSeconds < c.Feed.ReconnectMinSeconds {
		c.Feed.ReconnectMaxSeconds = 30
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.HistoryTable == "" {
		c.Storage.HistoryTable = DefaultHistoryTable
	}
	if c.Storage.HistoryWindow <= 0 {
		c.Storage.HistoryWindow = DefaultHistoryWindow
	}
	if c.Dashboard.DefaultTab == "" {
		c.Dashboard.DefaultTab = string(models.CategoryMacro)
	}
	if len(c.Dashboard.DomesticSuffixes) == 0 {
		c.Dashboard.DomesticSuffixes = []string{".KS", ".KQ"}
	}
	if c.Dashboard.DomesticCountry == "" {
		c.Dashboard.DomesticCountry = "KR"
	}
	if c.Dashboard.DomesticMIC == "" {
		c.Dashboard.DomesticMIC = "xkrx"
	}
	if c.Dashboard.GlobalMIC == "" {
		c.Dashboard.GlobalMIC = "xnys"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Validate Feed configuration
	switch c.Feed.Transport {
	case "websocket":
		if c.Feed.URL == "" {
			return fmt.Errorf("feed url cannot be empty for websocket transport")
		}
	case "redis":
		if c.Feed.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty for redis transport")
		}
	default:
		return fmt.Errorf("unknown feed transport '%s'", c.Feed.Transport)
	}
	for _, p := range c.Feed.Proxies {
		if !helpers.ValidateProxy(p) {
			return fmt.Errorf("invalid feed proxy '%s'", p)
		}
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unknown database type '%s'", c.Storage.DBType)
	}
	if !isIdentifier(c.Storage.HistoryTable) {
		return fmt.Errorf("invalid history table name '%s'", c.Storage.HistoryTable)
	}

	// Validate Dashboard configuration
	if _, ok := models.ParseCategory(c.Dashboard.DefaultTab); !ok {
		return fmt.Errorf("unknown default tab '%s'", c.Dashboard.DefaultTab)
	}

	return nil
}

// -----------------------------------------------------------------------------

// DefaultTab returns the configured initial news tab.
func (c *Config) DefaultTab() models.Category {
	tab, _ := models.ParseCategory(c.Dashboard.DefaultTab)
	return tab
}

// -----------------------------------------------------------------------------

// isIdentifier accepts plain SQL identifiers; the table name is interpolated
// into queries.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

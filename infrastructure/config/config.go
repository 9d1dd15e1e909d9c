package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all gateway configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	Sqlite  SqliteConfig
	WMS     WMSConfig
	Cache   CacheConfig
	Session SessionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `envconfig:"APP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"5s"`
}

// SqliteConfig holds local database settings.
type SqliteConfig struct {
	Path          string `envconfig:"SQLITE_PATH" default:"scangate.db"`
	MigrationsDir string `envconfig:"SQLITE_MIGRATIONS_DIR" default:""`
}

// WMSConfig holds remote warehouse backend settings.
type WMSConfig struct {
	BaseURL string        `envconfig:"WMS_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"WMS_API_KEY" default:""`
	Timeout time.Duration `envconfig:"WMS_TIMEOUT" default:"30s"`
}

// CacheConfig selects the scan-session store backend.
type CacheConfig struct {
	Type       string        `envconfig:"CACHE_TYPE" default:"memory"`
	SessionTTL time.Duration `envconfig:"SCAN_SESSION_TTL" default:"8h"`
	LicenseTTL time.Duration `envconfig:"LICENSE_CACHE_TTL" default:"15m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// SessionConfig holds login session settings.
type SessionConfig struct {
	TTL time.Duration `envconfig:"LOGIN_SESSION_TTL" default:"12h"`
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Load reads configuration from the environment, honoring a .env file when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

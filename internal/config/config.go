package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all configuration loaded from environment variables.
type Config struct {
	Client  ClientConfig
	Sandbox SandboxConfig
}

// ClientConfig holds settings for the dashboard client.
type ClientConfig struct {
	// ServerURL is the default backend endpoint; a persisted server selection
	// overrides it.
	ServerURL string `envconfig:"STOCKDECK_SERVER_URL" default:"http://localhost:8080"`

	// StateDir holds durable client state (auth.json, server.json).
	// Empty means <user config dir>/stockdeck.
	StateDir string `envconfig:"STOCKDECK_STATE_DIR" default:""`

	// SessionDir holds session-scoped client state. Empty means
	// <temp dir>/stockdeck.
	SessionDir string `envconfig:"STOCKDECK_SESSION_DIR" default:""`

	RequestTimeout time.Duration `envconfig:"STOCKDECK_REQUEST_TIMEOUT" default:"15s"`
}

// SandboxConfig holds settings for the development backend.
type SandboxConfig struct {
	Host            string        `envconfig:"SANDBOX_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SANDBOX_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SANDBOX_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SANDBOX_WRITE_TIMEOUT" default:"3000s"`
	ShutdownTimeout time.Duration `envconfig:"SANDBOX_SHUTDOWN_TIMEOUT" default:"30s"`

	DBPath   string        `envconfig:"SANDBOX_DB_PATH" default:"./data/stockdeck.db"`
	TokenTTL time.Duration `envconfig:"SANDBOX_TOKEN_TTL" default:"24h"`

	// Redis is optional; when unreachable the sandbox falls back to the
	// in-memory token cache.
	RedisAddr     string `envconfig:"SANDBOX_REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"SANDBOX_REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"SANDBOX_REDIS_DB" default:"0"`

	SeedAdminPassword string `envconfig:"SANDBOX_ADMIN_PASSWORD" default:"adminadmin"`
}

// Address returns the sandbox listen address in host:port format.
func (s *SandboxConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ResolveStateDir returns the durable state directory, creating it if needed.
func (c *ClientConfig) ResolveStateDir() (string, error) {
	dir := c.StateDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolve config dir: %w", err)
		}
		dir = filepath.Join(base, "stockdeck")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	return dir, nil
}

// ResolveSessionDir returns the session-scoped state directory, creating it if
// needed. Files here survive process restarts but not a reboot.
func (c *ClientConfig) ResolveSessionDir() (string, error) {
	dir := c.SessionDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "stockdeck")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	return dir, nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

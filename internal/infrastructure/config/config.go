// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for campaign configuration.
	DefaultConfigDir = ".campaign"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatabaseFile is the default SQLite file name.
	DefaultDatabaseFile = "campaign.db"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Sessions SessionsConfig `yaml:"sessions"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr         string        `yaml:"listen_addr"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	IdleTimeout        time.Duration `yaml:"idle_timeout"`
	CookieName         string        `yaml:"cookie_name"`
	CookieSecure       bool          `yaml:"cookie_secure"`
	SessionTTL         time.Duration `yaml:"session_ttl"`
	LoginRatePerMinute int           `yaml:"login_rate_per_minute"`
	LoginBurst         int           `yaml:"login_burst"`
}

// StorageConfig selects the record store.
type StorageConfig struct {
	Backend string       `yaml:"backend"`
	SQLite  SQLiteConfig `yaml:"sqlite,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite relational database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database, or ":memory:".
	Path string `yaml:"path,omitempty"`
}

// SessionsConfig selects the session store.
type SessionsConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig holds configuration for the Redis session store.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// SecurityConfig holds credential hashing settings.
type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:         ":5000",
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
			IdleTimeout:        120 * time.Second,
			CookieName:         "campaign_session",
			SessionTTL:         7 * 24 * time.Hour,
			LoginRatePerMinute: 10,
			LoginBurst:         5,
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			SQLite:  SQLiteConfig{Path: filepath.Join(DefaultConfigDir, DefaultDatabaseFile)},
		},
		Sessions: SessionsConfig{
			Backend: BackendMemory,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Security: SecurityConfig{BcryptCost: 10},
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}

// Load loads configuration from the .campaign directory in the given path.
// A missing config file yields the defaults.
func Load(basePath string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	data, err := os.ReadFile(ConfigFilePath(basePath))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"CAMPAIGN_LISTEN_ADDR", &c.Server.ListenAddr},
		{"CAMPAIGN_STORAGE_BACKEND", &c.Storage.Backend},
		{"CAMPAIGN_SQLITE_PATH", &c.Storage.SQLite.Path},
		{"CAMPAIGN_SESSION_BACKEND", &c.Sessions.Backend},
		{"CAMPAIGN_REDIS_ADDR", &c.Sessions.Redis.Addr},
		{"CAMPAIGN_REDIS_PASSWORD", &c.Sessions.Redis.Password},
		{"CAMPAIGN_LOG_LEVEL", &c.Log.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

// Validate rejects unknown backends and unusable settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.SQLite.Path == "" {
			errs = append(errs, errors.New("storage.sqlite.path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	switch c.Sessions.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Sessions.Redis.Addr == "" {
			errs = append(errs, errors.New("sessions.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q", c.Sessions.Backend))
	}

	if c.Server.SessionTTL <= 0 {
		errs = append(errs, errors.New("server.session_ttl must be positive"))
	}
	if c.Server.CookieName == "" {
		errs = append(errs, errors.New("server.cookie_name is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ConfigDir returns the path to the .campaign config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// ResolvePath makes a relative storage path absolute against basePath.
func ResolvePath(basePath, path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(basePath, path)
}

// Exists checks if a campaign config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

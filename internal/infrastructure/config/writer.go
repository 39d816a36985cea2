package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# Campaign-Core Configuration

server:
  listen_addr: ":5000"
  read_timeout: 10s
  write_timeout: 10s
  idle_timeout: 120s
  cookie_name: campaign_session
  cookie_secure: false
  session_ttl: 168h
  login_rate_per_minute: 10
  login_burst: 5

storage:
  backend: memory # memory | sqlite
  sqlite:
    path: .campaign/campaign.db

sessions:
  backend: memory # memory | redis
  redis:
    addr: localhost:6379
    # password: secret (or set CAMPAIGN_REDIS_PASSWORD env var)
    db: 0

security:
  bcrypt_cost: 10

log:
  level: info
  format: console # console | json
`

// WriteDefault creates the .campaign directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	configDir := filepath.Join(basePath, DefaultConfigDir)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigFilePath(basePath), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

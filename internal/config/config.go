// Package config loads cardboard settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendAPI    = "api"
)

type Config struct {
	Backend string       `yaml:"backend"`
	DataDir string       `yaml:"data_dir"`
	API     APIConfig    `yaml:"api"`
	Server  ServerConfig `yaml:"server"`
	Log     LogConfig    `yaml:"log"`
}

// APIConfig configures the remote backend.
type APIConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// ServerConfig configures `cardboard serve`.
type ServerConfig struct {
	Addr  string `yaml:"addr"`
	Token string `yaml:"token"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // TUI log sink; empty discards
}

// Dir is the per-user cardboard directory (~/.cardboard).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".cardboard"), nil
}

// DefaultPath honours CARDBOARD_CONFIG, else ~/.cardboard/config.yaml.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv("CARDBOARD_CONFIG")); p != "" {
		return p
	}
	dir, err := Dir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "config.yaml")
}

func Default() *Config {
	dataDir, err := Dir()
	if err != nil {
		dataDir = "."
	}
	return &Config{
		Backend: BackendFile,
		DataDir: dataDir,
		API: APIConfig{
			URL:     "http://127.0.0.1:5001",
			Timeout: "10s",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:5001",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Log.File = expandHome(cfg.Log.File)
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("CARDBOARD_BACKEND")); v != "" {
		c.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("CARDBOARD_DATA_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CARDBOARD_API_URL")); v != "" {
		c.API.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("CARDBOARD_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	// PORT keeps the host of the configured address.
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		host, _, err := net.SplitHostPort(c.Server.Addr)
		if err != nil {
			host = ""
		}
		c.Server.Addr = net.JoinHostPort(host, v)
	}
}

// Validate rejects settings that cannot work.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
		if c.Backend != BackendMemory && strings.TrimSpace(c.DataDir) == "" {
			return fmt.Errorf("backend %s needs data_dir", c.Backend)
		}
	case BackendAPI:
		if strings.TrimSpace(c.API.URL) == "" {
			return fmt.Errorf("backend api needs api.url")
		}
	default:
		return fmt.Errorf("unknown backend %q (want file, sqlite, memory or api)", c.Backend)
	}
	if _, err := c.APITimeout(); err != nil {
		return err
	}
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("server.addr: %w", err)
	}
	return nil
}

// APITimeout parses api.timeout; empty means no client timeout override.
func (c *Config) APITimeout() (time.Duration, error) {
	if strings.TrimSpace(c.API.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0, fmt.Errorf("api.timeout: %w", err)
	}
	return d, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

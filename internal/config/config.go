package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Game      GameConfig      `yaml:"game"`
	Limits    LimitsConfig    `yaml:"limits"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type GameConfig struct {
	DataDir string `yaml:"data_dir"`
}

// LimitsConfig bounds how often a user can finish a workout. WindowSeconds
// is the sliding window length; MaxFinishes is the cap within it.
type LimitsConfig struct {
	MaxFinishes   int `yaml:"max_finishes"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Window returns the sliding window as a duration.
func (l LimitsConfig) Window() time.Duration {
	return time.Duration(l.WindowSeconds) * time.Second
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix IRONQUEST_ and underscore-separated paths:
//
//	IRONQUEST_SERVER_HOST, IRONQUEST_SERVER_PORT,
//	IRONQUEST_DB_HOST, IRONQUEST_DB_PORT, IRONQUEST_DB_NAME,
//	IRONQUEST_DB_USER, IRONQUEST_DB_PASSWORD, IRONQUEST_DB_SSLMODE,
//	IRONQUEST_AUTH_API_KEY, IRONQUEST_GAME_DATA_DIR,
//	IRONQUEST_TS_ENABLED, IRONQUEST_TS_HOSTNAME, IRONQUEST_TS_STATE_DIR
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IRONQUEST_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("IRONQUEST_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("IRONQUEST_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("IRONQUEST_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("IRONQUEST_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("IRONQUEST_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("IRONQUEST_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("IRONQUEST_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("IRONQUEST_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("IRONQUEST_GAME_DATA_DIR"); v != "" {
		cfg.Game.DataDir = v
	}
	if v := os.Getenv("IRONQUEST_TS_ENABLED"); v != "" {
		cfg.Tailscale.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("IRONQUEST_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("IRONQUEST_TS_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Game.DataDir == "" {
		cfg.Game.DataDir = "gamedata"
	}
	if cfg.Limits.MaxFinishes == 0 {
		cfg.Limits.MaxFinishes = 10
	}
	if cfg.Limits.WindowSeconds == 0 {
		cfg.Limits.WindowSeconds = 3600
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "ironquest"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Limits.MaxFinishes < 0 || c.Limits.WindowSeconds < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	return nil
}

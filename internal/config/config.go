// Package config loads the powerset configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/powerset/internal/logging"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBuntDB = "buntdb"
	BackendLoam   = "loam"
)

// Config is the root of powerset.yaml.
type Config struct {
	LogLevel string       `yaml:"log_level"`
	Store    StoreConfig  `yaml:"store"`
	Server   ServerConfig `yaml:"server"`
}

// StoreConfig selects where named machines are kept.
type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Dir     string      `yaml:"dir"`
	TTL     Duration    `yaml:"ttl"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds the connection settings of the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Duration is a time.Duration written as "30s", "10m", ...
type Duration time.Duration

// UnmarshalYAML parses a duration string, or a bare number of seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var seconds int
	if err := node.Decode(&seconds); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in time.Duration notation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Store: StoreConfig{
			Backend: BackendMemory,
			Path:    "powerset.db",
			Dir:     "machines",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "powerset:",
			},
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads the YAML file at path on top of the defaults.
// A missing file yields the defaults; an empty path means no file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendBuntDB:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the buntdb backend"))
		}
	case BackendLoam:
		if c.Store.Dir == "" {
			errs = append(errs, errors.New("store.dir is required for the loam backend"))
		}
		if c.Store.TTL > 0 {
			errs = append(errs, errors.New("store.ttl is not supported by the loam backend"))
		}
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Store.TTL < 0 {
		errs = append(errs, errors.New("store.ttl must not be negative"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	return errors.Join(errs...)
}

// Package config loads settings for the DIDComm API server.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// DIDCOMM_* environment variables (optionally seeded from a .env file).
// Command-line flags are applied last by the binaries themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidPort      = errors.New("port must be between 1 and 65535")
	ErrInvalidRateLimit = errors.New("rate limit must be positive")
	ErrMissingPassword  = errors.New("storage password is required when storage is enabled")
	ErrInvalidLogFormat = errors.New("log format must be text or json")
)

// Config holds all server settings
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port         int           `yaml:"port"`
	EnableCORS   bool          `yaml:"cors"`
	RateLimit    int           `yaml:"rate_limit"` // Requests per minute
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StorageConfig configures the envelope archive. An empty Path disables it.
type StorageConfig struct {
	Path          string        `yaml:"path"`
	Password      string        `yaml:"password"`
	PurgeInterval time.Duration `yaml:"purge_interval"`
}

// LogConfig configures logrus
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			EnableCORS:   true,
			RateLimit:    100,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			PurgeInterval: time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadEnvFile loads variables from a .env file into the process
// environment. Variables that are already set are left alone.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with DIDCOMM_* environment variables
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("DIDCOMM_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DIDCOMM_PORT: %w", err)
		}
		c.Server.Port = port
	}

	if v, ok := os.LookupEnv("DIDCOMM_CORS"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DIDCOMM_CORS: %w", err)
		}
		c.Server.EnableCORS = enabled
	}

	if v, ok := os.LookupEnv("DIDCOMM_RATE_LIMIT"); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DIDCOMM_RATE_LIMIT: %w", err)
		}
		c.Server.RateLimit = limit
	}

	if v, ok := os.LookupEnv("DIDCOMM_DB_PATH"); ok {
		c.Storage.Path = v
	}

	if v, ok := os.LookupEnv("DIDCOMM_DB_PASSWORD"); ok {
		c.Storage.Password = v
	}

	if v, ok := os.LookupEnv("DIDCOMM_PURGE_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DIDCOMM_PURGE_INTERVAL: %w", err)
		}
		c.Storage.PurgeInterval = d
	}

	if v, ok := os.LookupEnv("DIDCOMM_LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	if v, ok := os.LookupEnv("DIDCOMM_LOG_FORMAT"); ok {
		c.Log.Format = v
	}

	return nil
}

// Validate checks the configuration for usable values
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Server.RateLimit <= 0 {
		return ErrInvalidRateLimit
	}
	if c.Storage.Path != "" && c.Storage.Password == "" {
		return ErrMissingPassword
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return ErrInvalidLogFormat
	}
	return nil
}

// NewLogger builds a logrus logger from the log settings
func (c LogConfig) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)

	switch c.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, ErrInvalidLogFormat
	}

	return logger, nil
}

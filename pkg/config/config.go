// Package config loads server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the outbreak server configuration
type Config struct {
	// HTTPAddr is the listen address of the REST API (default ":8080")
	HTTPAddr string `yaml:"http_addr"`

	// BroadcastAddr is the mangos pub socket address for state broadcasts
	// (default "tcp://0.0.0.0:5555"; empty disables broadcasting)
	BroadcastAddr string `yaml:"broadcast_addr"`

	// TranslatorURL is the base URL of the market translator service
	// (empty runs sessions on default parameters)
	TranslatorURL string `yaml:"translator_url"`

	// StepInterval is the wall-clock delay between simulation steps
	// (default 100ms)
	StepInterval time.Duration `yaml:"step_interval"`

	// BroadcastEvery forces a broadcast every N steps even without a
	// significant diff (default 10)
	BroadcastEvery int `yaml:"broadcast_every"`

	// CacheTTL is how long a cached snapshot stays fresh (default 1s)
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// MaxSessions caps concurrent simulation sessions (default 16)
	MaxSessions int `yaml:"max_sessions"`

	// ScenarioFile preloads countries and routes at startup (optional)
	ScenarioFile string `yaml:"scenario_file"`

	// LogLevel is one of debug, info, warn, error (default "info")
	LogLevel string `yaml:"log_level"`
}

// Default configuration values
const (
	DefaultHTTPAddr       = ":8080"
	DefaultBroadcastAddr  = "tcp://0.0.0.0:5555"
	DefaultStepInterval   = 100 * time.Millisecond
	DefaultBroadcastEvery = 10
	DefaultCacheTTL       = time.Second
	DefaultMaxSessions    = 16
	DefaultLogLevel       = "info"
)

// Default returns a config with all defaults applied
func Default() *Config {
	return &Config{
		HTTPAddr:       DefaultHTTPAddr,
		BroadcastAddr:  DefaultBroadcastAddr,
		StepInterval:   DefaultStepInterval,
		BroadcastEvery: DefaultBroadcastEvery,
		CacheTTL:       DefaultCacheTTL,
		MaxSessions:    DefaultMaxSessions,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads a YAML config file, fills defaults, and applies environment
// overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		config.applyDefaults()
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}
	if c.StepInterval <= 0 {
		c.StepInterval = DefaultStepInterval
	}
	if c.BroadcastEvery <= 0 {
		c.BroadcastEvery = DefaultBroadcastEvery
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = DefaultMaxSessions
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getEnvOrDefault("OUTBREAK_HTTP_ADDR", c.HTTPAddr)
	c.BroadcastAddr = getEnvOrDefault("OUTBREAK_BROADCAST_ADDR", c.BroadcastAddr)
	c.TranslatorURL = getEnvOrDefault("OUTBREAK_TRANSLATOR_URL", c.TranslatorURL)
	c.ScenarioFile = getEnvOrDefault("OUTBREAK_SCENARIO_FILE", c.ScenarioFile)
	c.LogLevel = getEnvOrDefault("OUTBREAK_LOG_LEVEL", c.LogLevel)
	c.StepInterval = parseDuration(os.Getenv("OUTBREAK_STEP_INTERVAL"), c.StepInterval)
	c.BroadcastEvery = parseInt(os.Getenv("OUTBREAK_BROADCAST_EVERY"), c.BroadcastEvery)
	c.MaxSessions = parseInt(os.Getenv("OUTBREAK_MAX_SESSIONS"), c.MaxSessions)
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("http_addr cannot be empty")
	}
	if c.StepInterval <= 0 {
		return fmt.Errorf("step_interval must be positive, got %s", c.StepInterval)
	}
	if c.BroadcastEvery <= 0 {
		return fmt.Errorf("broadcast_every must be positive, got %d", c.BroadcastEvery)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max_sessions must be positive, got %d", c.MaxSessions)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

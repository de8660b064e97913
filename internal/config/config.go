// Package config provides configuration management for the evidential
// decision core server.
//
// Configuration can be loaded from multiple sources (in order of
// precedence):
//  1. Environment variables (highest priority)
//  2. Configuration file (JSON)
//  3. Default values (lowest priority)
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config represents the complete server configuration.
type Config struct {
	Server      ServerConfig      `json:"server"`
	Storage     StorageConfig     `json:"storage"`
	Remote      RemoteConfig      `json:"remote"`
	Performance PerformanceConfig `json:"performance"`
	Logging     LoggingConfig     `json:"logging"`
}

// ServerConfig contains server-level configuration.
type ServerConfig struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// StorageConfig selects and sizes the decision-log/snapshot persistence
// backend (spec.md §6 "snapshots provided for host-managed persistence").
// Load and Validate read and check these settings; no other package in
// this module consumes them, and the optimizer's decision log keeps its
// own fixed capacity.
type StorageConfig struct {
	// Backend is "memory" (default) or "sqlite".
	Backend string `json:"backend"`

	// Path is the sqlite database file; ignored for the memory backend.
	Path string `json:"path"`

	// MaxDecisionLogEntries bounds the in-memory/sqlite decision log
	// (0 = unlimited).
	MaxDecisionLogEntries int `json:"max_decision_log_entries"`
}

// RemoteConfig holds the settings for an optional remote-bridge integration
// (spec.md §7 "narrow capability interface for host-side visualization").
// Load and Validate read and check these settings; no package in this
// module implements a remote bridge or consumes them.
type RemoteConfig struct {
	// Endpoint is the remote bridge address. Empty disables remote bridging
	// entirely and every capability check reports unsupported.
	Endpoint string `json:"endpoint"`

	// Capabilities restricts which capabilities are advertised to the
	// remote even when Endpoint is set. Empty means all known capabilities.
	Capabilities []string `json:"capabilities"`

	// ConnectTimeoutMS bounds how long the bridge waits to establish a
	// connection before falling back to local-only behavior.
	ConnectTimeoutMS int `json:"connect_timeout_ms"`
}

// PerformanceConfig contains performance tuning options. Load and Validate
// read and check these settings; no other package in this module consumes
// them, so the limits described below are not enforced.
type PerformanceConfig struct {
	// MaxConcurrentPropagations limits concurrent Network.Propagate calls
	// across all registered networks.
	MaxConcurrentPropagations int `json:"max_concurrent_propagations"`

	// PropagationDeadlineMS is the default deadline applied to propagation
	// algorithms when a request does not specify one (spec.md §5).
	PropagationDeadlineMS int `json:"propagation_deadline_ms"`

	// HandleCacheSize sets the size hint for registry snapshot caches
	// (0 = no caching).
	HandleCacheSize int `json:"handle_cache_size"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level            string `json:"level"`
	Format           string `json:"format"`
	EnableTimestamps bool   `json:"enable_timestamps"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:        "edc-server",
			Version:     "0.1.0",
			Environment: "development",
		},
		Storage: StorageConfig{
			Backend:               "memory",
			MaxDecisionLogEntries: 1000,
		},
		Remote: RemoteConfig{
			ConnectTimeoutMS: 2000,
		},
		Performance: PerformanceConfig{
			MaxConcurrentPropagations: 8,
			PropagationDeadlineMS:     30000,
			HandleCacheSize:           1000,
		},
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "text",
			EnableTimestamps: true,
		},
	}
}

// Load loads configuration from environment variables and applies defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file, then overlays
// environment variables on top.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromEnv loads configuration from environment variables. Variables
// follow the pattern EDC_<SECTION>_<KEY>, e.g. EDC_SERVER_NAME,
// EDC_REMOTE_ENDPOINT, EDC_STORAGE_BACKEND.
func (c *Config) loadFromEnv() error {
	if v := os.Getenv("EDC_SERVER_NAME"); v != "" {
		c.Server.Name = v
	}
	if v := os.Getenv("EDC_SERVER_VERSION"); v != "" {
		c.Server.Version = v
	}
	if v := os.Getenv("EDC_SERVER_ENVIRONMENT"); v != "" {
		c.Server.Environment = v
	}

	if v := os.Getenv("EDC_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("EDC_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("EDC_STORAGE_MAX_DECISION_LOG_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Storage.MaxDecisionLogEntries = n
		}
	}

	if v := os.Getenv("EDC_REMOTE_ENDPOINT"); v != "" {
		c.Remote.Endpoint = v
	}
	if v := os.Getenv("EDC_REMOTE_CAPABILITIES"); v != "" {
		c.Remote.Capabilities = splitAndTrim(v)
	}
	if v := os.Getenv("EDC_REMOTE_CONNECT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Remote.ConnectTimeoutMS = n
		}
	}

	if v := os.Getenv("EDC_PERFORMANCE_MAX_CONCURRENT_PROPAGATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Performance.MaxConcurrentPropagations = n
		}
	}
	if v := os.Getenv("EDC_PERFORMANCE_PROPAGATION_DEADLINE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Performance.PropagationDeadlineMS = n
		}
	}
	if v := os.Getenv("EDC_PERFORMANCE_HANDLE_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Performance.HandleCacheSize = n
		}
	}

	if v := os.Getenv("EDC_LOGGING_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("EDC_LOGGING_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv("EDC_LOGGING_ENABLE_TIMESTAMPS"); v != "" {
		c.Logging.EnableTimestamps = parseBool(v)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("server.name cannot be empty")
	}
	if c.Server.Environment != "development" && c.Server.Environment != "staging" && c.Server.Environment != "production" {
		return fmt.Errorf("server.environment must be one of: development, staging, production")
	}

	if c.Storage.Backend != "memory" && c.Storage.Backend != "sqlite" {
		return fmt.Errorf("storage.backend must be 'memory' or 'sqlite'")
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required when storage.backend is 'sqlite'")
	}
	if c.Storage.MaxDecisionLogEntries < 0 {
		return fmt.Errorf("storage.max_decision_log_entries cannot be negative")
	}

	if c.Remote.ConnectTimeoutMS < 0 {
		return fmt.Errorf("remote.connect_timeout_ms cannot be negative")
	}

	if c.Performance.MaxConcurrentPropagations < 1 {
		return fmt.Errorf("performance.max_concurrent_propagations must be >= 1")
	}
	if c.Performance.PropagationDeadlineMS < 0 {
		return fmt.Errorf("performance.propagation_deadline_ms cannot be negative")
	}
	if c.Performance.HandleCacheSize < 0 {
		return fmt.Errorf("performance.handle_cache_size cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json'")
	}

	return nil
}

// RemoteEnabled reports whether a remote bridge endpoint is configured.
func (c *Config) RemoteEnabled() bool {
	return c.Remote.Endpoint != ""
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on" || s == "enabled"
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ToJSON serializes the configuration to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// SaveToFile saves the configuration to a JSON file.
func (c *Config) SaveToFile(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

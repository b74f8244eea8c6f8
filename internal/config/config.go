// Package config loads and persists the daemon configuration as YAML, with
// CLIPSIFT_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML round-trips. It accepts Go duration
// strings ("1s", "250ms") and bare integers counting nanoseconds.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	// Integers first: yaml decodes any scalar into a string, so the string
	// branch would swallow bare numbers.
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration value %q", value.Value)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds all daemon configuration.
type Config struct {
	DeviceID string `json:"device_id" yaml:"device_id"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	History HistoryConfig `json:"history" yaml:"history"`
	Monitor MonitorConfig `json:"monitor" yaml:"monitor"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Blob    BlobConfig    `json:"blob" yaml:"blob"`

	path string
}

// HistoryConfig bounds the in-memory capture buffer.
type HistoryConfig struct {
	// Capacity 0 keeps every capture until clear.
	Capacity int `json:"capacity" yaml:"capacity"`
}

// MonitorConfig tunes the clipboard polling loop.
type MonitorConfig struct {
	Interval    Duration `json:"interval" yaml:"interval"`
	MaxItemSize int64    `json:"max_item_size" yaml:"max_item_size"`
}

// StorageConfig locates the saved-records database.
type StorageConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr    string `json:"addr" yaml:"addr"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// BlobConfig tunes binary capture staging.
type BlobConfig struct {
	SpillDir string `json:"spill_dir" yaml:"spill_dir"`
	MemLimit int64  `json:"mem_limit" yaml:"mem_limit"`
}

// DefaultConfig returns a fresh configuration with generated identity.
func DefaultConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		DeviceID: uuid.New().String(),
		LogLevel: "info",
		History: HistoryConfig{
			Capacity: 100,
		},
		Monitor: MonitorConfig{
			Interval:    Duration(time.Second),
			MaxItemSize: 32 * 1024 * 1024,
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(dataDir, "clipsift.db"),
		},
		Server: ServerConfig{
			Addr:    "127.0.0.1:8750",
			Enabled: false,
		},
		Blob: BlobConfig{
			SpillDir: filepath.Join(dataDir, "blobs"),
			MemLimit: 1024 * 1024,
		},
	}
}

// Load reads the config at configPath, or the default location when empty.
// A missing file is created with defaults. Keys absent from the file keep
// their default values, then CLIPSIFT_* environment variables override.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		var err error
		configPath, err = DefaultConfigFile()
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	cfg.path = configPath

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.Save(configPath); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			overrideFromEnv(cfg)
			return cfg, cfg.validate()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	overrideFromEnv(cfg)
	return cfg, cfg.validate()
}

// Save writes the configuration to configPath, creating directories as
// needed.
func (c *Config) Save(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	c.path = configPath
	return nil
}

// Path reports where the configuration was loaded from or saved to.
func (c *Config) Path() string { return c.path }

func (c *Config) validate() error {
	if c.History.Capacity < 0 {
		return fmt.Errorf("history.capacity must not be negative, got %d", c.History.Capacity)
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %s", c.Monitor.Interval.Std())
	}
	if c.Monitor.MaxItemSize <= 0 {
		return fmt.Errorf("monitor.max_item_size must be positive, got %d", c.Monitor.MaxItemSize)
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set when the server is enabled")
	}
	return nil
}

func overrideFromEnv(cfg *Config) {
	if val := os.Getenv("CLIPSIFT_DEVICE_ID"); val != "" {
		cfg.DeviceID = val
	}
	if val := os.Getenv("CLIPSIFT_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	if val := os.Getenv("CLIPSIFT_HISTORY_CAPACITY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.History.Capacity = n
		}
	}
	if val := os.Getenv("CLIPSIFT_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Monitor.Interval = Duration(d)
		}
	}
	if val := os.Getenv("CLIPSIFT_DB_PATH"); val != "" {
		cfg.Storage.DBPath = val
	}
	if val := os.Getenv("CLIPSIFT_HTTP_ADDR"); val != "" {
		cfg.Server.Addr = val
	}
}

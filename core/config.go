package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultNameMax is the maximum thread name length, terminator included.
const DefaultNameMax = 16

// Config holds configuration options for a Runtime. It can be populated
// from YAML; the collaborators that cannot be serialised are defaulted when
// nil.
type Config struct {
	// NameMax bounds thread names; names keep at most NameMax-1 bytes.
	NameMax int `yaml:"name_max"`

	// MaxThreads caps the units the scheduler may hold. 0 means no cap.
	MaxThreads int `yaml:"max_threads"`

	// MaxBlocks caps live control blocks from the default allocator.
	// 0 means no cap.
	MaxBlocks int `yaml:"max_blocks"`

	// NameBudget caps the bytes held by all thread names. 0 means no cap.
	NameBudget int `yaml:"name_budget"`

	// LogLevel is the minimum level passed to Logger.
	LogLevel string `yaml:"log_level"`

	// MetricsNamespace is the Prometheus namespace used by the exporters.
	MetricsNamespace string `yaml:"metrics_namespace"`

	// Logger receives runtime logs. Defaults to DefaultLogger.
	Logger Logger `yaml:"-"`

	// Metrics is called to record runtime metrics. Defaults to NilMetrics.
	Metrics Metrics `yaml:"-"`

	// Blocks provides control-block storage. Defaults to a
	// FixedBlockAllocator bounded by MaxBlocks.
	Blocks BlockAllocator `yaml:"-"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		NameMax:          DefaultNameMax,
		LogLevel:         "info",
		MetricsNamespace: "lwp",
	}
}

// Validate returns an error describing the first invalid setting, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.NameMax < 1 {
		return fmt.Errorf("name_max must be >= 1, got %d", c.NameMax)
	}
	if c.MaxThreads < 0 {
		return fmt.Errorf("max_threads must be >= 0, got %d", c.MaxThreads)
	}
	if c.MaxBlocks < 0 {
		return fmt.Errorf("max_blocks must be >= 0, got %d", c.MaxBlocks)
	}
	if c.NameBudget < 0 {
		return fmt.Errorf("name_budget must be >= 0, got %d", c.NameBudget)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// LoadConfig parses YAML over DefaultConfig and validates the result.
func LoadConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return LoadConfig(data)
}

// withDefaults returns a copy of c with nil collaborators filled in.
func (c *Config) withDefaults() (*Config, error) {
	if c == nil {
		c = DefaultConfig()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := *c
	level, _ := ParseLevel(out.LogLevel)
	if out.Logger == nil {
		out.Logger = NewDefaultLogger()
	}
	out.Logger = NewLevelLogger(out.Logger, level)
	if out.Metrics == nil {
		out.Metrics = &NilMetrics{}
	}
	if out.Blocks == nil {
		out.Blocks = NewFixedBlockAllocator(out.MaxBlocks)
	}
	return &out, nil
}

// Package config loads and persists the agent's YAML configuration file.
// Missing files yield defaults; saves are atomic via a temporary file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that round-trips through YAML as a string
// like "30s" or "5m".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard-library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ThinkingConfig sets the cadence of the thinking loop.
type ThinkingConfig struct {
	TickInterval   Duration `yaml:"tick_interval"`
	QuickInterval  Duration `yaml:"quick_interval"`
	MediumInterval Duration `yaml:"medium_interval"`
	DeepInterval   Duration `yaml:"deep_interval"`
}

// AuditConfig sets audit log bounds.
type AuditConfig struct {
	Capacity int      `yaml:"capacity"`
	Window   Duration `yaml:"window"`
}

// LLMConfig sets the completion provider.
type LLMConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// Config is the full agent configuration document.
type Config struct {
	Workspace     string         `yaml:"workspace"`
	AutonomyLevel int            `yaml:"autonomy_level"`
	ParseMode     string         `yaml:"parse_mode"`
	SpiralDir     string         `yaml:"spiral_dir"`
	Thinking      ThinkingConfig `yaml:"thinking"`
	Audit         AuditConfig    `yaml:"audit"`
	LLM           LLMConfig      `yaml:"llm"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Workspace:     ".",
		AutonomyLevel: 2,
		ParseMode:     "strict",
		Thinking: ThinkingConfig{
			TickInterval:   Duration(5 * time.Second),
			QuickInterval:  Duration(30 * time.Second),
			MediumInterval: Duration(5 * time.Minute),
			DeepInterval:   Duration(30 * time.Minute),
		},
		Audit: AuditConfig{
			Capacity: 500,
			Window:   Duration(5 * time.Minute),
		},
		LLM: LLMConfig{
			Model: "gpt-4o",
		},
	}
}

// DefaultPath returns ~/.vigil/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".vigil", "config.yaml"), nil
}

// Load reads the configuration at path. A missing file returns defaults
// without error; a malformed or invalid file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.AutonomyLevel < 0 || c.AutonomyLevel > 5 {
		return fmt.Errorf("autonomy_level %d out of range 0..5", c.AutonomyLevel)
	}
	if c.ParseMode != "strict" && c.ParseMode != "lenient" {
		return fmt.Errorf("parse_mode must be strict or lenient, got %q", c.ParseMode)
	}
	if c.Audit.Capacity < 0 {
		return fmt.Errorf("audit capacity must be non-negative")
	}
	for name, d := range map[string]Duration{
		"tick_interval":   c.Thinking.TickInterval,
		"quick_interval":  c.Thinking.QuickInterval,
		"medium_interval": c.Thinking.MediumInterval,
		"deep_interval":   c.Thinking.DeepInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("thinking %s must be positive", name)
		}
	}
	return nil
}

// Save writes the configuration to path atomically, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, b, 0o600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

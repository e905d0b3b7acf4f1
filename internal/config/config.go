package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hmartin/llmsuggest/internal/core"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 30 * time.Second

// Config represents the application configuration.
type Config struct {
	// Provider is the default backend ("openai", "copilot", "claude").
	Provider string `yaml:"provider"`

	// OpenAIModel overrides the model used by the openai backend.
	OpenAIModel string `yaml:"openai_model,omitempty"`

	// TimeoutSeconds bounds a single backend request.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// LogLevel controls the file logger ("debug", "info", "warn", "error").
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Provider: "openai",
		LogLevel: "warn",
	}
}

// Timeout returns the configured backend timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads the configuration from disk. A missing file is not an error;
// defaults are returned instead.
func Load() (*Config, error) {
	configPath, err := core.ConfigFile()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Provider == "" {
		cfg.Provider = Default().Provider
	}

	return cfg, nil
}

// Save writes the configuration to disk.
func Save(cfg *Config) error {
	configPath, err := core.ConfigFile()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists checks if a configuration file exists.
func Exists() (bool, error) {
	configPath, err := core.ConfigFile()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTolerance is returned when a loaded tolerance is not positive.
var ErrInvalidTolerance = errors.New("tolerance must be positive")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority over the search locations.
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every tolerance is usable.
func (c *Config) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"merge_threshold", c.Tolerances.MergeThreshold},
		{"zero_area", c.Tolerances.ZeroArea},
		{"planar", c.Tolerances.Planar},
	}
	for _, ch := range checks {
		if ch.value <= 0 {
			return fmt.Errorf("%w: %s = %g", ErrInvalidTolerance, ch.name, ch.value)
		}
	}
	if c.Hull.Tolerance < 0 {
		return fmt.Errorf("%w: hull.tolerance = %g", ErrInvalidTolerance, c.Hull.Tolerance)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./meshtool.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "simplemesh")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "simplemesh")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "simplemesh")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "simplemesh")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

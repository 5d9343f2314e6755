package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = ".esmshift/config.yaml"

// ProjectConfig holds the contents of .esmshift/config.yaml. Every field is
// optional; command-line flags take precedence.
type ProjectConfig struct {
	Target     string   `yaml:"target"`
	Language   string   `yaml:"language"`
	Strict     bool     `yaml:"strict"`
	Include    []string `yaml:"include"`
	Exclude    []string `yaml:"exclude"`
	OutDir     string   `yaml:"out_dir"`
	LogLevel   string   `yaml:"log_level"`
	DebounceMs int      `yaml:"debounce_ms"`
	MCPLog     string   `yaml:"mcp_log"`
}

// loadProjectConfig reads the config at path. A missing file at the default
// location yields an empty config; a missing file that was named explicitly
// is an error.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return &ProjectConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if cfg.DebounceMs < 0 {
		return nil, fmt.Errorf("invalid config %s: debounce_ms must not be negative", path)
	}
	return &cfg, nil
}

// Debounce returns the configured debounce, or 0 when unset.
func (c *ProjectConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// pick applies the fallback chain: an explicitly set flag, then the config
// value, then the flag's default.
func pick(flagValue string, flagSet bool, configValue string) string {
	if flagSet || configValue == "" {
		return flagValue
	}
	return configValue
}

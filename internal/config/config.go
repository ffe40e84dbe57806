package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the demo screen.
type Config struct {
	Logging LoggingConfig `yaml:"logging" json:"logging" toml:"logging"`
	Screen  ScreenConfig  `yaml:"screen" json:"screen" toml:"screen"`
	Slider  SliderConfig  `yaml:"slider" json:"slider" toml:"slider"`
}

type LoggingConfig struct {
	Level string `yaml:"level" json:"level" toml:"level"`
}

type ScreenConfig struct {
	RefreshMS int `yaml:"refresh_ms" json:"refresh_ms" toml:"refresh_ms"`
	// PercentScript is an optional path to a JavaScript transform used for
	// the percent label; empty selects the built-in one.
	PercentScript string `yaml:"percent_script" json:"percent_script" toml:"percent_script"`
}

type SliderConfig struct {
	Min  int `yaml:"min" json:"min" toml:"min"`
	Max  int `yaml:"max" json:"max" toml:"max"`
	Step int `yaml:"step" json:"step" toml:"step"`
}

// Refresh returns the screen refresh interval.
func (s ScreenConfig) Refresh() time.Duration {
	return time.Duration(s.RefreshMS) * time.Millisecond
}

// Load reads a configuration file based on its extension and applies
// defaults for unset values. Supports: .yaml/.yml, .json, .toml
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("empty config path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension: %s", ext)
	}

	config.applyDefaults()
	return &config, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Screen.RefreshMS <= 0 {
		c.Screen.RefreshMS = 200
	}
	if c.Slider.Max <= c.Slider.Min {
		c.Slider.Max = c.Slider.Min + 100
	}
	if c.Slider.Step <= 0 {
		c.Slider.Step = 5
	}
}

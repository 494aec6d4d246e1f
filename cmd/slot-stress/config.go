package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Run     RunConfig     `toml:"run" yaml:"run"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Output  OutputConfig  `toml:"output" yaml:"output"`
}

type RunConfig struct {
	Duration time.Duration `toml:"duration" yaml:"duration"`
	Cycles   int           `toml:"cycles" yaml:"cycles"` // 0 runs until Duration elapses
	Owners   int           `toml:"owners" yaml:"owners"`
	Churn    float64       `toml:"churn" yaml:"churn"`     // fraction of owners replaced per cycle (0.0-1.0)
	Reserve  int           `toml:"reserve" yaml:"reserve"` // per-container capacity reserved up front
	Seed     int64         `toml:"seed" yaml:"seed"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

type OutputConfig struct {
	Report  string `toml:"report" yaml:"report"`   // optional markdown report path
	Profile string `toml:"profile" yaml:"profile"` // "cpu", "mem" or "off"
}

// Load reads a TOML or YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := defaults()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Run: RunConfig{
			Duration: 10 * time.Second,
			Owners:   10000,
			Churn:    0.05,
			Seed:     1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Profile: "off",
		},
	}
}

func (c *Config) validate() error {
	if c.Run.Owners <= 0 {
		return fmt.Errorf("run.owners must be positive, got %d", c.Run.Owners)
	}
	if c.Run.Churn < 0 || c.Run.Churn > 1 {
		return fmt.Errorf("run.churn must be within [0, 1], got %v", c.Run.Churn)
	}
	if c.Run.Cycles < 0 {
		return fmt.Errorf("run.cycles must not be negative, got %d", c.Run.Cycles)
	}
	if c.Run.Cycles == 0 && c.Run.Duration <= 0 {
		return fmt.Errorf("either run.cycles or run.duration must be set")
	}
	switch c.Output.Profile {
	case "", "off", "cpu", "mem":
	default:
		return fmt.Errorf("output.profile must be cpu, mem or off, got %q", c.Output.Profile)
	}
	return nil
}

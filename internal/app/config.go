package app

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultOutputPath is where the generated program is written by default.
const DefaultOutputPath = "main.cpp"

// StdoutPath selects standard output instead of a file.
const StdoutPath = "-"

// DumpFormats lists the formats -dump-config can write.
var DumpFormats = []string{"hcl", "yaml", "toml"}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // .hcl/.yaml file or a directory of them
	OutputPath string

	DumpConfig bool
	DumpFormat string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath
	}
	if cfg.DumpFormat == "" {
		cfg.DumpFormat = DumpFormats[0]
	}
	if !slices.Contains(DumpFormats, cfg.DumpFormat) {
		return nil, fmt.Errorf("invalid dump format %q: must be one of %v", cfg.DumpFormat, DumpFormats)
	}
	return &cfg, nil
}

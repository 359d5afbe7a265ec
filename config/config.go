// Package config handles loading and validation of pharmetrics.yaml run
// configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"pharmetrics/claims"
)

// Config holds run settings for the reporting pipeline.
type Config struct {
	// ExcludeReverted drops reverted claims from price aggregation. The
	// default keeps them and reports reverts as a separate counter.
	ExcludeReverted bool `yaml:"exclude_reverted"`
	TopChains       int  `yaml:"top_chains"`
	TopQuantities   int  `yaml:"top_quantities"`
	Workers         int  `yaml:"workers"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		TopChains:     claims.DefaultTopChains,
		TopQuantities: claims.DefaultTopQuantities,
		Workers:       runtime.NumCPU(),
	}
}

// Load reads and parses the configuration at path. A missing file yields
// the defaults; fields omitted from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.TopChains < 1 {
		return fmt.Errorf("top_chains must be >= 1")
	}
	if cfg.TopQuantities < 1 {
		return fmt.Errorf("top_quantities must be >= 1")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	return nil
}

// Options converts the configuration into pipeline options.
func (c *Config) Options() claims.Options {
	return claims.Options{
		Policy:        claims.Policy{ExcludeReverted: c.ExcludeReverted},
		TopChains:     c.TopChains,
		TopQuantities: c.TopQuantities,
		Workers:       c.Workers,
	}
}

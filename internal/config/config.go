// Package config loads engine configuration from .quill/config.yaml with
// QUILL_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/springroll-app/quill/internal/patterns"
	"github.com/springroll-app/quill/internal/store"
)

// FileName is the config file inside a .quill directory.
const FileName = "config.yaml"

// Config holds the tunable knobs of the engine. The zero value is not
// usable; start from Default.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path"`

	// MinPatternCount is the terminology significance threshold.
	MinPatternCount int `yaml:"min_pattern_count"`

	// MinStyleSamples is the style inference evidence threshold.
	MinStyleSamples int `yaml:"min_style_samples"`

	// ExampleCount is how many exemplars prompt enrichment embeds.
	ExampleCount int `yaml:"example_count"`
}

// Default returns the standard configuration for a project root.
func Default(root string) Config {
	defaults := patterns.DefaultConfig()
	return Config{
		DBPath:          store.DBPath(root),
		MinPatternCount: defaults.MinPatternCount,
		MinStyleSamples: defaults.MinStyleSamples,
		ExampleCount:    2,
	}
}

// Load reads .quill/config.yaml under root if it exists, then applies
// QUILL_* environment overrides. A missing file is not an error.
func Load(root string) (Config, error) {
	cfg := Default(root)

	path := filepath.Join(store.LocalQuillPath(root), FileName)
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.DBPath = envStr("QUILL_DB_PATH", cfg.DBPath)
	cfg.MinPatternCount = envInt("QUILL_MIN_PATTERN_COUNT", cfg.MinPatternCount)
	cfg.MinStyleSamples = envInt("QUILL_MIN_STYLE_SAMPLES", cfg.MinStyleSamples)
	cfg.ExampleCount = envInt("QUILL_EXAMPLE_COUNT", cfg.ExampleCount)

	return cfg, nil
}

// PatternConfig maps the thresholds into the extractor's config.
func (c Config) PatternConfig() *patterns.Config {
	pc := patterns.DefaultConfig()
	pc.MinPatternCount = c.MinPatternCount
	pc.MinStyleSamples = c.MinStyleSamples
	return &pc
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

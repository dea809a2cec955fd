// Package config provides configuration loading for patternbank.
package config

import (
	"fmt"
	"time"
)

// Duration wraps time.Duration so YAML and env values like "720h" or
// "90d-equivalent hours" parse directly into config fields.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full patternbank configuration.
type Config struct {
	Knowledge KnowledgeConfig `koanf:"knowledge"`
	Project   ProjectConfig   `koanf:"project"`
	Curation  CurationConfig  `koanf:"curation"`
	History   HistoryConfig   `koanf:"history"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// KnowledgeConfig locates the knowledge-base directory.
type KnowledgeConfig struct {
	// Dir is the root of the JSON stores. Defaults to ~/.patternbank.
	Dir string `koanf:"dir"`
}

// ProjectConfig names the project under discovery.
type ProjectConfig struct {
	// Root is the directory discovery scans. Defaults to the current
	// working directory.
	Root string `koanf:"root"`
}

// CurationConfig holds the quality-control knobs.
type CurationConfig struct {
	// Threshold is the minimum confidence a pattern needs to survive
	// curation, in (0, 0.95].
	Threshold float64 `koanf:"threshold"`

	// Retention is how long an unused, previously tried pattern is kept
	// before pruning.
	Retention Duration `koanf:"retention"`
}

// HistoryConfig controls the append-only outcome log.
type HistoryConfig struct {
	// Retention is how long daily history files are kept.
	Retention Duration `koanf:"retention"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`
}

// Defaults applied by Load for any field left unset.
const (
	DefaultThreshold        = 0.7
	DefaultPatternRetention = 90 * 24 * time.Hour
	DefaultHistoryRetention = 30 * 24 * time.Hour
)

func applyDefaults(cfg *Config) {
	if cfg.Knowledge.Dir == "" {
		cfg.Knowledge.Dir = defaultKnowledgeDir()
	}
	if cfg.Project.Root == "" {
		cfg.Project.Root = "."
	}
	if cfg.Curation.Threshold == 0 {
		cfg.Curation.Threshold = DefaultThreshold
	}
	if cfg.Curation.Retention == 0 {
		cfg.Curation.Retention = Duration(DefaultPatternRetention)
	}
	if cfg.History.Retention == 0 {
		cfg.History.Retention = Duration(DefaultHistoryRetention)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks field-level invariants after defaults are applied.
func (c *Config) Validate() error {
	if c.Curation.Threshold <= 0 || c.Curation.Threshold > 0.95 {
		return fmt.Errorf("curation.threshold must be in (0, 0.95], got %.2f", c.Curation.Threshold)
	}
	if c.Curation.Retention < 0 {
		return fmt.Errorf("curation.retention cannot be negative")
	}
	if c.History.Retention < 0 {
		return fmt.Errorf("history.retention cannot be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

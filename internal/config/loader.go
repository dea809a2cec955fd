package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// envPrefix namespaces patternbank environment overrides.
const envPrefix = "PATTERNBANK_"

// Load builds configuration with the usual precedence, highest first:
//
//  1. Environment variables (PATTERNBANK_CURATION_THRESHOLD, ...)
//  2. YAML config file
//  3. Defaults
//
// configPath names the YAML file to load; empty means
// <knowledge dir>/config.yml, and a missing file is not an error —
// defaults plus environment cover a fresh install.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		configPath = filepath.Join(defaultKnowledgeDir(), "config.yml")
	}

	if f, err := os.Open(configPath); err == nil {
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	}

	// Environment overrides: PATTERNBANK_<SECTION>_<FIELD_NAME> maps to
	// section.field_name. The split happens on the first underscore
	// only, so multi-word field names keep theirs.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// defaultKnowledgeDir is ~/.patternbank, falling back to a relative
// .patternbank when the home directory cannot be resolved.
func defaultKnowledgeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".patternbank"
	}
	return filepath.Join(home, ".patternbank")
}

// EnsureKnowledgeDir creates the knowledge-base directory if missing.
func EnsureKnowledgeDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create knowledge directory %s: %w", dir, err)
	}
	return nil
}

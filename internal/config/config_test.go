package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	// Point at a nonexistent file: defaults only.
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yml"))
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Project.Root)
	assert.NotEmpty(t, cfg.Knowledge.Dir)
	assert.InDelta(t, 0.7, cfg.Curation.Threshold, 1e-9)
	assert.Equal(t, 90*24*time.Hour, cfg.Curation.Retention.Std())
	assert.Equal(t, 30*24*time.Hour, cfg.History.Retention.Std())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
knowledge:
  dir: /var/lib/patternbank
project:
  root: /srv/app
curation:
  threshold: 0.8
  retention: 1440h
history:
  retention: 168h
logging:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/patternbank", cfg.Knowledge.Dir)
	assert.Equal(t, "/srv/app", cfg.Project.Root)
	assert.InDelta(t, 0.8, cfg.Curation.Threshold, 1e-9)
	assert.Equal(t, 60*24*time.Hour, cfg.Curation.Retention.Std())
	assert.Equal(t, 7*24*time.Hour, cfg.History.Retention.Std())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
curation:
  threshold: 0.8
logging:
  level: debug
`)
	t.Setenv("PATTERNBANK_CURATION_THRESHOLD", "0.9")
	t.Setenv("PATTERNBANK_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.9, cfg.Curation.Threshold, 1e-9)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"threshold above ceiling", "curation:\n  threshold: 0.96\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"bad duration", "history:\n  retention: ninety-days\n"},
		{"unparseable yaml", "curation: [broken\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestDurationRoundTrip(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("720h")))
	assert.Equal(t, 30*24*time.Hour, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "720h0m0s", string(text))
}

func TestEnsureKnowledgeDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "kb", "nested")
	require.NoError(t, EnsureKnowledgeDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

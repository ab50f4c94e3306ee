package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1024, cfg.ChunkSizeBytes)
	assert.Equal(t, 30, cfg.Logging.RotationDays)
	assert.Empty(t, cfg.DatabasePath)
	assert.Empty(t, cfg.Metrics.TextfilePath)
	assert.Empty(t, cfg.Safety.AllowedRoots)
	assert.Zero(t, cfg.ResourceLimits.MaxCPUPercent)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
chunk_size_bytes: 4096
database_path: /var/lib/shredder/../shredder/history.db
logging:
  dir: /var/log/shredder
  rotation_days: 7
metrics:
  textfile_path: /var/lib/node_exporter/shredder.prom
safety:
  allowed_roots:
    - /home/alice/
    - /tmp/scratch
  protected_paths:
    - /srv/keep
resource_limits:
  max_cpu_percent: 25
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.ChunkSizeBytes)
	assert.Equal(t, "/var/lib/shredder/history.db", cfg.DatabasePath)
	assert.Equal(t, "/var/log/shredder", cfg.Logging.Dir)
	assert.Equal(t, 7, cfg.Logging.RotationDays)
	assert.Equal(t, "/var/lib/node_exporter/shredder.prom", cfg.Metrics.TextfilePath)
	assert.Equal(t, []string{"/home/alice", "/tmp/scratch"}, cfg.Safety.AllowedRoots)
	assert.Equal(t, []string{"/srv/keep"}, cfg.Safety.ProtectedPaths)
	assert.Equal(t, 25.0, cfg.ResourceLimits.MaxCPUPercent)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.ChunkSizeBytes)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative chunk", "chunk_size_bytes: -1\n"},
		{"relative allowed root", "safety:\n  allowed_roots: [relative/dir]\n"},
		{"empty protected path", "safety:\n  protected_paths: ['']\n"},
		{"cpu above 100", "resource_limits:\n  max_cpu_percent: 150\n"},
		{"negative rotation", "logging:\n  rotation_days: -3\n"},
		{"unknown field", "iterations: 3\n"},
		{"bad yaml", "chunk_size_bytes: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateAfterOverride(t *testing.T) {
	cfg := Default()
	cfg.ChunkSizeBytes = -10
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ChunkSizeBytes = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1024, cfg.ChunkSizeBytes)
}

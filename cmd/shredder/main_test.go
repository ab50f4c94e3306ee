package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file-shredder/internal/database"
	"file-shredder/internal/exitcodes"
)

// emptyConfig keeps tests independent of /etc/shredder/config.yaml
func emptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func makeTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "A")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "B"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), make([]byte, 5000), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "B", "g.txt"), nil, 0o644))
	return root
}

func TestRunArgumentErrors(t *testing.T) {
	cfg := emptyConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{"--config", cfg}},
		{"two args", []string{"--config", cfg, "/tmp/x", "1"}},
		{"four args", []string{"--config", cfg, "/tmp/x", "1", "0", "extra"}},
		{"negative iterations", []string{"--config", cfg, "--", "/tmp/x", "-1", "0"}},
		{"oversized iterations", []string{"--config", cfg, "/tmp/x", "99999999999999999999999", "0"}},
		{"non-numeric iterations", []string{"--config", cfg, "/tmp/x", "three", "0"}},
		{"unknown flag", []string{"--bogus", "/tmp/x", "1", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, exitcodes.InvalidArgs, run(tt.args))
		})
	}
}

func TestRunNegativeIterationsLeavesTarget(t *testing.T) {
	root := makeTree(t)

	assert.Equal(t, exitcodes.InvalidArgs, run([]string{"--config", emptyConfig(t), "--", root, "-1", "0"}))
	assert.FileExists(t, filepath.Join(root, "f.txt"))
}

func TestRunShredsTree(t *testing.T) {
	root := makeTree(t)

	code := run([]string{"--config", emptyConfig(t), root, "3", "0"})

	assert.Equal(t, exitcodes.Success, code)
	assert.NoDirExists(t, root)
}

func TestRunNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	assert.Equal(t, exitcodes.NotFound, run([]string{"--config", emptyConfig(t), missing, "1", "1"}))
}

func TestRunRefusesProtectedPath(t *testing.T) {
	assert.Equal(t, exitcodes.SafetyViolation, run([]string{"--config", emptyConfig(t), "/", "1", "0"}))
	assert.Equal(t, exitcodes.SafetyViolation, run([]string{"--config", emptyConfig(t), "/etc/hostname", "1", "0"}))
}

func TestRunAllowedRoots(t *testing.T) {
	root := makeTree(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("safety:\n  allowed_roots: [/nonexistent/scratch]\n"), 0o644))

	assert.Equal(t, exitcodes.SafetyViolation, run([]string{"--config", cfgPath, root, "1", "0"}))
	assert.DirExists(t, root)
}

func TestRunRefusesSymlinkToProtected(t *testing.T) {
	dir := t.TempDir()
	prot := filepath.Join(dir, "prot")
	keep := filepath.Join(prot, "keep.txt")
	require.NoError(t, os.MkdirAll(prot, 0o755))
	require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o644))
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(prot, link))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("safety:\n  protected_paths: ["+prot+"]\n"), 0o644))

	assert.Equal(t, exitcodes.SafetyViolation, run([]string{"--config", cfgPath, link, "1", "0"}))
	assert.FileExists(t, keep)
}

func TestRunInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("chunk_size_bytes: -5\n"), 0o644))

	assert.Equal(t, exitcodes.InvalidConfig, run([]string{"--config", cfgPath, "/tmp/x", "1", "0"}))
	assert.Equal(t, exitcodes.InvalidConfig, run([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "/tmp/x", "1", "0"}))
	assert.Equal(t, exitcodes.InvalidConfig, run([]string{"--config", emptyConfig(t), "--chunk-size", "-1", "/tmp/x", "1", "0"}))
}

func TestRunDryRun(t *testing.T) {
	root := makeTree(t)

	code := run([]string{"--config", emptyConfig(t), "--dry-run", root, "1", "1"})

	assert.Equal(t, exitcodes.Success, code)
	assert.FileExists(t, filepath.Join(root, "f.txt"))
	assert.FileExists(t, filepath.Join(root, "B", "g.txt"))
}

func TestRunRecordsHistoryAndMetrics(t *testing.T) {
	root := makeTree(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	promPath := filepath.Join(dir, "shredder.prom")
	logDir := filepath.Join(dir, "logs")

	code := run([]string{
		"--config", emptyConfig(t),
		"--db", dbPath,
		"--metrics-file", promPath,
		"--log-dir", logDir,
		"--chunk-size", "512",
		root, "2", "1",
	})
	require.Equal(t, exitcodes.Success, code)

	db, err := database.NewShredDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	records, err := db.GetEventsByAction(database.ActionShred)
	require.NoError(t, err)
	assert.Len(t, records, 4)

	assert.FileExists(t, promPath)
	assert.FileExists(t, filepath.Join(logDir, "shredder.log"))
}

func TestLoadConfigDefaultWhenMissing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.ChunkSizeBytes)

	_, err = loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.Error(t, err)
}

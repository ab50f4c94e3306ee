package fsops

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSDeleterRemovesFileAndEmptyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "d")
	file := filepath.Join(dir, "f")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	var d Deleter = OSDeleter{}
	assert.Error(t, d.Remove(dir), "non-empty directory must not be removed")
	require.NoError(t, d.Remove(file))
	require.NoError(t, d.Remove(dir))
	assert.NoDirExists(t, dir)
}

func TestFakeDeleter(t *testing.T) {
	boom := errors.New("boom")
	f := &FakeDeleter{Fail: map[string]error{"/b": boom}}

	assert.NoError(t, f.Remove("/a"))
	assert.ErrorIs(t, f.Remove("/b"), boom)
	assert.Equal(t, []string{"rm:/a", "rm:/b"}, f.Calls)
}

func TestFakeDeleterPassthrough(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	f := &FakeDeleter{Passthrough: true}
	require.NoError(t, f.Remove(file))
	assert.NoFileExists(t, file)
}

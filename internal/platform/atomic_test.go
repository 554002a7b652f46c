package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "nested", "jail.yaml")

	require.NoError(t, AtomicWriteFile(filename, []byte("name: t1\n"), 0o600))

	b, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "name: t1\n", string(b))

	info, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, AtomicWriteFile(filename, []byte("name: t2\n"), 0o600))

	b, err = os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "name: t2\n", string(b))

	entries, err := os.ReadDir(filepath.Dir(filename))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

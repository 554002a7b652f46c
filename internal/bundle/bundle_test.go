package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBundle(t *testing.T, config string, rootfs bool) string {
	t.Helper()

	dir := t.TempDir()
	if rootfs {
		require.NoError(t, os.Mkdir(filepath.Join(dir, "rootfs"), 0o755))
	}

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "config.json"),
		[]byte(config),
		0o644,
	))

	return dir
}

func TestNew(t *testing.T) {
	dir := writeBundle(t, `{
		"ociVersion": "1.2.0",
		"root": {"path": "rootfs"},
		"hostname": "web"
	}`, true)

	b, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "rootfs"), b.Rootfs)
	assert.Equal(t, filepath.Join(dir, "config.json"), b.SpecPath)
	assert.Equal(t, "web", b.Spec.Hostname)
}

func TestNewErrors(t *testing.T) {
	scenarios := map[string]struct {
		config string
		rootfs bool
	}{
		"test invalid json": {
			config: `{"root": `,
			rootfs: true,
		},
		"test no root": {
			config: `{"ociVersion": "1.2.0"}`,
			rootfs: true,
		},
		"test missing rootfs": {
			config: `{"root": {"path": "rootfs"}}`,
			rootfs: false,
		},
	}

	for scenario, data := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			_, err := New(writeBundle(t, data.config, data.rootfs))
			assert.Error(t, err)
		})
	}
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

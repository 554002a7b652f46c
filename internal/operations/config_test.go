package operations

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/nixpig/jailer/pkg/jail"
	"github.com/nixpig/jailer/pkg/rctl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndLoadConfig(t *testing.T) {
	output := filepath.Join(t.TempDir(), "web.yaml")

	s := jail.NewStopped("/jails/web").
		WithName("web").
		WithHostname("web.example").
		WithIP(netip.MustParseAddr("10.0.0.2")).
		WithParam("allow.raw_sockets", jail.Int(1)).
		WithLimit(rctl.Wallclock, rctl.AmountOf(60), rctl.Deny)

	out, err := writeConfig(s, output)
	require.NoError(t, err)

	b, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, out, string(b))

	got, err := LoadConfig(output)
	require.NoError(t, err)
	assert.True(t, s.Equal(got), "want %+v, got %+v", s, got)
}

func TestWriteConfigWithoutOutput(t *testing.T) {
	out, err := writeConfig(jail.NewStopped("/jails/web"), "")
	require.NoError(t, err)
	assert.Equal(t, "path: /jails/web\n", out)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(
		invalid,
		[]byte("params:\n  allow.raw_sockets:\n    float: 1\n"),
		0o644,
	))

	scenarios := map[string]string{
		"test missing file": filepath.Join(dir, "missing.yaml"),
		"test unknown type": invalid,
	}

	for scenario, path := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

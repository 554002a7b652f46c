package jail

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	self, err := os.Executable()
	require.NoError(t, err)

	cmd, err := Command(Running{JID: 5}, []string{"reexec"}, "/bin/sh", "-c", "hostname")
	require.NoError(t, err)

	assert.Equal(t, self, cmd.Path)
	assert.Equal(t, []string{
		self, "reexec", "5", "--", "/bin/sh", "-c", "hostname",
	}, cmd.Args)
}

func TestCommandWithoutArgv(t *testing.T) {
	_, err := Command(Running{JID: 5}, []string{"reexec"})
	assert.Error(t, err)

	assert.Error(t, ExecIn(Running{JID: 5}, nil, nil))
}

package cli

import (
	"bytes"
	"net/netip"
	"testing"

	"github.com/nixpig/jailer/internal/operations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	cmd := RootCmd()

	assert.Equal(t, "jailer", cmd.Use)

	logFlag := cmd.PersistentFlags().Lookup("log")
	assert.NotNil(t, logFlag)
	assert.Equal(t, "l", logFlag.Shorthand)

	debugFlag := cmd.PersistentFlags().Lookup("debug")
	assert.NotNil(t, debugFlag)
	assert.Equal(t, "d", debugFlag.Shorthand)

	for _, name := range []string{
		"list",
		"start",
		"stop",
		"save",
		"kill",
		"restart",
		"param",
		"usage",
		"exec",
		"defer-cleanup",
		"reexec",
	} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	reexec, _, err := cmd.Find([]string{operations.ReexecCmd})
	require.NoError(t, err)
	assert.True(t, reexec.Hidden)
}

func TestStartCmd(t *testing.T) {
	cmd := startCmd()

	assert.Equal(t, "start [flags]", cmd.Use)

	for name, shorthand := range map[string]string{
		"path":     "p",
		"name":     "n",
		"hostname": "H",
		"ip":       "i",
		"param":    "P",
		"limit":    "L",
		"config":   "c",
		"bundle":   "b",
	} {
		flag := cmd.Flag(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, shorthand, flag.Shorthand, name)
	}

	require.NoError(t, cmd.ParseFlags([]string{
		"--limit", "maxproc:deny=10",
		"-P", "allow.raw_sockets=1",
		"-i", "10.0.0.2,fe80::2",
	}))

	ips, err := cmd.Flags().GetStringSlice("ip")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.2", "fe80::2"}, ips)
	assert.Equal(t, "[maxproc:deny=10]", cmd.Flag("limit").Value.String())
	assert.Equal(t, "[allow.raw_sockets=1]", cmd.Flag("param").Value.String())
}

func TestStopAndSaveCmd(t *testing.T) {
	stop := stopCmd()
	assert.Equal(t, "stop [flags] JAIL", stop.Use)
	assert.Equal(t, "o", stop.Flag("output").Shorthand)

	save := saveCmd()
	assert.Equal(t, "save [flags] JAIL", save.Use)
	assert.Equal(t, "o", save.Flag("output").Shorthand)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeTable(&buf, []operations.ListEntry{
		{
			JID:      1,
			Name:     "web",
			Hostname: "web.example",
			Path:     "/jails/web",
			IPs: []netip.Addr{
				netip.MustParseAddr("10.0.0.2"),
				netip.MustParseAddr("fe80::2"),
			},
		},
		{
			JID:  2,
			Name: "2",
			Path: "/jails/db",
		},
	}))

	assert.Equal(t,
		"JID  NAME  HOSTNAME     PATH        IP\n"+
			"1    web   web.example  /jails/web  10.0.0.2,fe80::2\n"+
			"2    2                  /jails/db   \n",
		buf.String(),
	)
}

func TestExitCodeError(t *testing.T) {
	assert.Equal(t, "exit status 3", (&ExitCodeError{Code: 3}).Error())
}

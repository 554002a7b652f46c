package operations

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/nixpig/jailer/internal/platform"
	"github.com/nixpig/jailer/internal/platform/platformtest"
	"github.com/nixpig/jailer/pkg/jail"
	"github.com/nixpig/jailer/pkg/rctl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withKernel points pkg/jail at a fresh in-memory kernel for the duration
// of the test.
func withKernel(t *testing.T) *platformtest.Kernel {
	t.Helper()

	k := platformtest.NewKernel()
	jail.SetKernel(k)
	jail.SetAccounting(rctl.NewClient(k))

	t.Cleanup(func() {
		jail.SetKernel(platform.Host())
		jail.SetAccounting(rctl.Host())
	})

	return k
}

func startWeb(t *testing.T) int {
	t.Helper()

	jid, err := Start(&StartOpts{
		Path:     "/jails/web",
		Name:     "web",
		Hostname: "web.example",
		IPs:      []string{"10.0.0.2"},
		Params:   map[string]string{"allow.raw_sockets": "1"},
		Limits: []jail.Limit{{
			Resource: rctl.Wallclock,
			Amount:   rctl.AmountOf(3600),
			Action:   rctl.Deny,
		}},
	})
	require.NoError(t, err)

	return jid
}

func TestStart(t *testing.T) {
	k := withKernel(t)

	jid := startWeb(t)

	_, ok := k.Jail(jid)
	assert.True(t, ok)
	assert.Equal(t, []string{"jail:web:wallclock:deny=3600"}, k.Rules())

	v, err := ParamGet(&ParamGetOpts{ID: "web", Name: "allow.raw_sockets"})
	require.NoError(t, err)
	assert.Equal(t, jail.Int(1), v)
}

func TestStartErrors(t *testing.T) {
	scenarios := map[string]*StartOpts{
		"test unknown param": {
			Path:   "/jails/web",
			Params: map[string]string{"allow.bananas": "1"},
		},
		"test invalid param value": {
			Path:   "/jails/web",
			Params: map[string]string{"securelevel": "high"},
		},
		"test unnamed with limits": {
			Path: "/jails/web",
			Limits: []jail.Limit{{
				Resource: rctl.MaxProcesses,
				Amount:   rctl.AmountOf(10),
				Action:   rctl.Deny,
			}},
		},
	}

	for scenario, opts := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			k := withKernel(t)

			_, err := Start(opts)
			assert.Error(t, err)
			assert.Zero(t, k.JailCount())
		})
	}
}

func TestList(t *testing.T) {
	withKernel(t)

	entries, err := List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	jid := startWeb(t)

	entries, err = List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, jid, entries[0].JID)
	assert.Equal(t, "web", entries[0].Name)
	assert.Equal(t, "web.example", entries[0].Hostname)
	assert.Equal(t, "/jails/web", entries[0].Path)
	require.Len(t, entries[0].IPs, 1)
	assert.Equal(t, "10.0.0.2", entries[0].IPs[0].String())
}

func TestListInspectionFailure(t *testing.T) {
	k := withKernel(t)

	startWeb(t)

	k.RemoveSysctl(platform.JailMaxAFIPs)

	entries, err := List()
	assert.Error(t, err)
	assert.Nil(t, entries)
}

func TestLookup(t *testing.T) {
	scenarios := map[string]struct {
		id    func(jid int) string
		found bool
	}{
		"test by name": {
			id:    func(int) string { return "web" },
			found: true,
		},
		"test by jid": {
			id:    strconv.Itoa,
			found: true,
		},
		"test missing name": {
			id: func(int) string { return "db" },
		},
		"test missing jid": {
			id: func(jid int) string { return strconv.Itoa(jid + 100) },
		},
		"test negative jid": {
			id: func(int) string { return "-1" },
		},
	}

	for scenario, data := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			withKernel(t)

			jid := startWeb(t)

			r, err := lookup(data.id(jid))
			if !data.found {
				assert.ErrorIs(t, err, jail.ErrNotFound)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, jid, r.JID)
		})
	}
}

func TestKill(t *testing.T) {
	k := withKernel(t)

	startWeb(t)

	require.NoError(t, Kill(&KillOpts{ID: "web"}))
	assert.Zero(t, k.JailCount())
	assert.Empty(t, k.Rules())

	assert.ErrorIs(t, Kill(&KillOpts{ID: "web"}), jail.ErrNotFound)
}

func TestStopWritesOutput(t *testing.T) {
	k := withKernel(t)

	startWeb(t)

	output := filepath.Join(t.TempDir(), "configs", "web.yaml")

	config, err := Stop(&StopOpts{ID: "web", Output: output})
	require.NoError(t, err)
	assert.Contains(t, config, "name: web")
	assert.Zero(t, k.JailCount())

	s, err := LoadConfig(output)
	require.NoError(t, err)
	assert.Equal(t, "/jails/web", s.Path)
	assert.Equal(t, "web.example", s.Hostname)
	assert.Equal(t, jail.Int(1), s.Params["allow.raw_sockets"])
	assert.Len(t, s.Limits, 1)

	// The saved configuration starts an equivalent jail.
	jid, err := Start(&StartOpts{Config: output})
	require.NoError(t, err)

	name, err := jail.FromJIDUnchecked(jid).Name()
	require.NoError(t, err)
	assert.Equal(t, "web", name)
}

func TestSave(t *testing.T) {
	k := withKernel(t)

	jid := startWeb(t)

	config, err := Save(&SaveOpts{ID: "web"})
	require.NoError(t, err)
	assert.Contains(t, config, "path: /jails/web")
	assert.Contains(t, config, "hostname: web.example")

	_, ok := k.Jail(jid)
	assert.True(t, ok)

	_, err = Save(&SaveOpts{ID: "db"})
	assert.ErrorIs(t, err, jail.ErrNotFound)
}

func TestRestart(t *testing.T) {
	k := withKernel(t)

	jid := startWeb(t)

	restarted, err := Restart(&RestartOpts{ID: "web"})
	require.NoError(t, err)
	assert.NotEqual(t, jid, restarted)

	_, ok := k.Jail(jid)
	assert.False(t, ok)
	_, ok = k.Jail(restarted)
	assert.True(t, ok)
	assert.Equal(t, []string{"jail:web:wallclock:deny=3600"}, k.Rules())
}

func TestDeferCleanup(t *testing.T) {
	k := withKernel(t)

	jid := startWeb(t)

	require.NoError(t, DeferCleanup(&DeferCleanupOpts{ID: strconv.Itoa(jid)}))

	_, ok := k.Jail(jid)
	assert.False(t, ok)
}

func TestParamSet(t *testing.T) {
	scenarios := map[string]struct {
		name  string
		value string
		want  jail.Value
	}{
		"test string": {
			name:  "host.hostname",
			value: "renamed.example",
			want:  jail.String("renamed.example"),
		},
		"test int": {
			name:  "securelevel",
			value: "2",
			want:  jail.Int(2),
		},
		"test ulong": {
			name:  "host.hostid",
			value: "0x10",
			want:  jail.Ulong(16),
		},
		"test addresses": {
			name:  "ip4.addr",
			value: "10.0.0.3,10.0.0.4",
		},
	}

	for scenario, data := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			withKernel(t)

			startWeb(t)

			require.NoError(t, ParamSet(&ParamSetOpts{
				ID:    "web",
				Name:  data.name,
				Value: data.value,
			}))

			v, err := ParamGet(&ParamGetOpts{ID: "web", Name: data.name})
			require.NoError(t, err)

			if data.want != nil {
				assert.Equal(t, data.want, v)
			} else {
				assert.Equal(t, data.value, v.String())
			}
		})
	}
}

func TestParamSetErrors(t *testing.T) {
	scenarios := map[string]struct {
		id    string
		name  string
		value string
	}{
		"test tunable":      {id: "web", name: "osrelease", value: "14.1-RELEASE"},
		"test unknown":      {id: "web", name: "allow.bananas", value: "1"},
		"test invalid":      {id: "web", name: "securelevel", value: "high"},
		"test missing jail": {id: "db", name: "securelevel", value: "1"},
	}

	for scenario, data := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			withKernel(t)

			startWeb(t)

			assert.Error(t, ParamSet(&ParamSetOpts{
				ID:    data.id,
				Name:  data.name,
				Value: data.value,
			}))
		})
	}
}

func TestParamList(t *testing.T) {
	withKernel(t)

	startWeb(t)

	params, err := ParamList(&ParamListOpts{ID: "web"})
	require.NoError(t, err)

	assert.Equal(t, jail.Int(1), params["allow.raw_sockets"])
	assert.Contains(t, params, "securelevel")
	assert.NotContains(t, params, "jid")
	assert.NotContains(t, params, "name")
}

func TestUsage(t *testing.T) {
	k := withKernel(t)

	startWeb(t)

	k.SetUsage("jail:web", "cputime=3,maxproc=2")

	usage, err := Usage(&UsageOpts{ID: "web"})
	require.NoError(t, err)
	assert.Equal(t, map[rctl.Resource]uint64{
		rctl.CPUTime:      3,
		rctl.MaxProcesses: 2,
	}, usage)

	_, err = Usage(&UsageOpts{ID: "db"})
	assert.ErrorIs(t, err, jail.ErrNotFound)
}

func TestExecMissingJail(t *testing.T) {
	withKernel(t)

	_, err := Exec(&ExecOpts{ID: "db", Args: []string{"/bin/sh"}})
	assert.ErrorIs(t, err, jail.ErrNotFound)
}

package jail

import (
	"errors"
	"net/netip"
	"slices"
	"syscall"
	"testing"

	"github.com/nixpig/jailer/internal/platform"
	"github.com/nixpig/jailer/internal/platform/platformtest"
	"github.com/nixpig/jailer/pkg/rctl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jids(t *testing.T) []int {
	t.Helper()

	var ids []int
	for r := range All() {
		ids = append(ids, r.JID)
	}

	return ids
}

func TestStartQueryKill(t *testing.T) {
	withKernel(t)

	before := jids(t)

	r, err := NewStopped("/rescue").
		WithName("t1").
		WithIP(netip.MustParseAddr("127.0.1.1")).
		WithParam("allow.raw_sockets", Int(1)).
		Start()
	require.NoError(t, err)

	assert.NotContains(t, before, r.JID)
	assert.Contains(t, jids(t), r.JID)

	name, err := r.Name()
	require.NoError(t, err)
	assert.Equal(t, "t1", name)

	path, err := r.Path()
	require.NoError(t, err)
	assert.Equal(t, "/rescue", path)

	ips, err := r.IPs()
	require.NoError(t, err)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("127.0.1.1")}, ips)

	v, err := r.Param("allow.raw_sockets")
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)

	require.NoError(t, r.Kill())
	assert.NotContains(t, jids(t), r.JID)
}

func TestNonexistentJail(t *testing.T) {
	withKernel(t)

	r := FromJIDUnchecked(424242)

	_, err := r.Name()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Params()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.IPs()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Save()
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, r.Kill(), ErrNotFound)
	assert.ErrorIs(t, r.DeferCleanup(), ErrNotFound)

	_, err = FromJID(424242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFromName(t *testing.T) {
	withKernel(t)

	r, err := NewStopped("/rescue").WithName("named").Start()
	require.NoError(t, err)

	found, err := FromName("named")
	require.NoError(t, err)
	assert.Equal(t, r, found)

	numeric, err := FromName("77")
	require.NoError(t, err)
	assert.Equal(t, Running{JID: 77}, numeric)

	_, err = FromName("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = FromName("-7")
	assert.ErrorIs(t, err, ErrNotFound)

	checked, err := FromJID(r.JID)
	require.NoError(t, err)
	assert.Equal(t, r, checked)
}

func TestCompare(t *testing.T) {
	a, b := Running{JID: 1}, Running{JID: 2}

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))

	sorted := []Running{b, a}
	slices.SortFunc(sorted, Running.Compare)
	assert.Equal(t, []Running{a, b}, sorted)
}

func TestKillRemovesLimits(t *testing.T) {
	k := withKernel(t)

	r, err := NewStopped("/rescue").
		WithName("killme").
		WithLimit(rctl.Wallclock, rctl.AmountOf(60), rctl.Deny).
		Start()
	require.NoError(t, err)

	other, err := NewStopped("/rescue").
		WithName("keepme").
		WithLimit(rctl.Wallclock, rctl.AmountOf(60), rctl.Deny).
		Start()
	require.NoError(t, err)

	require.NoError(t, r.Kill())

	assert.Equal(t, []string{"jail:keepme:wallclock:deny=60"}, k.Rules())
	_, ok := k.Jail(other.JID)
	assert.True(t, ok)
}

func TestKillToleratesMissingAccounting(t *testing.T) {
	scenarios := map[string]func(k *platformtest.Kernel){
		"test disabled": func(k *platformtest.Kernel) {
			k.SetSysctlUint("kern.racct.enable", 0)
		},
		"test not present": func(k *platformtest.Kernel) {
			k.RemoveSysctl("kern.racct.enable")
		},
		"test jailed": func(k *platformtest.Kernel) {
			k.SetSysctlUint("security.jail.jailed", 1)
		},
	}

	for scenario, setup := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			k := withKernel(t)

			r, err := NewStopped("/rescue").WithName("norctl").Start()
			require.NoError(t, err)

			setup(k)
			k.AccountingErr = syscall.ENOSYS

			assert.NoError(t, r.Kill())
			assert.Zero(t, k.JailCount())
		})
	}
}

func TestKillAccountingFailure(t *testing.T) {
	k := withKernel(t)

	r, err := NewStopped("/rescue").WithName("rctlfail").Start()
	require.NoError(t, err)

	k.AccountingErr = syscall.EINVAL

	err = r.Kill()

	var rerr *RctlError
	assert.True(t, errors.As(err, &rerr))
	assert.Zero(t, k.JailCount())
}

func TestKillUnnamedSkipsAccounting(t *testing.T) {
	k := withKernel(t)

	r, err := NewStopped("/rescue").Start()
	require.NoError(t, err)

	k.AccountingErr = syscall.EINVAL

	assert.NoError(t, r.Kill())
}

func TestKillRemoveFailed(t *testing.T) {
	k := withKernel(t)

	r, err := NewStopped("/rescue").Start()
	require.NoError(t, err)

	k.RemoveErr = platform.ErrUnexpectedReturn
	assert.ErrorIs(t, r.Kill(), ErrRemoveFailed)
}

func TestSave(t *testing.T) {
	withKernel(t)

	r, err := NewStopped("/rescue").
		WithName("saved").
		WithHostname("saved.example").
		WithIP(netip.MustParseAddr("10.0.0.1")).
		WithIP(netip.MustParseAddr("fe80::1")).
		WithParam("allow.raw_sockets", Int(1)).
		WithLimit(rctl.MaxProcesses, rctl.AmountOf(20), rctl.Deny).
		Start()
	require.NoError(t, err)

	s, err := r.Save()
	require.NoError(t, err)

	assert.Equal(t, "/rescue", s.Path)
	assert.Equal(t, "saved", s.Name)
	assert.Equal(t, "saved.example", s.Hostname)
	assert.Equal(t, []netip.Addr{
		netip.MustParseAddr("10.0.0.1"),
		netip.MustParseAddr("fe80::1"),
	}, s.IPs)
	assert.Equal(t, Int(1), s.Params["allow.raw_sockets"])
	assert.Equal(t, []Limit{{
		Resource: rctl.MaxProcesses,
		Amount:   rctl.AmountOf(20),
		Action:   rctl.Deny,
	}}, s.Limits)

	again, err := r.Save()
	require.NoError(t, err)
	assert.True(t, s.Equal(again))

	// Saving does not affect the running jail.
	_, err = FromJID(r.JID)
	assert.NoError(t, err)
}

func TestSaveWithoutAccounting(t *testing.T) {
	k := withKernel(t)

	r, err := NewStopped("/rescue").WithName("plain").Start()
	require.NoError(t, err)

	k.SetSysctlUint("kern.racct.enable", 0)
	k.AccountingErr = syscall.ENOSYS

	s, err := r.Save()
	require.NoError(t, err)
	assert.Empty(t, s.Limits)
}

func TestSaveDropsInheritedVnet(t *testing.T) {
	scenarios := map[string]struct {
		vnet Int
		kept bool
	}{
		"test inherited vnet dropped": {vnet: 2, kept: false},
		"test new vnet kept":          {vnet: 1, kept: true},
	}

	for scenario, data := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			withKernel(t)

			r, err := NewStopped("/rescue").WithParam("vnet", data.vnet).Start()
			require.NoError(t, err)

			s, err := r.Save()
			require.NoError(t, err)

			v, ok := s.Params["vnet"]
			assert.Equal(t, data.kept, ok)
			if data.kept {
				assert.Equal(t, data.vnet, v)
			}
		})
	}
}

func TestSaveUnnamedLeavesNameEmpty(t *testing.T) {
	withKernel(t)

	r, err := NewStopped("/rescue").Start()
	require.NoError(t, err)

	name, err := r.Name()
	require.NoError(t, err)
	assert.NotEmpty(t, name)

	s, err := r.Save()
	require.NoError(t, err)
	assert.Empty(t, s.Name)
}

func TestStopStartKeepsAddresses(t *testing.T) {
	k := withKernel(t)

	a, err := NewStopped("/rescue").WithIP(netip.MustParseAddr("10.0.0.1")).Start()
	require.NoError(t, err)

	s, err := a.Stop()
	require.NoError(t, err)
	assert.Zero(t, k.JailCount())

	b, err := s.Start()
	require.NoError(t, err)
	assert.NotEqual(t, a.JID, b.JID)

	ips, err := b.IPs()
	require.NoError(t, err)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("10.0.0.1")}, ips)
}

func TestRestart(t *testing.T) {
	k := withKernel(t)

	a, err := NewStopped("/rescue").
		WithName("restarted").
		WithLimit(rctl.Wallclock, rctl.AmountOf(3600), rctl.Deny).
		Start()
	require.NoError(t, err)

	b, err := a.Restart()
	require.NoError(t, err)
	assert.NotEqual(t, a.JID, b.JID)

	name, err := b.Name()
	require.NoError(t, err)
	assert.Equal(t, "restarted", name)

	assert.Equal(t, []string{"jail:restarted:wallclock:deny=3600"}, k.Rules())
	assert.Equal(t, []int{b.JID}, jids(t))
}

func TestAttach(t *testing.T) {
	k := withKernel(t)

	r, err := NewStopped("/rescue").Start()
	require.NoError(t, err)

	require.NoError(t, r.Attach())
	assert.Equal(t, []int{r.JID}, k.Attached)

	err = FromJIDUnchecked(424242).Attach()

	var aerr *AttachError
	require.True(t, errors.As(err, &aerr))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeferCleanup(t *testing.T) {
	k := withKernel(t)

	r, err := NewStopped("/rescue").Start()
	require.NoError(t, err)

	require.NoError(t, r.DeferCleanup())

	// The jail has no processes, so clearing persist removes it.
	_, ok := k.Jail(r.JID)
	assert.False(t, ok)
}

func TestRacctStatistics(t *testing.T) {
	k := withKernel(t)

	r, err := NewStopped("/rescue").WithName("busy").Start()
	require.NoError(t, err)

	k.SetUsage("jail:busy", "cputime=12,memoryuse=1048576,maxproc=3")

	usage, err := r.RacctStatistics()
	require.NoError(t, err)
	assert.Equal(t, map[rctl.Resource]uint64{
		rctl.CPUTime:      12,
		rctl.MemoryUse:    1048576,
		rctl.MaxProcesses: 3,
	}, usage)

	k.SetSysctlUint("kern.racct.enable", 0)
	k.AccountingErr = syscall.ENOSYS

	_, err = r.RacctStatistics()
	assert.ErrorIs(t, err, rctl.ErrDisabled)
}

func TestVimageSupported(t *testing.T) {
	k := withKernel(t)
	assert.True(t, VimageSupported())

	k.SetSysctlUint("kern.features.vimage", 0)
	assert.False(t, VimageSupported())

	k.RemoveSysctl("kern.features.vimage")
	assert.False(t, VimageSupported())
}

// Package platformtest provides an in-memory implementation of the platform
// kernel interfaces for tests. It models the parts of jail_get(2),
// jail_set(2), sysctl(3) and rctl(2) that the jail and rctl packages rely on.
package platformtest

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/nixpig/jailer/internal/platform"
)

const (
	ctlFlagRD = 0x80000000
	ctlFlagWR = 0x40000000
	ctlFlagRW = ctlFlagRD | ctlFlagWR
)

// Sysctl is a node in the fake sysctl tree.
type Sysctl struct {
	Name   string
	Kind   uint32
	Format string
	Value  []byte
}

// Jail is the state of a jail held by the fake kernel.
type Jail struct {
	JID     int
	Name    string
	Persist bool
	Params  map[string][]byte
}

// Kernel is an in-memory platform.Kernel and platform.Accounting.
type Kernel struct {
	mu sync.Mutex

	sysctls []Sysctl
	jails   map[int]*Jail
	lastJID int

	rules []string
	usage map[string]string

	// Attached records every jid passed to JailAttach.
	Attached []int
	// AccountingErr, when set, is returned by every rctl call.
	AccountingErr error
	// RemoveErr, when set, is returned by JailRemove.
	RemoveErr error
}

var (
	_ platform.Kernel     = (*Kernel)(nil)
	_ platform.Accounting = (*Kernel)(nil)
)

// NewKernel returns a Kernel describing a typical amd64 FreeBSD host with
// resource accounting and VIMAGE enabled.
func NewKernel() *Kernel {
	k := &Kernel{
		jails: make(map[int]*Jail),
		usage: make(map[string]string),
	}

	for _, p := range []struct {
		name    string
		ctlType platform.CtlType
		flags   uint32
		format  string
		size    int
	}{
		{"jid", platform.CtlTypeInt, ctlFlagRD, "I", 0},
		{"name", platform.CtlTypeString, ctlFlagRW, "A", 256},
		{"path", platform.CtlTypeString, ctlFlagRD | platform.CtlFlagTun, "A", 1024},
		{"parent", platform.CtlTypeInt, ctlFlagRD, "I", 0},
		{"dying", platform.CtlTypeInt, ctlFlagRD, "B", 0},
		{"persist", platform.CtlTypeInt, ctlFlagRW, "B", 0},
		{"securelevel", platform.CtlTypeInt, ctlFlagRW, "I", 0},
		{"enforce_statfs", platform.CtlTypeInt, ctlFlagRW, "I", 0},
		{"devfs_ruleset", platform.CtlTypeInt, ctlFlagRW, "I", 0},
		{"children.max", platform.CtlTypeInt, ctlFlagRW, "I", 0},
		{"children.cur", platform.CtlTypeInt, ctlFlagRD, "I", 0},
		{"cpuset.id", platform.CtlTypeInt, ctlFlagRD, "I", 0},
		{"host.hostname", platform.CtlTypeString, ctlFlagRW, "A", 256},
		{"host.domainname", platform.CtlTypeString, ctlFlagRW, "A", 256},
		{"host.hostuuid", platform.CtlTypeString, ctlFlagRW, "A", 64},
		{"host.hostid", platform.CtlTypeUlong, ctlFlagRW, "LU", 0},
		{"osrelease", platform.CtlTypeString, ctlFlagRD | platform.CtlFlagTun, "A", 32},
		{"osreldate", platform.CtlTypeInt, ctlFlagRD | platform.CtlFlagTun, "I", 0},
		{"vnet", platform.CtlTypeInt, ctlFlagRD | platform.CtlFlagTun, "E,jailsys", 0},
		{"ip4", platform.CtlTypeInt, ctlFlagRW, "E,jailsys", 0},
		{"ip4.addr", platform.CtlTypeStruct, ctlFlagRW, "S,in_addr", 4},
		{"ip6", platform.CtlTypeInt, ctlFlagRW, "E,jailsys", 0},
		{"ip6.addr", platform.CtlTypeStruct, ctlFlagRW, "S,in6_addr", 16},
		{"sysvmsg", platform.CtlTypeInt, ctlFlagRW, "E,jailsys", 0},
		{"allow.raw_sockets", platform.CtlTypeInt, ctlFlagRW, "B", 0},
		{"allow.mount.", platform.CtlTypeNode, ctlFlagRW, "N", 0},
		{"allow.mount.devfs", platform.CtlTypeInt, ctlFlagRW, "B", 0},
		{"linux.osname", platform.CtlTypeString, ctlFlagRW, "A", 32},
	} {
		var value []byte
		switch p.ctlType {
		case platform.CtlTypeString:
			value = []byte(strconv.Itoa(p.size) + "\x00")
		case platform.CtlTypeStruct:
			value = make([]byte, strconv.IntSize/8)
			putLong(value, p.size)
		default:
			value = make([]byte, 4)
		}

		k.AddSysctl(Sysctl{
			Name:   platform.JailParamPrefix + p.name,
			Kind:   p.flags | uint32(p.ctlType),
			Format: p.format,
			Value:  value,
		})
	}

	k.SetSysctlUint(platform.JailMaxAFIPs, 255)
	k.SetSysctlUint("security.jail.jailed", 0)
	k.SetSysctlUint("kern.racct.enable", 1)
	k.SetSysctlUint("kern.features.vimage", 1)

	return k
}

func putLong(b []byte, n int) {
	if len(b) == 8 {
		binary.LittleEndian.PutUint64(b, uint64(n))
		return
	}

	binary.LittleEndian.PutUint32(b, uint32(n))
}

// AddSysctl adds or replaces a node in the sysctl tree.
func (k *Kernel) AddSysctl(s Sysctl) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i := range k.sysctls {
		if k.sysctls[i].Name == s.Name {
			k.sysctls[i] = s
			return
		}
	}

	k.sysctls = append(k.sysctls, s)
}

// SetSysctlUint sets a 4-byte unsigned integer sysctl.
func (k *Kernel) SetSysctlUint(name string, v uint32) {
	b := make([]byte, 4)
	binary.NativeEndian.PutUint32(b, v)

	k.AddSysctl(Sysctl{
		Name:  name,
		Kind:  ctlFlagRD | uint32(platform.CtlTypeUint),
		Value: b,
	})
}

// RemoveSysctl removes a node from the sysctl tree.
func (k *Kernel) RemoveSysctl(name string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.sysctls = slices.DeleteFunc(k.sysctls, func(s Sysctl) bool {
		return s.Name == name
	})
}

// Jail returns a copy of the state of the jail with the given jid.
func (k *Kernel) Jail(jid int) (Jail, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	j, ok := k.jails[jid]
	if !ok {
		return Jail{}, false
	}

	c := *j
	c.Params = make(map[string][]byte, len(j.Params))
	for name, v := range j.Params {
		c.Params[name] = slices.Clone(v)
	}

	return c, true
}

// JailCount returns the number of live jails.
func (k *Kernel) JailCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.jails)
}

// SetUsage sets the racct output returned for filter.
func (k *Kernel) SetUsage(filter, usage string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.usage[filter] = usage
}

// Rules returns the rules currently installed.
func (k *Kernel) Rules() []string {
	k.mu.Lock()
	defer k.mu.Unlock()

	return slices.Clone(k.rules)
}

func (k *Kernel) oidOf(name string) []int32 {
	for i, s := range k.sysctls {
		if s.Name == name {
			return []int32{int32(i + 1)}
		}
	}

	return nil
}

func (k *Kernel) nodeOf(oid []int32) (Sysctl, bool) {
	if len(oid) != 1 || oid[0] < 1 || int(oid[0]) > len(k.sysctls) {
		return Sysctl{}, false
	}

	return k.sysctls[oid[0]-1], true
}

func (k *Kernel) SysctlLookup(name string) ([]int32, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	oid := k.oidOf(name)
	if oid == nil {
		return nil, syscall.ENOENT
	}

	return oid, nil
}

func (k *Kernel) SysctlFormat(oid []int32) (uint32, string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	s, ok := k.nodeOf(oid)
	if !ok {
		return 0, "", syscall.ENOENT
	}

	return s.Kind, s.Format, nil
}

func (k *Kernel) SysctlValue(oid []int32) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	s, ok := k.nodeOf(oid)
	if !ok {
		return nil, syscall.ENOENT
	}

	return slices.Clone(s.Value), nil
}

func (k *Kernel) SysctlWalk(prefix string) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	var names []string
	for _, s := range k.sysctls {
		if strings.HasPrefix(s.Name, prefix) {
			names = append(names, s.Name)
		}
	}

	return names, nil
}

func (k *Kernel) paramKnown(name string) bool {
	return k.oidOf(platform.JailParamPrefix+name) != nil
}

func jailErr(op string, errno syscall.Errno, format string, args ...any) error {
	return &platform.KernelError{
		Op:      op,
		Errno:   errno,
		Message: fmt.Sprintf(format, args...),
	}
}

// find resolves the jail addressed by a "jid" or "name" pair.
func (k *Kernel) find(op string, params []platform.JailParam) (*Jail, bool, error) {
	for _, p := range params {
		switch p.Name {
		case "jid":
			jid := int(platform.Int32Value(p.Value))
			if jid == 0 {
				continue
			}
			j, ok := k.jails[jid]
			if !ok {
				return nil, true, jailErr(op, syscall.ENOENT, "jail %d not found", jid)
			}
			return j, true, nil
		case "name":
			name := platform.GoString(p.Value)
			if name == "" {
				continue
			}
			if jid, err := strconv.Atoi(name); err == nil {
				if j, ok := k.jails[jid]; ok {
					return j, true, nil
				}
			}
			for _, j := range k.jails {
				if j.Name == name {
					return j, true, nil
				}
			}
			return nil, false, nil
		}
	}

	return nil, false, nil
}

func (k *Kernel) JailSet(params []platform.JailParam, flags platform.JailFlags) (int, error) {
	const op = "jail_set"

	k.mu.Lock()
	defer k.mu.Unlock()

	j, addressed, err := k.find(op, params)
	if err != nil && flags&platform.JailCreate == 0 {
		return -1, err
	}

	switch {
	case j != nil && flags&platform.JailUpdate == 0:
		return -1, jailErr(op, syscall.EEXIST, "jail %q already exists", j.Name)
	case j == nil && flags&platform.JailCreate == 0:
		if addressed {
			return -1, jailErr(op, syscall.ENOENT, "jail not found")
		}
		return -1, jailErr(op, syscall.ENOENT, "no jail specified")
	}

	for _, p := range params {
		switch p.Name {
		case "jid", "persist", "nopersist":
			continue
		}
		if !k.paramKnown(p.Name) {
			return -1, jailErr(op, syscall.ENOENT, "unknown parameter: %s", p.Name)
		}
		if j != nil && flags&platform.JailCreate == 0 {
			if s, _ := k.nodeOf(k.oidOf(platform.JailParamPrefix + p.Name)); platform.KindTunable(s.Kind) {
				return -1, jailErr(op, syscall.EINVAL, "parameter %s cannot be changed after creation", p.Name)
			}
		}
	}

	if j == nil {
		k.lastJID++
		j = &Jail{JID: k.lastJID, Params: make(map[string][]byte)}
		k.jails[j.JID] = j
	}

	for _, p := range params {
		switch p.Name {
		case "jid":
		case "persist":
			j.Persist = len(p.Value) == 0 || platform.Int32Value(p.Value) != 0
		case "nopersist":
			j.Persist = false
		case "name":
			j.Name = platform.GoString(p.Value)
			j.Params[p.Name] = slices.Clone(p.Value)
		default:
			j.Params[p.Name] = slices.Clone(p.Value)
		}
	}

	persist := int32(0)
	if j.Persist {
		persist = 1
	}
	j.Params["persist"] = platform.Int32Param("persist", persist).Value

	if j.Name == "" {
		j.Name = strconv.Itoa(j.JID)
		j.Params["name"] = append([]byte(j.Name), 0)
	}

	// A non-persistent jail with no processes is removed immediately.
	if !j.Persist {
		delete(k.jails, j.JID)
	}

	return j.JID, nil
}

func (k *Kernel) JailGet(params []platform.JailParam, flags platform.JailFlags) (int, error) {
	const op = "jail_get"

	k.mu.Lock()
	defer k.mu.Unlock()

	var j *Jail
	for _, p := range params {
		if p.Name != "lastjid" {
			continue
		}

		last := int(platform.Int32Value(p.Value))
		jids := make([]int, 0, len(k.jails))
		for jid := range k.jails {
			if jid > last {
				jids = append(jids, jid)
			}
		}
		if len(jids) == 0 {
			return -1, jailErr(op, syscall.ENOENT, "no jail after %d", last)
		}
		j = k.jails[slices.Min(jids)]
	}

	if j == nil {
		found, _, err := k.find(op, params)
		if err != nil {
			return -1, err
		}
		if found == nil {
			return -1, jailErr(op, syscall.ENOENT, "jail not found")
		}
		j = found
	}

	for _, p := range params {
		switch p.Name {
		case "lastjid":
			continue
		case "jid":
			if len(p.Value) >= 4 {
				binary.LittleEndian.PutUint32(p.Value, uint32(j.JID))
			}
			continue
		case "name":
			if platform.GoString(p.Value) != "" && platform.GoString(p.Value) == j.Name {
				continue
			}
		}

		if !k.paramKnown(p.Name) {
			return -1, jailErr(op, syscall.ENOENT, "unknown parameter: %s", p.Name)
		}

		v := j.Params[p.Name]
		if len(v) > len(p.Value) {
			return -1, jailErr(op, syscall.EINVAL, "%s: value too long", p.Name)
		}

		clear(p.Value)
		copy(p.Value, v)
	}

	return j.JID, nil
}

func (k *Kernel) JailRemove(jid int) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.RemoveErr != nil {
		return k.RemoveErr
	}

	if _, ok := k.jails[jid]; !ok {
		return syscall.EINVAL
	}

	delete(k.jails, jid)

	return nil
}

func (k *Kernel) JailAttach(jid int) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.jails[jid]; !ok {
		return syscall.EINVAL
	}

	k.Attached = append(k.Attached, jid)

	return nil
}

func (k *Kernel) RctlGetRacct(filter string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.AccountingErr != nil {
		return "", k.AccountingErr
	}

	return k.usage[filter], nil
}

func (k *Kernel) RctlGetRules(filter string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.AccountingErr != nil {
		return "", k.AccountingErr
	}

	var matched []string
	for _, r := range k.rules {
		if matchRule(r, filter) {
			matched = append(matched, r)
		}
	}

	return strings.Join(matched, ","), nil
}

func (k *Kernel) RctlAddRule(rule string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.AccountingErr != nil {
		return k.AccountingErr
	}

	if strings.Count(rule, ":") != 3 || !strings.Contains(rule, "=") {
		return syscall.EINVAL
	}

	k.rules = append(k.rules, rule)

	return nil
}

func (k *Kernel) RctlRemoveRule(filter string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.AccountingErr != nil {
		return k.AccountingErr
	}

	n := len(k.rules)
	k.rules = slices.DeleteFunc(k.rules, func(r string) bool {
		return matchRule(r, filter)
	})

	if len(k.rules) == n {
		return syscall.ESRCH
	}

	return nil
}

func matchRule(rule, filter string) bool {
	return rule == filter || strings.HasPrefix(rule, filter+":")
}

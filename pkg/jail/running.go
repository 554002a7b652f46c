package jail

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"strconv"

	"github.com/nixpig/jailer/internal/platform"
	"github.com/nixpig/jailer/pkg/rctl"
)

// vnetInherit is the value of the vnet parameter for jails that share their
// parent's network stack.
const vnetInherit = Int(2)

// Running is a handle to a jail in the kernel. It holds only the jid, which
// may refer to a jail that has since been removed; accessors then return an
// error matching ErrNotFound.
type Running struct {
	JID int
}

// FromJID returns a handle to the jail jid after checking it exists.
func FromJID(jid int) (Running, error) {
	if _, err := kern.JailGet([]platform.JailParam{
		platform.Int32Param("jid", int32(jid)),
	}, 0); err != nil {
		return Running{}, kernelError("jail_get", err)
	}

	return Running{JID: jid}, nil
}

// FromJIDUnchecked returns a handle to the jail jid without checking it
// exists.
func FromJIDUnchecked(jid int) Running {
	return Running{JID: jid}
}

// FromName returns a handle to the jail with the given name. As with
// jail_getid(3), a non-negative numeric name is taken to be a jid.
func FromName(name string) (Running, error) {
	if jid, err := strconv.Atoi(name); err == nil && jid >= 0 {
		return Running{JID: jid}, nil
	}

	p, err := cstringParam("name", name)
	if err != nil {
		return Running{}, err
	}

	jid, err := kern.JailGet([]platform.JailParam{p}, 0)
	if err != nil {
		return Running{}, kernelError("jail_get", err)
	}

	return Running{JID: jid}, nil
}

// Compare orders handles by jid.
func (r Running) Compare(other Running) int {
	return cmp.Compare(r.JID, other.JID)
}

func (r Running) stringParam(name string) (string, error) {
	v, err := GetParam(r.JID, name)
	if err != nil {
		return "", err
	}

	return UnpackString(v)
}

// Name returns the name of the jail. The kernel names unnamed jails after
// their jid.
func (r Running) Name() (string, error) {
	return r.stringParam("name")
}

// Path returns the root directory of the jail.
func (r Running) Path() (string, error) {
	return r.stringParam("path")
}

// Hostname returns the hostname of the jail.
func (r Running) Hostname() (string, error) {
	return r.stringParam("host.hostname")
}

// IPs returns the IPv4 addresses of the jail followed by its IPv6
// addresses. Address families the kernel was built without are skipped.
func (r Running) IPs() ([]netip.Addr, error) {
	ips := []netip.Addr{}

	v4, err := GetParam(r.JID, "ip4.addr")
	switch {
	case isMissingParam(err):
	case err != nil:
		return nil, err
	default:
		addrs, err := UnpackIPv4(v4)
		if err != nil {
			return nil, err
		}
		ips = append(ips, addrs...)
	}

	v6, err := GetParam(r.JID, "ip6.addr")
	switch {
	case isMissingParam(err):
	case err != nil:
		return nil, err
	default:
		addrs, err := UnpackIPv6(v6)
		if err != nil {
			return nil, err
		}
		ips = append(ips, addrs...)
	}

	return ips, nil
}

// Param returns the value of the named parameter.
func (r Running) Param(name string) (Value, error) {
	return GetParam(r.JID, name)
}

// ParamSet sets the named parameter.
func (r Running) ParamSet(name string, v Value) error {
	return SetParam(r.JID, name, v)
}

// Params returns the parameters of the jail, as GetAllParams.
func (r Running) Params() (Params, error) {
	return GetAllParams(r.JID)
}

// hasName reports whether name was given to the jail rather than defaulted
// by the kernel from the jid.
func (r Running) hasName(name string) bool {
	return name != "" && name != strconv.Itoa(r.JID)
}

// Kill removes the jail, killing every process in it, and removes the
// resource limits of the jail's name. Missing or disabled resource
// accounting is not an error.
func (r Running) Kill() error {
	name, err := r.Name()
	if err != nil {
		return err
	}

	slog.Debug("remove jail", "jid", r.JID, "name", name)

	if err := kern.JailRemove(r.JID); err != nil {
		if errors.Is(err, platform.ErrUnexpectedReturn) {
			return ErrRemoveFailed
		}

		return &OSError{Op: "jail_remove", Err: err}
	}

	if !r.hasName(name) {
		return nil
	}

	err = accounting.Remove(rctl.SubjectFilter(rctl.JailName(name)))

	var stateErr *rctl.InvalidStateError
	if err != nil && !errors.As(err, &stateErr) {
		return &RctlError{Err: err}
	}

	return nil
}

// Save returns the configuration of the running jail, including the limits
// applied to its name when resource accounting is enabled.
func (r Running) Save() (Stopped, error) {
	path, err := r.Path()
	if err != nil {
		return Stopped{}, err
	}

	name, err := r.Name()
	if err != nil {
		return Stopped{}, err
	}

	hostname, err := r.Hostname()
	if err != nil {
		return Stopped{}, err
	}

	params, err := r.Params()
	if err != nil {
		return Stopped{}, err
	}

	ips, err := r.IPs()
	if err != nil {
		return Stopped{}, err
	}

	s := Stopped{
		Path:     path,
		Hostname: hostname,
		Params:   params,
		IPs:      ips,
	}

	if r.hasName(name) {
		s.Name = name
	}

	if s.Name != "" && accounting.State().IsEnabled() {
		rules, err := accounting.Rules(rctl.SubjectFilter(rctl.JailName(name)))
		if err != nil {
			return Stopped{}, &RctlError{Err: err}
		}

		for _, rule := range rules {
			s.Limits = append(s.Limits, Limit{
				Resource: rule.Resource,
				Amount:   rule.Amount,
				Action:   rule.Action,
			})
		}
	}

	// Re-applying the inherited network stack is not the same as leaving
	// vnet unset.
	if v, ok := s.Params["vnet"]; ok && Equal(v, vnetInherit) {
		delete(s.Params, "vnet")
	}

	return s, nil
}

// Stop saves the configuration of the jail and then kills it.
func (r Running) Stop() (Stopped, error) {
	s, err := r.Save()
	if err != nil {
		return Stopped{}, err
	}

	if err := r.Kill(); err != nil {
		return Stopped{}, err
	}

	return s, nil
}

// Restart stops the jail and starts it again from the saved configuration.
// The new jail has a different jid.
func (r Running) Restart() (Running, error) {
	s, err := r.Stop()
	if err != nil {
		return Running{}, err
	}

	return s.Start()
}

// Attach moves the calling process into the jail. It must only be called
// from a process that is about to exec, since every thread of the process is
// moved.
func (r Running) Attach() error {
	slog.Debug("attach to jail", "jid", r.JID)

	if err := kern.JailAttach(r.JID); err != nil {
		return &AttachError{Err: &OSError{Op: "jail_attach", Err: err}}
	}

	return nil
}

// DeferCleanup clears the persist flag, so the kernel removes the jail once
// its last process exits.
func (r Running) DeferCleanup() error {
	slog.Debug("defer jail cleanup", "jid", r.JID)

	if _, err := kern.JailSet([]platform.JailParam{
		platform.Int32Param("jid", int32(r.JID)),
		{Name: "nopersist"},
	}, platform.JailUpdate); err != nil {
		return kernelError("jail_set", err)
	}

	return nil
}

// RacctStatistics returns the resource usage of the jail.
func (r Running) RacctStatistics() (map[rctl.Resource]uint64, error) {
	name, err := r.Name()
	if err != nil {
		return nil, err
	}

	usage, err := accounting.Usage(rctl.JailName(name))
	if err != nil {
		return nil, &RctlError{Err: err}
	}

	return usage, nil
}

func (r Running) String() string {
	return fmt.Sprintf("jail %d", r.JID)
}

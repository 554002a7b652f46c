package jail

import (
	"fmt"
	"log/slog"
	"maps"
	"net/netip"
	"slices"

	"github.com/nixpig/jailer/internal/platform"
	"github.com/nixpig/jailer/pkg/rctl"
)

// Stopped is the configuration of a jail that is not running. The With
// methods return modified copies and leave the receiver untouched.
type Stopped struct {
	Path     string       `yaml:"path,omitempty" json:"path,omitempty"`
	Name     string       `yaml:"name,omitempty" json:"name,omitempty"`
	Hostname string       `yaml:"hostname,omitempty" json:"hostname,omitempty"`
	Params   Params       `yaml:"params,omitempty" json:"params,omitempty"`
	IPs      []netip.Addr `yaml:"ips,omitempty" json:"ips,omitempty"`
	Limits   []Limit      `yaml:"limits,omitempty" json:"limits,omitempty"`
}

// NewStopped returns the configuration of a jail rooted at path.
func NewStopped(path string) Stopped {
	return Stopped{Path: path}
}

func (s Stopped) clone() Stopped {
	s.Params = maps.Clone(s.Params)
	s.IPs = slices.Clone(s.IPs)
	s.Limits = slices.Clone(s.Limits)

	return s
}

// WithPath sets the root directory of the jail.
func (s Stopped) WithPath(path string) Stopped {
	s = s.clone()
	s.Path = path

	return s
}

// WithName sets the name of the jail.
func (s Stopped) WithName(name string) Stopped {
	s = s.clone()
	s.Name = name

	return s
}

// WithHostname sets the hostname of the jail.
func (s Stopped) WithHostname(hostname string) Stopped {
	s = s.clone()
	s.Hostname = hostname

	return s
}

// WithParam sets the named parameter to v.
func (s Stopped) WithParam(name string, v Value) Stopped {
	s = s.clone()
	if s.Params == nil {
		s.Params = make(Params)
	}
	s.Params[name] = v

	return s
}

// WithIP adds an address to the jail.
func (s Stopped) WithIP(ip netip.Addr) Stopped {
	s = s.clone()
	s.IPs = append(s.IPs, ip)

	return s
}

// WithLimit adds a resource limit to be applied when the jail is started.
func (s Stopped) WithLimit(
	resource rctl.Resource,
	amount rctl.Amount,
	action rctl.Action,
) Stopped {
	s = s.clone()
	s.Limits = append(s.Limits, Limit{
		Resource: resource,
		Amount:   amount,
		Action:   action,
	})

	return s
}

// Equal reports whether s and other describe the same jail.
func (s Stopped) Equal(other Stopped) bool {
	return s.Path == other.Path &&
		s.Name == other.Name &&
		s.Hostname == other.Hostname &&
		s.Params.Equal(other.Params) &&
		slices.Equal(s.IPs, other.IPs) &&
		slices.Equal(s.Limits, other.Limits)
}

// mergedParams returns the explicit parameters combined with the addresses,
// name and hostname. Empty address lists are left out, since the kernel
// treats a zero-length list differently from an absent one.
func (s Stopped) mergedParams() Params {
	params := maps.Clone(s.Params)
	if params == nil {
		params = make(Params)
	}

	var ip4, ip6 []netip.Addr
	for _, ip := range s.IPs {
		ip = ip.Unmap()
		if ip.Is4() {
			ip4 = append(ip4, ip)
		} else {
			ip6 = append(ip6, ip)
		}
	}

	if len(ip4) > 0 {
		params["ip4.addr"] = IPv4Addrs(ip4)
	}

	if len(ip6) > 0 {
		params["ip6.addr"] = IPv6Addrs(ip6)
	}

	if s.Name != "" {
		params["name"] = String(s.Name)
	}

	if s.Hostname != "" {
		params["host.hostname"] = String(s.Hostname)
	}

	return params
}

// Start creates the jail and applies its limits. The jail is created with
// the persist flag, so it stays alive with no processes until it is killed
// or DeferCleanup is called.
//
// If applying a limit fails, the jail has already been created: the Running
// handle is returned together with an *RctlError, and limits applied before
// the failure are left in place.
func (s Stopped) Start() (Running, error) {
	if s.Path == "" {
		return Running{}, ErrPathNotGiven
	}

	if s.Name == "" && len(s.Limits) > 0 {
		return Running{}, ErrUnnamedButLimited
	}

	path, err := cstringParam("path", s.Path)
	if err != nil {
		return Running{}, err
	}

	params := s.mergedParams()
	pairs := make([]platform.JailParam, 0, len(params)+2)
	pairs = append(pairs, path)

	for _, name := range params.Names() {
		info, err := Describe(name)
		if err != nil {
			return Running{}, err
		}

		p, err := encodeParam(info, params[name])
		if err != nil {
			return Running{}, err
		}

		pairs = append(pairs, p)
	}

	pairs = append(pairs, platform.JailParam{Name: "persist"})

	slog.Debug("create jail", "path", s.Path, "name", s.Name, "params", len(params))

	jid, err := kern.JailSet(pairs, platform.JailCreate)
	if err != nil {
		return Running{}, kernelError("jail_set", err)
	}

	r := Running{JID: jid}

	for _, l := range s.Limits {
		rule := l.rule(s.Name)
		if err := accounting.Apply(rule); err != nil {
			return r, fmt.Errorf("jail %d: %w", jid, &RctlError{Err: err})
		}
	}

	return r, nil
}

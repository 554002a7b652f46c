package operations

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"path/filepath"
	"slices"

	"github.com/nixpig/jailer/internal/bundle"
	"github.com/nixpig/jailer/internal/operations/validation"
	"github.com/nixpig/jailer/pkg/jail"
)

type StartOpts struct {
	Path     string
	Name     string
	Hostname string
	IPs      []string
	Params   map[string]string
	Limits   []jail.Limit
	Config   string
	Bundle   string
}

// Start creates a jail from the configuration in opts and returns its jid.
// A base configuration is read from Config or Bundle, and the remaining
// options are applied on top of it.
func Start(opts *StartOpts) (int, error) {
	s, err := configure(opts)
	if err != nil {
		return 0, err
	}

	r, err := s.Start()
	if err != nil {
		var rerr *jail.RctlError
		if errors.As(err, &rerr) {
			slog.Warn(
				"jail started without all limits",
				"jid", r.JID,
				"err", rerr,
			)
			return r.JID, fmt.Errorf("apply limits to jail %d: %w", r.JID, err)
		}

		return 0, fmt.Errorf("start jail: %w", err)
	}

	slog.Debug("started jail", "jid", r.JID, "name", s.Name)

	return r.JID, nil
}

func configure(opts *StartOpts) (jail.Stopped, error) {
	var s jail.Stopped

	switch {
	case opts.Config != "" && opts.Bundle != "":
		return s, errors.New("config and bundle are mutually exclusive")
	case opts.Config != "":
		cfg, err := LoadConfig(opts.Config)
		if err != nil {
			return s, err
		}
		s = cfg
	case opts.Bundle != "":
		b, err := bundle.New(opts.Bundle)
		if err != nil {
			return s, fmt.Errorf("load bundle: %w", err)
		}

		cfg, err := b.Jail()
		if err != nil {
			return s, fmt.Errorf("configure jail from bundle: %w", err)
		}
		s = cfg
	}

	if opts.Path != "" {
		path, err := filepath.Abs(opts.Path)
		if err != nil {
			return s, fmt.Errorf("get absolute path to jail root: %w", err)
		}
		s = s.WithPath(path)
	}

	if opts.Name != "" {
		s = s.WithName(opts.Name)
	}

	if s.Name != "" {
		if err := validation.JailName(s.Name); err != nil {
			return s, fmt.Errorf("validate jail name: %w", err)
		}
	}

	if opts.Hostname != "" {
		s = s.WithHostname(opts.Hostname)
	}

	for _, ip := range opts.IPs {
		addr, err := netip.ParseAddr(ip)
		if err != nil {
			return s, fmt.Errorf("parse ip: %w", err)
		}
		s = s.WithIP(addr)
	}

	names := make([]string, 0, len(opts.Params))
	for name := range opts.Params {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		v, err := parseParam(name, opts.Params[name])
		if err != nil {
			return s, err
		}
		s = s.WithParam(name, v)
	}

	for _, l := range opts.Limits {
		s = s.WithLimit(l.Resource, l.Amount, l.Action)
	}

	if s.Path == "" {
		return s, jail.ErrPathNotGiven
	}

	return s, nil
}

// parseParam parses raw according to the type the kernel reports for the
// parameter name.
func parseParam(name, raw string) (jail.Value, error) {
	info, err := jail.Describe(name)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", name, err)
	}

	v, err := jail.ParseValue(info.Type, raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	return v, nil
}

package rctl

import (
	"errors"
	"fmt"
	"log/slog"
	"syscall"

	"github.com/nixpig/jailer/internal/platform"
)

// Client applies rules and queries usage through the kernel's rctl(2)
// interface.
type Client struct {
	kern platform.Accounting
}

// Host returns a Client for the running system.
func Host() *Client {
	return &Client{kern: platform.HostAccounting()}
}

// NewClient returns a Client using the given accounting backend.
func NewClient(kern platform.Accounting) *Client {
	return &Client{kern: kern}
}

// State reports whether resource accounting is usable on the host.
func (c *Client) State() State {
	if jailed, err := platform.SysctlUint(c.kern, "security.jail.jailed"); err == nil && jailed != 0 {
		return StateJailed
	}

	enabled, err := platform.SysctlUint(c.kern, "kern.racct.enable")
	if err != nil {
		return StateNotPresent
	}

	if enabled == 0 {
		return StateDisabled
	}

	return StateEnabled
}

// wrap converts a syscall failure into an *InvalidStateError when it was
// caused by the host state, and wraps it with op otherwise.
func (c *Client) wrap(op string, err error) error {
	if errors.Is(err, syscall.ENOSYS) || errors.Is(err, syscall.EPERM) {
		if state := c.State(); !state.IsEnabled() {
			return &InvalidStateError{State: state}
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// Apply adds rule to the kernel.
func (c *Client) Apply(rule Rule) error {
	slog.Debug("apply rctl rule", "rule", rule.String())

	if err := c.kern.RctlAddRule(rule.String()); err != nil {
		return c.wrap("add rule "+rule.String(), err)
	}

	return nil
}

// Remove removes every rule matching f.
func (c *Client) Remove(f Filter) error {
	slog.Debug("remove rctl rules", "filter", f.String())

	if err := c.kern.RctlRemoveRule(f.String()); err != nil {
		// The kernel reports ESRCH when nothing matched.
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}

		return c.wrap("remove rules "+f.String(), err)
	}

	return nil
}

// Rules returns every rule matching f.
func (c *Client) Rules(f Filter) ([]Rule, error) {
	out, err := c.kern.RctlGetRules(f.String())
	if err != nil {
		return nil, c.wrap("get rules "+f.String(), err)
	}

	rules, err := parseRules(out)
	if err != nil {
		return nil, fmt.Errorf("get rules %s: %w", f, err)
	}

	return rules, nil
}

// Usage returns the current resource usage of s.
func (c *Client) Usage(s Subject) (map[Resource]uint64, error) {
	out, err := c.kern.RctlGetRacct(s.String())
	if err != nil {
		return nil, c.wrap("get usage "+s.String(), err)
	}

	usage, err := parseUsage(out)
	if err != nil {
		return nil, fmt.Errorf("get usage %s: %w", s, err)
	}

	return usage, nil
}

package jail

import (
	"github.com/nixpig/jailer/internal/platform"
	"github.com/nixpig/jailer/pkg/rctl"
)

// Accounting is the resource accounting capability used to apply a jail's
// limits, remove them when it is killed, and report its usage.
type Accounting interface {
	State() rctl.State
	Apply(rule rctl.Rule) error
	Rules(filter rctl.Filter) ([]rctl.Rule, error)
	Remove(filter rctl.Filter) error
	Usage(subject rctl.Subject) (map[rctl.Resource]uint64, error)
}

var accounting Accounting = rctl.Host()

// SetAccounting replaces the resource accounting used by this package.
func SetAccounting(a Accounting) {
	accounting = a
}

// Limit is a resource limit applied to a jail when it is started.
type Limit struct {
	Resource rctl.Resource `yaml:"resource" json:"resource"`
	Amount   rctl.Amount   `yaml:"amount" json:"amount"`
	Action   rctl.Action   `yaml:"action" json:"action"`
}

// rule returns l as a rule for the jail named name.
func (l Limit) rule(name string) rctl.Rule {
	return rctl.Rule{
		Subject:  rctl.JailName(name),
		Resource: l.Resource,
		Action:   l.Action,
		Amount:   l.Amount,
	}
}

// VimageSupported reports whether the kernel was built with VIMAGE, which is
// required for jails with their own network stack.
func VimageSupported() bool {
	enabled, err := platform.SysctlUint(kern, "kern.features.vimage")
	return err == nil && enabled != 0
}

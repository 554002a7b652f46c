package platform

// Accounting is the set of rctl(2) entry points used for resource accounting.
// Rules and filters use the textual form described in rctl(8).
type Accounting interface {
	SysctlReader

	// RctlGetRacct returns the usage of the subject named by filter as a
	// comma-separated list of resource=amount pairs.
	RctlGetRacct(filter string) (string, error)
	// RctlGetRules returns the rules matching filter, comma separated.
	RctlGetRules(filter string) (string, error)
	// RctlAddRule adds rule.
	RctlAddRule(rule string) error
	// RctlRemoveRule removes every rule matching filter.
	RctlRemoveRule(filter string) error
}

const (
	// rctlInitialBufSize is the output buffer size used for the first
	// attempt of rctl_get_racct(2) and rctl_get_rules(2).
	rctlInitialBufSize = 4096
	// rctlMaxBufSize caps the growth of the output buffer on ERANGE.
	rctlMaxBufSize = 16 << 20
)

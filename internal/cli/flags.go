package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/nixpig/jailer/pkg/jail"
	"github.com/nixpig/jailer/pkg/rctl"
	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*limitsValue)(nil)
	_ pflag.Value = (*paramsValue)(nil)
)

// limitsValue collects --limit flags of the form resource:action=amount.
type limitsValue struct {
	limits []jail.Limit
}

func (v *limitsValue) String() string {
	s := make([]string, 0, len(v.limits))
	for _, l := range v.limits {
		s = append(s, fmt.Sprintf("%s:%s=%s", l.Resource, l.Action, l.Amount))
	}

	return "[" + strings.Join(s, ",") + "]"
}

func (v *limitsValue) Set(s string) error {
	l, err := parseLimit(s)
	if err != nil {
		return err
	}

	v.limits = append(v.limits, l)
	return nil
}

func (v *limitsValue) Type() string {
	return "resource:action=amount"
}

func parseLimit(s string) (jail.Limit, error) {
	resource, rest, ok := strings.Cut(s, ":")
	if !ok {
		return jail.Limit{}, fmt.Errorf("limit %q: missing ':'", s)
	}

	action, amount, ok := strings.Cut(rest, "=")
	if !ok {
		return jail.Limit{}, fmt.Errorf("limit %q: missing '='", s)
	}

	r, err := rctl.ParseResource(resource)
	if err != nil {
		return jail.Limit{}, err
	}

	a, err := rctl.ParseAction(action)
	if err != nil {
		return jail.Limit{}, err
	}

	n, err := rctl.ParseAmount(amount)
	if err != nil {
		return jail.Limit{}, err
	}

	return jail.Limit{Resource: r, Action: a, Amount: n}, nil
}

// paramsValue collects --param flags of the form name=value.
type paramsValue struct {
	params map[string]string
}

func (v *paramsValue) String() string {
	s := make([]string, 0, len(v.params))
	for _, name := range slices.Sorted(maps.Keys(v.params)) {
		s = append(s, name+"="+v.params[name])
	}

	return "[" + strings.Join(s, ",") + "]"
}

func (v *paramsValue) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("param %q: expected name=value", s)
	}

	if v.params == nil {
		v.params = make(map[string]string)
	}

	v.params[name] = value
	return nil
}

func (v *paramsValue) Type() string {
	return "name=value"
}

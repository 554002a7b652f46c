package rctl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParse is matched by errors from parsing rules, filters and usage.
var ErrParse = errors.New("parse rctl")

// Subject identifies what a rule applies to, e.g. the jail named "t1".
type Subject struct {
	Type SubjectType
	ID   string
}

// JailName returns the Subject for the jail with the given name.
func JailName(name string) Subject {
	return Subject{Type: SubjectJail, ID: name}
}

func (s Subject) String() string {
	return string(s.Type) + ":" + s.ID
}

// Rule is a complete rctl rule:
//
//	subject:subject-id:resource:action=amount[/per]
type Rule struct {
	Subject  Subject
	Resource Resource
	Action   Action
	Amount   Amount
}

func (r Rule) String() string {
	return fmt.Sprintf(
		"%s:%s:%s=%s",
		r.Subject, r.Resource, r.Action, r.Amount,
	)
}

// ParseRule parses a rule in the form produced by Rule.String and by
// rctl_get_rules(2).
func ParseRule(s string) (Rule, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 4)
	if len(parts) != 4 {
		return Rule{}, fmt.Errorf("%w: rule %q: expected 4 fields", ErrParse, s)
	}

	subjectType, err := ParseSubjectType(parts[0])
	if err != nil {
		return Rule{}, err
	}

	resource, err := ParseResource(parts[2])
	if err != nil {
		return Rule{}, err
	}

	action, amount, ok := strings.Cut(parts[3], "=")
	if !ok {
		return Rule{}, fmt.Errorf("%w: rule %q: missing amount", ErrParse, s)
	}

	a, err := ParseAction(action)
	if err != nil {
		return Rule{}, err
	}

	amt, err := ParseAmount(amount)
	if err != nil {
		return Rule{}, err
	}

	return Rule{
		Subject:  Subject{Type: subjectType, ID: parts[1]},
		Resource: resource,
		Action:   a,
		Amount:   amt,
	}, nil
}

// parseRules parses the comma-separated rule list returned by the kernel.
func parseRules(s string) ([]Rule, error) {
	var rules []Rule
	for _, field := range strings.Split(s, ",") {
		if strings.TrimSpace(field) == "" {
			continue
		}

		r, err := ParseRule(field)
		if err != nil {
			return nil, err
		}

		rules = append(rules, r)
	}

	return rules, nil
}

// Filter selects rules by subject and, optionally, resource.
type Filter struct {
	Subject  Subject
	Resource Resource
}

// SubjectFilter returns a Filter matching every rule for s.
func SubjectFilter(s Subject) Filter {
	return Filter{Subject: s}
}

func (f Filter) String() string {
	s := f.Subject.String()
	if f.Resource != "" {
		s += ":" + string(f.Resource)
	}

	return s
}

// parseUsage parses the resource=amount list returned by
// rctl_get_racct(2). Resources unknown to this package are skipped so that
// newer kernels do not break usage queries.
func parseUsage(s string) (map[Resource]uint64, error) {
	usage := make(map[Resource]uint64)

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		name, value, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("%w: usage field %q", ErrParse, field)
		}

		r, err := ParseResource(name)
		if err != nil {
			continue
		}

		n, err := parseQuantity(value)
		if err != nil {
			return nil, err
		}

		usage[r] = n
	}

	return usage, nil
}

package rctl

import (
	"errors"
	"fmt"
)

// State is the state of resource accounting on the host.
type State int

const (
	// StateNotPresent means RACCT is not compiled into the kernel.
	StateNotPresent State = iota
	// StateDisabled means RACCT is compiled in but kern.racct.enable is 0.
	StateDisabled
	// StateEnabled means rules can be applied and usage queried.
	StateEnabled
	// StateJailed means the caller is inside a jail, where rctl is not
	// available.
	StateJailed
)

func (s State) String() string {
	switch s {
	case StateNotPresent:
		return "not present"
	case StateDisabled:
		return "disabled"
	case StateEnabled:
		return "enabled"
	case StateJailed:
		return "jailed"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// IsEnabled reports whether rules can be applied in state s.
func (s State) IsEnabled() bool {
	return s == StateEnabled
}

var (
	// ErrNotPresent is matched by errors caused by RACCT being compiled out.
	ErrNotPresent = errors.New("resource accounting not present in kernel")
	// ErrDisabled is matched by errors caused by kern.racct.enable=0.
	ErrDisabled = errors.New("resource accounting disabled")
	// ErrJailed is matched by errors caused by calling from inside a jail.
	ErrJailed = errors.New("resource accounting unavailable in a jail")
)

// InvalidStateError is returned when an operation fails because resource
// accounting is not enabled on the host.
type InvalidStateError struct {
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid kernel state: resource accounting is %s", e.State)
}

func (e *InvalidStateError) Is(target error) bool {
	switch target {
	case ErrNotPresent:
		return e.State == StateNotPresent
	case ErrDisabled:
		return e.State == StateDisabled
	case ErrJailed:
		return e.State == StateJailed
	}

	return false
}

package rctl

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/nixpig/jailer/internal/platform"
)

// Resource is a resource kind that can be accounted and limited.
type Resource string

// Resources as listed in rctl(8).
const (
	CPUTime         Resource = "cputime"
	DataSize        Resource = "datasize"
	StackSize       Resource = "stacksize"
	CoreDumpSize    Resource = "coredumpsize"
	MemoryUse       Resource = "memoryuse"
	MemoryLocked    Resource = "memorylocked"
	MaxProcesses    Resource = "maxproc"
	OpenFiles       Resource = "openfiles"
	VMemoryUse      Resource = "vmemoryuse"
	PseudoTerminals Resource = "pseudoterminals"
	SwapUse         Resource = "swapuse"
	Threads         Resource = "nthr"
	MsgqQueued      Resource = "msgqqueued"
	MsgqSize        Resource = "msgqsize"
	NMsgq           Resource = "nmsgq"
	NSem            Resource = "nsem"
	NSemop          Resource = "nsemop"
	NShm            Resource = "nshm"
	ShmSize         Resource = "shmsize"
	Wallclock       Resource = "wallclock"
	PercentCPU      Resource = "pcpu"
	ReadBPS         Resource = "readbps"
	WriteBPS        Resource = "writebps"
	ReadIOPS        Resource = "readiops"
	WriteIOPS       Resource = "writeiops"
)

var resources = []Resource{
	CPUTime, DataSize, StackSize, CoreDumpSize, MemoryUse, MemoryLocked,
	MaxProcesses, OpenFiles, VMemoryUse, PseudoTerminals, SwapUse, Threads,
	MsgqQueued, MsgqSize, NMsgq, NSem, NSemop, NShm, ShmSize, Wallclock,
	PercentCPU, ReadBPS, WriteBPS, ReadIOPS, WriteIOPS,
}

// ParseResource returns the Resource named s.
func ParseResource(s string) (Resource, error) {
	r := Resource(strings.ToLower(s))
	if !slices.Contains(resources, r) {
		return "", fmt.Errorf("%w: unknown resource %q", ErrParse, s)
	}

	return r, nil
}

func (r *Resource) UnmarshalText(b []byte) error {
	parsed, err := ParseResource(string(b))
	if err != nil {
		return err
	}

	*r = parsed
	return nil
}

// Action is what the kernel does when a limit is exceeded.
type Action string

const (
	Deny     Action = "deny"
	Log      Action = "log"
	DevCtl   Action = "devctl"
	Throttle Action = "throttle"
)

// SignalAction returns the Action that delivers sig to the offending
// process.
func SignalAction(sig platform.Signal) Action {
	return Action(strings.ToLower(sig.String()))
}

// Signal returns the signal delivered by a signal action, and false for any
// other action.
func (a Action) Signal() (platform.Signal, bool) {
	if !strings.HasPrefix(string(a), "sig") {
		return 0, false
	}

	sig := platform.ParseSignal(string(a))

	return sig, sig != 0
}

// ParseAction returns the Action named s. Signal actions may be given by
// name ("sigkill", "SIGKILL", "kill") or number ("sig9").
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(s))
	switch a {
	case Deny, Log, DevCtl, Throttle:
		return a, nil
	}

	name := strings.TrimPrefix(string(a), "sig")
	if sig := platform.ParseSignal(name); sig != 0 {
		return SignalAction(sig), nil
	}

	return "", fmt.Errorf("%w: unknown action %q", ErrParse, s)
}

func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}

// SubjectType is the kind of entity a rule or per-limit applies to.
type SubjectType string

const (
	SubjectProcess    SubjectType = "process"
	SubjectUser       SubjectType = "user"
	SubjectLoginClass SubjectType = "loginclass"
	SubjectJail       SubjectType = "jail"
)

// ParseSubjectType returns the SubjectType named s.
func ParseSubjectType(s string) (SubjectType, error) {
	t := SubjectType(strings.ToLower(s))
	switch t {
	case SubjectProcess, SubjectUser, SubjectLoginClass, SubjectJail:
		return t, nil
	}

	return "", fmt.Errorf("%w: unknown subject type %q", ErrParse, s)
}

// Amount is the numeric part of a rule, optionally accounted per subject
// type, e.g. "100m" limits may be written "104857600/process".
type Amount struct {
	Value uint64
	Per   SubjectType
}

// AmountOf returns an Amount of n accounted against the rule's subject.
func AmountOf(n uint64) Amount {
	return Amount{Value: n}
}

func (a Amount) String() string {
	s := strconv.FormatUint(a.Value, 10)
	if a.Per != "" {
		s += "/" + string(a.Per)
	}

	return s
}

// ParseAmount parses an amount in the "value[/per]" form. The value accepts
// the k, m, g, t and p suffixes used by rctl(8).
func ParseAmount(s string) (Amount, error) {
	value, per, hasPer := strings.Cut(s, "/")

	n, err := parseQuantity(value)
	if err != nil {
		return Amount{}, err
	}

	a := Amount{Value: n}
	if hasPer {
		t, err := ParseSubjectType(per)
		if err != nil {
			return Amount{}, err
		}
		a.Per = t
	}

	return a, nil
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(b []byte) error {
	parsed, err := ParseAmount(string(b))
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}

// parseQuantity parses a plain integer amount, or a size with the binary
// k, m, g, t and p suffixes of rctl(8).
func parseQuantity(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrParse)
	}

	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}

	if strings.ContainsRune(s, '.') {
		return 0, fmt.Errorf("%w: amount %q: not an integer", ErrParse, s)
	}

	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q: %w", ErrParse, s, err)
	}

	// RAMInBytes scales through a float64, which wraps negative or
	// saturates when the result does not fit an int64.
	if n < 0 || n == math.MaxInt64 {
		return 0, fmt.Errorf("%w: amount %q: out of range", ErrParse, s)
	}

	return uint64(n), nil
}

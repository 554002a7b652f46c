package jail

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/nixpig/jailer/internal/platform"
)

var (
	// ErrNotFound is matched by errors caused by a jail that does not exist.
	ErrNotFound = errors.New("jail does not exist")
	// ErrRemoveFailed is returned when jail_remove(2) returns a value
	// outside of its contract.
	ErrRemoveFailed = errors.New("jail_remove returned unexpected value")
	// ErrPathNotGiven is returned when starting a jail without a root path.
	ErrPathNotGiven = errors.New("jail path not given")
	// ErrUnpack is returned when a Value is unpacked as the wrong variant.
	ErrUnpack = errors.New("unpack parameter value")
	// ErrSerialize is returned when a Value cannot be encoded for the
	// kernel.
	ErrSerialize = errors.New("serialize parameter value")
	// ErrUnnamedButLimited is returned when starting a jail that has limits
	// but no name, since limits are keyed by jail name.
	ErrUnnamedButLimited = errors.New("jail has limits but no name")
)

// OSError is returned when a syscall fails without a diagnostic from the
// kernel.
type OSError struct {
	Op  string
	Err error
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *OSError) Unwrap() error {
	return e.Err
}

func (e *OSError) Is(target error) bool {
	if target != ErrNotFound {
		return false
	}

	// jail_remove(2) and jail_attach(2) report a missing jid as EINVAL.
	switch e.Op {
	case "jail_remove", "jail_attach":
		return errors.Is(e.Err, syscall.EINVAL)
	}

	return errors.Is(e.Err, syscall.ENOENT)
}

// GetError is returned when jail_get(2) fails with a diagnostic.
type GetError struct {
	Message string
	Errno   syscall.Errno
}

func (e *GetError) Error() string {
	return "jail_get: " + e.Message
}

func (e *GetError) Unwrap() error {
	return e.Errno
}

func (e *GetError) Is(target error) bool {
	return target == ErrNotFound && e.Errno == syscall.ENOENT
}

// SetError is returned when jail_set(2) fails with a diagnostic.
type SetError struct {
	Message string
	Errno   syscall.Errno
}

func (e *SetError) Error() string {
	return "jail_set: " + e.Message
}

func (e *SetError) Unwrap() error {
	return e.Errno
}

func (e *SetError) Is(target error) bool {
	return target == ErrNotFound && e.Errno == syscall.ENOENT
}

// AttachError is returned when jail_attach(2) fails. It matches ErrNotFound
// when the jail no longer exists.
type AttachError struct {
	Err error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("attach to jail: %s", e.Err)
}

func (e *AttachError) Unwrap() error {
	return e.Err
}

// NoSuchParameterError is returned when the kernel has no parameter of the
// given name.
type NoSuchParameterError struct {
	Name string
}

func (e *NoSuchParameterError) Error() string {
	return fmt.Sprintf("no such parameter: %s", e.Name)
}

// IntrospectionKind identifies which metadata query failed.
type IntrospectionKind int

const (
	ParamTypeQuery IntrospectionKind = iota
	StringLengthQuery
	StructLengthQuery
	MaxAFIPsQuery
)

func (k IntrospectionKind) String() string {
	switch k {
	case ParamTypeQuery:
		return "parameter type"
	case StringLengthQuery:
		return "string parameter length"
	case StructLengthQuery:
		return "struct parameter length"
	case MaxAFIPsQuery:
		return "maximum addresses per family"
	}

	return fmt.Sprintf("IntrospectionKind(%d)", int(k))
}

// IntrospectionError is returned when reading a parameter's metadata from the
// sysctl tree fails after the parameter was found.
type IntrospectionError struct {
	Kind IntrospectionKind
	Name string
	Err  error
}

func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("query %s of %s: %s", e.Kind, e.Name, e.Err)
}

func (e *IntrospectionError) Unwrap() error {
	return e.Err
}

// TunableError is returned when setting a parameter that can only be given
// when the jail is created.
type TunableError struct {
	Name string
}

func (e *TunableError) Error() string {
	return fmt.Sprintf("parameter %s can only be set at creation", e.Name)
}

// LengthNaNError is returned when the length reported for a string
// parameter is not a number.
type LengthNaNError struct {
	Value string
}

func (e *LengthNaNError) Error() string {
	return fmt.Sprintf("parameter length is not a number: %q", e.Value)
}

// TypeUnsupportedError is returned when the kernel reports a parameter type
// that has no Value representation.
type TypeUnsupportedError struct {
	Kind platform.CtlType
}

func (e *TypeUnsupportedError) Error() string {
	return fmt.Sprintf("unsupported parameter type: %s", e.Kind)
}

// UnexpectedTypeError is returned when a Value's type does not match the
// type the kernel reports for the parameter.
type UnexpectedTypeError struct {
	Name     string
	Expected Type
	Got      Type
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf(
		"parameter %s: expected %s value, got %s",
		e.Name, e.Expected, e.Got,
	)
}

// RctlError wraps a failure from resource accounting. Errors caused by the
// host state match rctl.ErrNotPresent, rctl.ErrDisabled or rctl.ErrJailed.
type RctlError struct {
	Err error
}

func (e *RctlError) Error() string {
	return fmt.Sprintf("rctl: %s", e.Err)
}

func (e *RctlError) Unwrap() error {
	return e.Err
}

// CStringError is returned when a string cannot be passed to the kernel
// because it contains a NUL byte.
type CStringError struct {
	Value string
}

func (e *CStringError) Error() string {
	return fmt.Sprintf("string contains NUL byte: %q", e.Value)
}

func (e *CStringError) Unwrap() error {
	return platform.ErrNulByte
}

// kernelError converts an error returned by a platform.Kernel call into the
// package's error types.
func kernelError(op string, err error) error {
	var kerr *platform.KernelError
	if !errors.As(err, &kerr) {
		if errors.Is(err, platform.ErrNulByte) {
			return err
		}

		return &OSError{Op: op, Err: err}
	}

	if kerr.Message == "" {
		return &OSError{Op: kerr.Op, Err: kerr.Errno}
	}

	if kerr.Op == "jail_get" {
		return &GetError{Message: kerr.Message, Errno: kerr.Errno}
	}

	return &SetError{Message: kerr.Message, Errno: kerr.Errno}
}

// cstringParam builds a string pair for the kernel.
func cstringParam(name, value string) (platform.JailParam, error) {
	p, err := platform.StringParam(name, value)
	if err != nil {
		if errors.Is(err, platform.ErrNulByte) {
			return platform.JailParam{}, &CStringError{Value: value}
		}
		return platform.JailParam{}, err
	}

	return p, nil
}

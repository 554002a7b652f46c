package platform

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"syscall"
)

// JailFlags control the behaviour of jail_set(2) and jail_get(2).
type JailFlags int

const (
	// JailCreate creates the jail if it does not exist.
	JailCreate JailFlags = 0x01
	// JailUpdate updates the parameters of an existing jail.
	JailUpdate JailFlags = 0x02
	// JailAttach attaches the calling process to the jail on success.
	JailAttach JailFlags = 0x04
	// JailDying allows operating on a jail that is being torn down.
	JailDying JailFlags = 0x08
)

// ErrMsgLen is the size of the buffer the kernel writes diagnostics into.
const ErrMsgLen = 256

// errMsgParam is the name of the diagnostic buffer parameter. It is always
// passed as the last pair of a jail_get(2) or jail_set(2) call.
const errMsgParam = "errmsg"

// ErrUnexpectedReturn is returned when a jail syscall returns a value outside
// of its documented contract.
var ErrUnexpectedReturn = errors.New("unexpected return value from syscall")

// ErrNulByte is returned when a string destined for the kernel contains an
// embedded NUL byte.
var ErrNulByte = errors.New("string contains NUL byte")

// JailParam is a single name/value pair passed to jail_get(2) or jail_set(2).
// A nil Value is passed as a zero-length, presence-only flag such as
// "persist". For jail_get(2) the kernel writes into Value, so it must be
// sized by the caller.
type JailParam struct {
	Name  string
	Value []byte
}

// KernelError is returned when jail_get(2) or jail_set(2) fails. Message holds
// the diagnostic the kernel wrote into the errmsg buffer, which is empty when
// the kernel only reported Errno.
type KernelError struct {
	Op      string
	Errno   syscall.Errno
	Message string
}

func (e *KernelError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %s", e.Op, e.Errno)
}

func (e *KernelError) Unwrap() error {
	return e.Errno
}

// CString returns s as a NUL-terminated byte slice.
func CString(s string) ([]byte, error) {
	if bytes.IndexByte([]byte(s), 0) != -1 {
		return nil, fmt.Errorf("%w: %q", ErrNulByte, s)
	}

	return append([]byte(s), 0), nil
}

// GoString returns the bytes of b up to the first NUL byte as a string.
func GoString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i != -1 {
		b = b[:i]
	}

	return string(b)
}

// StringParam returns a JailParam carrying s as a C string.
func StringParam(name, s string) (JailParam, error) {
	b, err := CString(s)
	if err != nil {
		return JailParam{}, err
	}

	return JailParam{Name: name, Value: b}, nil
}

// Int32Param returns a JailParam carrying v in little-endian byte order, as
// the kernel expects for "jid" and "lastjid".
func Int32Param(name string, v int32) JailParam {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))

	return JailParam{Name: name, Value: b}
}

// Int32Value decodes a little-endian int32 as written by Int32Param.
func Int32Value(b []byte) int32 {
	if len(b) < 4 {
		return 0
	}

	return int32(binary.LittleEndian.Uint32(b))
}

// kernelError builds the error for a failed jail_get(2)/jail_set(2) call from
// the errno and the contents of the errmsg buffer. A zero first byte means
// the kernel did not write a diagnostic.
func kernelError(op string, errno syscall.Errno, errmsg []byte) error {
	if len(errmsg) == 0 || errmsg[0] == 0 {
		return &KernelError{Op: op, Errno: errno}
	}

	return &KernelError{Op: op, Errno: errno, Message: GoString(errmsg)}
}

// Kernel is the set of kernel entry points the jail package is built on.
type Kernel interface {
	// JailGet performs jail_get(2), returning the jid of the matched jail.
	JailGet(params []JailParam, flags JailFlags) (int, error)
	// JailSet performs jail_set(2), returning the jid of the created or
	// updated jail.
	JailSet(params []JailParam, flags JailFlags) (int, error)
	// JailRemove performs jail_remove(2).
	JailRemove(jid int) error
	// JailAttach performs jail_attach(2) for the calling process.
	JailAttach(jid int) error

	// SysctlLookup resolves a sysctl name to its OID.
	SysctlLookup(name string) ([]int32, error)
	// SysctlFormat returns the kind word and format string of an OID.
	SysctlFormat(oid []int32) (uint32, string, error)
	// SysctlValue returns the raw value of an OID.
	SysctlValue(oid []int32) ([]byte, error)
	// SysctlWalk returns the names of every leaf below prefix, in kernel
	// order.
	SysctlWalk(prefix string) ([]string, error)
}

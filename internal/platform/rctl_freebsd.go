//go:build freebsd

package platform

import (
	"errors"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

type hostAccounting struct {
	hostKernel
}

// HostAccounting returns the rctl(2) interface of the running system.
func HostAccounting() Accounting {
	return hostAccounting{}
}

// rctlCall performs one of the rctl(2) syscalls with in as the input string
// and out as the output buffer, which may be nil.
func rctlCall(trap uintptr, in string, out []byte) error {
	inbuf, err := CString(in)
	if err != nil {
		return err
	}

	var outp unsafe.Pointer
	if len(out) > 0 {
		outp = unsafe.Pointer(&out[0])
	}

	_, _, errno := unix.Syscall6(
		trap,
		uintptr(unsafe.Pointer(&inbuf[0])),
		uintptr(len(inbuf)),
		uintptr(outp),
		uintptr(len(out)),
		0,
		0,
	)

	runtime.KeepAlive(inbuf)
	runtime.KeepAlive(out)

	if errno != 0 {
		return syscall.Errno(errno)
	}

	return nil
}

// rctlQuery performs an rctl(2) query, growing the output buffer while the
// kernel reports ERANGE.
func rctlQuery(trap uintptr, in string) (string, error) {
	for size := rctlInitialBufSize; ; size *= 2 {
		out := make([]byte, size)

		err := rctlCall(trap, in, out)
		if errors.Is(err, unix.ERANGE) && size < rctlMaxBufSize {
			continue
		}
		if err != nil {
			return "", err
		}

		return GoString(out), nil
	}
}

func (hostAccounting) RctlGetRacct(filter string) (string, error) {
	return rctlQuery(unix.SYS_RCTL_GET_RACCT, filter)
}

func (hostAccounting) RctlGetRules(filter string) (string, error) {
	return rctlQuery(unix.SYS_RCTL_GET_RULES, filter)
}

func (hostAccounting) RctlAddRule(rule string) error {
	return rctlCall(unix.SYS_RCTL_ADD_RULE, rule, nil)
}

func (hostAccounting) RctlRemoveRule(filter string) error {
	return rctlCall(unix.SYS_RCTL_REMOVE_RULE, filter, nil)
}

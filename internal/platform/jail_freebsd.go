//go:build freebsd

package platform

import (
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

type hostKernel struct{}

// Host returns the Kernel of the running system.
func Host() Kernel {
	return hostKernel{}
}

// buildIovec prepares the iovec array for a jail_get(2)/jail_set(2) call. It
// returns the iovecs and the buffers that must be retained until the syscall
// returns, since the kernel reads and writes through the raw pointers.
func buildIovec(params []JailParam) ([]unix.Iovec, [][]byte, error) {
	iov := make([]unix.Iovec, 0, 2*len(params))
	keepAlive := make([][]byte, 0, 2*len(params))

	for _, p := range params {
		name, err := CString(p.Name)
		if err != nil {
			return nil, nil, err
		}

		keepAlive = append(keepAlive, name, p.Value)
		iov = append(iov, iovecOf(name), iovecOf(p.Value))
	}

	return iov, keepAlive, nil
}

// iovecOf returns an iovec covering b. An empty b gives a NULL base and zero
// length, which the kernel treats as a presence-only flag.
func iovecOf(b []byte) unix.Iovec {
	var v unix.Iovec
	if len(b) > 0 {
		v.Base = &b[0]
		v.SetLen(len(b))
	}

	return v
}

// jailCall performs jail_get(2) or jail_set(2) with params followed by a
// freshly zeroed errmsg buffer.
func jailCall(
	trap uintptr,
	op string,
	params []JailParam,
	flags JailFlags,
) (int, error) {
	errmsg := make([]byte, ErrMsgLen)

	all := make([]JailParam, 0, len(params)+1)
	all = append(all, params...)
	all = append(all, JailParam{Name: errMsgParam, Value: errmsg})

	iov, keepAlive, err := buildIovec(all)
	if err != nil {
		return -1, err
	}

	jid, _, errno := unix.Syscall(
		trap,
		uintptr(unsafe.Pointer(&iov[0])),
		uintptr(len(iov)),
		uintptr(flags),
	)

	runtime.KeepAlive(iov)
	runtime.KeepAlive(keepAlive)

	if errno != 0 {
		return -1, kernelError(op, syscall.Errno(errno), errmsg)
	}

	return int(jid), nil
}

func (hostKernel) JailGet(params []JailParam, flags JailFlags) (int, error) {
	return jailCall(unix.SYS_JAIL_GET, "jail_get", params, flags)
}

func (hostKernel) JailSet(params []JailParam, flags JailFlags) (int, error) {
	return jailCall(unix.SYS_JAIL_SET, "jail_set", params, flags)
}

func (hostKernel) JailRemove(jid int) error {
	ret, _, errno := unix.Syscall(unix.SYS_JAIL_REMOVE, uintptr(jid), 0, 0)
	if errno != 0 {
		return syscall.Errno(errno)
	}

	if ret != 0 {
		return ErrUnexpectedReturn
	}

	return nil
}

func (hostKernel) JailAttach(jid int) error {
	ret, _, errno := unix.Syscall(unix.SYS_JAIL_ATTACH, uintptr(jid), 0, 0)
	if errno != 0 {
		return syscall.Errno(errno)
	}

	if ret != 0 {
		return ErrUnexpectedReturn
	}

	return nil
}

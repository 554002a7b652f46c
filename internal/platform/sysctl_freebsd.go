//go:build freebsd

package platform

import (
	"encoding/binary"
	"errors"
	"runtime"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	// ctlMaxName is the maximum number of components in an OID.
	ctlMaxName = 24
	// ctlBufSize is large enough for any sysctl name or format string.
	ctlBufSize = 1024
)

// Internal sysctl MIBs, see sys/kern/kern_sysctl.c.
var (
	mibName    = []int32{0, 1}
	mibNext    = []int32{0, 2}
	mibNameOID = []int32{0, 3}
	mibOIDFmt  = []int32{0, 4}
)

// sysctl performs __sysctl(2). On return oldlen holds the number of bytes
// the kernel wrote into old, or the size needed when old is nil.
func sysctl(mib []int32, old []byte, oldlen *uintptr, new []byte) error {
	var oldp, newp unsafe.Pointer
	if len(old) > 0 {
		oldp = unsafe.Pointer(&old[0])
	}
	if len(new) > 0 {
		newp = unsafe.Pointer(&new[0])
	}

	_, _, errno := unix.Syscall6(
		unix.SYS___SYSCTL,
		uintptr(unsafe.Pointer(&mib[0])),
		uintptr(len(mib)),
		uintptr(oldp),
		uintptr(unsafe.Pointer(oldlen)),
		uintptr(newp),
		uintptr(len(new)),
	)

	runtime.KeepAlive(mib)
	runtime.KeepAlive(old)
	runtime.KeepAlive(new)

	if errno != 0 {
		return syscall.Errno(errno)
	}

	return nil
}

func withOID(prefix, oid []int32) []int32 {
	mib := make([]int32, 0, len(prefix)+len(oid))
	mib = append(mib, prefix...)

	return append(mib, oid...)
}

func (hostKernel) SysctlLookup(name string) ([]int32, error) {
	buf := make([]byte, ctlMaxName*4)
	n := uintptr(len(buf))

	if err := sysctl(mibNameOID, buf, &n, []byte(name)); err != nil {
		return nil, err
	}

	oid := make([]int32, n/4)
	for i := range oid {
		oid[i] = int32(binary.NativeEndian.Uint32(buf[i*4:]))
	}

	return oid, nil
}

func (hostKernel) SysctlFormat(oid []int32) (uint32, string, error) {
	buf := make([]byte, ctlBufSize)
	n := uintptr(len(buf))

	if err := sysctl(withOID(mibOIDFmt, oid), buf, &n, nil); err != nil {
		return 0, "", err
	}

	if n < 4 {
		return 0, "", ErrUnexpectedReturn
	}

	return binary.NativeEndian.Uint32(buf), GoString(buf[4:n]), nil
}

func (hostKernel) SysctlValue(oid []int32) ([]byte, error) {
	for {
		var n uintptr
		if err := sysctl(oid, nil, &n, nil); err != nil {
			return nil, err
		}

		// Values can grow between the two calls; leave some room.
		buf := make([]byte, n+n/2+16)
		n = uintptr(len(buf))

		err := sysctl(oid, buf, &n, nil)
		if errors.Is(err, unix.ENOMEM) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return buf[:n], nil
	}
}

func (k hostKernel) SysctlWalk(prefix string) ([]string, error) {
	root := strings.TrimSuffix(prefix, ".")

	oid, err := k.SysctlLookup(root)
	if err != nil {
		return nil, err
	}

	var names []string
	for {
		next, err := sysctlNext(oid)
		if errors.Is(err, unix.ENOENT) {
			break
		}
		if err != nil {
			return nil, err
		}

		name, err := sysctlName(next)
		if err != nil {
			return nil, err
		}

		if !sysctlHasPrefix(name, root) {
			break
		}

		names = append(names, name)
		oid = next
	}

	return names, nil
}

// sysctlNext returns the OID of the leaf following oid.
func sysctlNext(oid []int32) ([]int32, error) {
	buf := make([]byte, ctlMaxName*4)
	n := uintptr(len(buf))

	if err := sysctl(withOID(mibNext, oid), buf, &n, nil); err != nil {
		return nil, err
	}

	next := make([]int32, n/4)
	for i := range next {
		next[i] = int32(binary.NativeEndian.Uint32(buf[i*4:]))
	}

	return next, nil
}

// sysctlName returns the dotted name of oid.
func sysctlName(oid []int32) (string, error) {
	buf := make([]byte, ctlBufSize)
	n := uintptr(len(buf))

	if err := sysctl(withOID(mibName, oid), buf, &n, nil); err != nil {
		return "", err
	}

	return GoString(buf[:n]), nil
}

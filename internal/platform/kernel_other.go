//go:build !freebsd

package platform

import "syscall"

// unsupportedKernel is returned by Host on platforms without jails. Every
// call fails with ENOSYS.
type unsupportedKernel struct{}

// Host returns the Kernel of the running system.
func Host() Kernel {
	return unsupportedKernel{}
}

func (unsupportedKernel) JailGet([]JailParam, JailFlags) (int, error) {
	return -1, &KernelError{Op: "jail_get", Errno: syscall.ENOSYS}
}

func (unsupportedKernel) JailSet([]JailParam, JailFlags) (int, error) {
	return -1, &KernelError{Op: "jail_set", Errno: syscall.ENOSYS}
}

func (unsupportedKernel) JailRemove(int) error {
	return syscall.ENOSYS
}

func (unsupportedKernel) JailAttach(int) error {
	return syscall.ENOSYS
}

func (unsupportedKernel) SysctlLookup(string) ([]int32, error) {
	return nil, syscall.ENOSYS
}

func (unsupportedKernel) SysctlFormat([]int32) (uint32, string, error) {
	return 0, "", syscall.ENOSYS
}

func (unsupportedKernel) SysctlValue([]int32) ([]byte, error) {
	return nil, syscall.ENOSYS
}

func (unsupportedKernel) SysctlWalk(string) ([]string, error) {
	return nil, syscall.ENOSYS
}

type unsupportedAccounting struct {
	unsupportedKernel
}

// HostAccounting returns the rctl(2) interface of the running system.
func HostAccounting() Accounting {
	return unsupportedAccounting{}
}

func (unsupportedAccounting) RctlGetRacct(string) (string, error) {
	return "", syscall.ENOSYS
}

func (unsupportedAccounting) RctlGetRules(string) (string, error) {
	return "", syscall.ENOSYS
}

func (unsupportedAccounting) RctlAddRule(string) error {
	return syscall.ENOSYS
}

func (unsupportedAccounting) RctlRemoveRule(string) error {
	return syscall.ENOSYS
}

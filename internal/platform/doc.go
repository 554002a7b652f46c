// Package platform provides the low-level operations needed to drive FreeBSD
// jails: the jail_get(2)/jail_set(2) parameter protocol, jail removal and
// attachment, the sysctl metadata tree that describes jail parameters, and the
// rctl(8) syscalls used for resource accounting.
// Since jailer is FreeBSD-specific, `unix` functions are used preferentially
// over their `os` equivalent for consistency. Other platforms get stubs that
// report ENOSYS so the packages built on top still compile and can be tested
// against an in-memory kernel.
package platform

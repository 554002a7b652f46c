// Package jail manages FreeBSD jails through jail_set(2), jail_get(2),
// jail_remove(2) and jail_attach(2).
//
// A jail is described by a Stopped value, which holds a root path, an
// optional name and hostname, IP addresses, resource limits and arbitrary
// typed parameters. Starting a Stopped creates the jail in the kernel and
// returns a Running handle, which is nothing more than the jail's jid: every
// accessor queries the kernel afresh, and reports ErrNotFound once the jail
// has gone away.
//
// Parameter types are never assumed. Before any value is encoded or decoded
// its kernel type and size are read from the security.jail.param sysctl tree.
//
// No operation that issues more than one syscall is atomic. Starting a jail
// with limits creates the jail and then applies each limit; a failure part
// way through leaves the jail running with only some limits applied, and the
// Running handle is returned alongside the error. Likewise a Save that races
// a Kill may observe a partially removed jail. Callers that share jails
// between goroutines or processes must provide their own synchronisation.
package jail

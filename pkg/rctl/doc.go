// Package rctl is a client for FreeBSD resource accounting and limits
// (RACCT/RCTL). It formats and parses rctl(8) rules, applies and removes
// them, and reads per-subject usage.
//
// Resource accounting may be compiled out of the kernel, present but
// disabled with kern.racct.enable=0, or unavailable because the caller runs
// inside a jail. Each of these is reported as an *InvalidStateError that
// matches ErrNotPresent, ErrDisabled or ErrJailed respectively.
package rctl

package platform

import (
	"strconv"
	"strings"
)

// Signal is a FreeBSD signal number. FreeBSD numbering differs from Linux
// for several signals, so the table is kept here rather than taken from the
// build platform's unix package.
type Signal int

// FreeBSD signals, see sys/signal.h.
const (
	SIGHUP    Signal = 1
	SIGINT    Signal = 2
	SIGQUIT   Signal = 3
	SIGILL    Signal = 4
	SIGTRAP   Signal = 5
	SIGABRT   Signal = 6
	SIGEMT    Signal = 7
	SIGFPE    Signal = 8
	SIGKILL   Signal = 9
	SIGBUS    Signal = 10
	SIGSEGV   Signal = 11
	SIGSYS    Signal = 12
	SIGPIPE   Signal = 13
	SIGALRM   Signal = 14
	SIGTERM   Signal = 15
	SIGURG    Signal = 16
	SIGSTOP   Signal = 17
	SIGTSTP   Signal = 18
	SIGCONT   Signal = 19
	SIGCHLD   Signal = 20
	SIGTTIN   Signal = 21
	SIGTTOU   Signal = 22
	SIGIO     Signal = 23
	SIGXCPU   Signal = 24
	SIGXFSZ   Signal = 25
	SIGVTALRM Signal = 26
	SIGPROF   Signal = 27
	SIGWINCH  Signal = 28
	SIGINFO   Signal = 29
	SIGUSR1   Signal = 30
	SIGUSR2   Signal = 31
	SIGTHR    Signal = 32
	SIGLIBRT  Signal = 33
)

var signalNames = map[Signal]string{
	SIGHUP:    "SIGHUP",
	SIGINT:    "SIGINT",
	SIGQUIT:   "SIGQUIT",
	SIGILL:    "SIGILL",
	SIGTRAP:   "SIGTRAP",
	SIGABRT:   "SIGABRT",
	SIGEMT:    "SIGEMT",
	SIGFPE:    "SIGFPE",
	SIGKILL:   "SIGKILL",
	SIGBUS:    "SIGBUS",
	SIGSEGV:   "SIGSEGV",
	SIGSYS:    "SIGSYS",
	SIGPIPE:   "SIGPIPE",
	SIGALRM:   "SIGALRM",
	SIGTERM:   "SIGTERM",
	SIGURG:    "SIGURG",
	SIGSTOP:   "SIGSTOP",
	SIGTSTP:   "SIGTSTP",
	SIGCONT:   "SIGCONT",
	SIGCHLD:   "SIGCHLD",
	SIGTTIN:   "SIGTTIN",
	SIGTTOU:   "SIGTTOU",
	SIGIO:     "SIGIO",
	SIGXCPU:   "SIGXCPU",
	SIGXFSZ:   "SIGXFSZ",
	SIGVTALRM: "SIGVTALRM",
	SIGPROF:   "SIGPROF",
	SIGWINCH:  "SIGWINCH",
	SIGINFO:   "SIGINFO",
	SIGUSR1:   "SIGUSR1",
	SIGUSR2:   "SIGUSR2",
	SIGTHR:    "SIGTHR",
	SIGLIBRT:  "SIGLIBRT",
}

func (s Signal) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}

	return "SIG" + strconv.Itoa(int(s))
}

// ParseSignal parses the given sig and returns the corresponding Signal. The
// full name, the name without the SIG prefix, and the number are accepted,
// case-insensitively. If the signal is not recognised then Signal(0) is
// returned.
func ParseSignal(sig string) Signal {
	if n, err := strconv.Atoi(sig); err == nil {
		if _, ok := signalNames[Signal(n)]; ok {
			return Signal(n)
		}

		return Signal(0)
	}

	name := strings.ToUpper(sig)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}

	switch name {
	case "SIGIOT":
		return SIGABRT
	case "SIGPOLL":
		return SIGIO
	case "SIGLWP":
		return SIGTHR
	}

	for s, n := range signalNames {
		if n == name {
			return s
		}
	}

	return Signal(0)
}

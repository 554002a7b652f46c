package jail

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strconv"

	"golang.org/x/sys/unix"
)

// Command returns a command that runs argv inside the jail r.
//
// jail_attach(2) moves the whole calling process, so it cannot be called
// from a multi-threaded Go program that intends to keep running. Instead the
// current executable is run again as
//
//	<self> <reexecArgs...> <jid> -- <argv...>
//
// and the command registered under reexecArgs is expected to call ExecIn
// with the jid and argv it was given.
func Command(r Running, reexecArgs []string, argv ...string) (*exec.Cmd, error) {
	if len(argv) == 0 {
		return nil, errors.New("no command given")
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("find current executable: %w", err)
	}

	args := slices.Clone(reexecArgs)
	args = append(args, strconv.Itoa(r.JID), "--")
	args = append(args, argv...)

	return exec.Command(self, args...), nil
}

// ExecIn attaches the calling process to the jail r and replaces it with
// argv, searching PATH inside the jail. It only returns on failure.
func ExecIn(r Running, argv []string, env []string) error {
	if len(argv) == 0 {
		return errors.New("no command given")
	}

	// Keep the remainder of the process on a single thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := r.Attach(); err != nil {
		return err
	}

	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("find %s in jail: %w", argv[0], err)
	}

	if err := unix.Exec(bin, argv, env); err != nil {
		return fmt.Errorf("execve (argv0=%s, argv=%s): %w", bin, argv, err)
	}

	return nil
}

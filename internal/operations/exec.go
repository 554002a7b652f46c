package operations

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/nixpig/jailer/pkg/jail"
)

// ReexecCmd is the hidden command the current binary is run with to enter a
// jail.
const ReexecCmd = "reexec"

type ExecOpts struct {
	ID     string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Exec runs Args inside a jail, waits for it to exit and returns its exit
// code.
func Exec(opts *ExecOpts) (int, error) {
	r, err := lookup(opts.ID)
	if err != nil {
		return 0, err
	}

	cmd, err := jail.Command(r, []string{ReexecCmd}, opts.Args...)
	if err != nil {
		return 0, fmt.Errorf("build command: %w", err)
	}

	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	slog.Debug("exec in jail", "jid", r.JID, "args", opts.Args)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}

		return 0, fmt.Errorf("run command in jail: %w", err)
	}

	return 0, nil
}

type ReexecOpts struct {
	JID  int
	Args []string
}

// Reexec attaches the current process to a jail and replaces it with Args.
// It only returns on failure.
func Reexec(opts *ReexecOpts) error {
	r := jail.FromJIDUnchecked(opts.JID)

	if err := jail.ExecIn(r, opts.Args, os.Environ()); err != nil {
		return fmt.Errorf("exec in jail: %w", err)
	}

	return nil
}

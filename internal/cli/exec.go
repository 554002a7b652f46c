package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nixpig/jailer/internal/operations"
	"github.com/spf13/cobra"
)

var (
	execInJail   = operations.Exec
	reexecInJail = operations.Reexec
)

// ExitCodeError is returned when a command run inside a jail exits with a
// non-zero code.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// splitCommand splits args of the form JAIL -- COMMAND [ARGS...] into the
// jail and the argv to run in it.
func splitCommand(cmd *cobra.Command, args []string) (string, []string, error) {
	if cmd.ArgsLenAtDash() != 1 || len(args) < 2 {
		return "", nil, errors.New("expected JAIL -- COMMAND [ARGS...]")
	}

	return args[0], args[1:], nil
}

func execCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exec [flags] JAIL -- COMMAND [ARGS...]",
		Short:   "Run a command inside a jail",
		Example: "  jailer exec web -- /bin/sh -c 'hostname'",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, argv, err := splitCommand(cmd, args)
			if err != nil {
				return err
			}

			code, err := execInJail(&operations.ExecOpts{
				ID:     id,
				Args:   argv,
				Stdin:  cmd.InOrStdin(),
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("exec: %w", err)
			}

			if code != 0 {
				return &ExitCodeError{Code: code}
			}

			return nil
		},
	}

	return cmd
}

func reexecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     operations.ReexecCmd + " [flags] JID -- COMMAND [ARGS...]",
		Short:   "Attach to a jail and exec a command\n\n \033[31m ⚠ FOR INTERNAL USE ONLY - DO NOT RUN DIRECTLY ⚠ \033[0m",
		Example: "\n -- FOR INTERNAL USE ONLY --",
		Args:    cobra.MinimumNArgs(2),
		Hidden:  true, // this command is only used internally
		RunE: func(cmd *cobra.Command, args []string) error {
			id, argv, err := splitCommand(cmd, args)
			if err != nil {
				return err
			}

			jid, err := strconv.Atoi(id)
			if err != nil {
				return fmt.Errorf("parse jid: %w", err)
			}

			if err := reexecInJail(&operations.ReexecOpts{
				JID:  jid,
				Args: argv,
			}); err != nil {
				return fmt.Errorf("reexec: %w", err)
			}

			return nil
		},
	}

	return cmd
}

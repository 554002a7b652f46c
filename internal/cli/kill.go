package cli

import (
	"fmt"

	"github.com/nixpig/jailer/internal/operations"
	"github.com/spf13/cobra"
)

func killCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kill [flags] JAIL",
		Short:   "Remove a jail and its resource limits",
		Example: "  jailer kill web",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return operations.Kill(&operations.KillOpts{
				ID: args[0],
			})
		},
	}

	return cmd
}

func restartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "restart [flags] JAIL",
		Short:   "Kill a jail and start it again with the same configuration",
		Example: "  jailer restart web",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jid, err := operations.Restart(&operations.RestartOpts{
				ID: args[0],
			})
			if err != nil {
				return fmt.Errorf("restart: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), jid)

			return nil
		},
	}

	return cmd
}

func deferCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "defer-cleanup [flags] JAIL",
		Short:   "Remove a jail once its last process exits",
		Example: "  jailer defer-cleanup web",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return operations.DeferCleanup(&operations.DeferCleanupOpts{
				ID: args[0],
			})
		},
	}

	return cmd
}

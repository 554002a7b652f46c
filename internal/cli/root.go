package cli

import (
	"fmt"
	"log/slog"

	"github.com/nixpig/jailer/internal/logging"
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "jailer",
		Short:        "Manage FreeBSD jails.",
		Long:         "Start, inspect, save and stop FreeBSD jails and their resource limits.",
		Example:      "",
		Version:      "0.0.1",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logfile, _ := cmd.Flags().GetString("log")
			debug, _ := cmd.Flags().GetBool("debug")

			logger, err := logging.NewLogger(logfile, debug)
			if err != nil {
				return fmt.Errorf("initialise logging: %w", err)
			}

			slog.SetDefault(logger)

			if logfile != "" {
				cmd.Root().SetErr(logging.NewErrorWriter(logger))
			}

			return nil
		},
	}

	cmd.AddCommand(
		listCmd(),
		startCmd(),
		stopCmd(),
		saveCmd(),
		killCmd(),
		restartCmd(),
		paramCmd(),
		usageCmd(),
		execCmd(),
		deferCleanupCmd(),
		reexecCmd(),
	)

	cmd.PersistentFlags().StringP(
		"log",
		"l",
		"",
		"Destination to write logs (default is stderr)",
	)

	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	cmd.CompletionOptions.HiddenDefaultCmd = true

	return cmd
}

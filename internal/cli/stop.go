package cli

import (
	"fmt"

	"github.com/nixpig/jailer/internal/operations"
	"github.com/spf13/cobra"
)

func stopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stop [flags] JAIL",
		Short:   "Save the configuration of a jail and kill it",
		Example: "  jailer stop web --output web.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			config, err := operations.Stop(&operations.StopOpts{
				ID:     args[0],
				Output: output,
			})
			if err != nil {
				return fmt.Errorf("stop: %w", err)
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), config)
			}

			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "File to write the configuration to")

	return cmd
}

func saveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "save [flags] JAIL",
		Short:   "Save the configuration of a running jail",
		Example: "  jailer save web --output web.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			config, err := operations.Save(&operations.SaveOpts{
				ID:     args[0],
				Output: output,
			})
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), config)
			}

			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "File to write the configuration to")

	return cmd
}

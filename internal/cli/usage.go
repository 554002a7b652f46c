package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/nixpig/jailer/internal/operations"
	"github.com/spf13/cobra"
)

func usageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "usage [flags] JAIL",
		Short:   "Print the resource usage of a jail",
		Example: "  jailer usage web",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := operations.Usage(&operations.UsageOpts{
				ID: args[0],
			})
			if err != nil {
				return err
			}

			for _, r := range slices.Sorted(maps.Keys(usage)) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%d\n", r, usage[r])
			}

			return nil
		},
	}

	return cmd
}

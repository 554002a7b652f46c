package cli

import (
	"fmt"

	"github.com/nixpig/jailer/internal/operations"
	"github.com/spf13/cobra"
)

func paramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "param",
		Short: "Get and set jail parameters",
	}

	cmd.AddCommand(
		paramGetCmd(),
		paramSetCmd(),
		paramListCmd(),
	)

	return cmd
}

func paramGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get [flags] JAIL PARAM",
		Short:   "Print the value of a jail parameter",
		Example: "  jailer param get web host.hostname",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := operations.ParamGet(&operations.ParamGetOpts{
				ID:   args[0],
				Name: args[1],
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), v)

			return nil
		},
	}

	return cmd
}

func paramSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set [flags] JAIL PARAM VALUE",
		Short:   "Set a jail parameter",
		Example: "  jailer param set web allow.raw_sockets 1",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return operations.ParamSet(&operations.ParamSetOpts{
				ID:    args[0],
				Name:  args[1],
				Value: args[2],
			})
		},
	}

	return cmd
}

func paramListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [flags] JAIL",
		Short:   "Print every parameter of a jail",
		Example: "  jailer param list web",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := operations.ParamList(&operations.ParamListOpts{
				ID: args[0],
			})
			if err != nil {
				return err
			}

			for _, name := range params.Names() {
				fmt.Fprintf(
					cmd.OutOrStdout(),
					"%s=%s\n",
					name,
					params[name],
				)
			}

			return nil
		},
	}

	return cmd
}

package cli

import (
	"fmt"

	"github.com/nixpig/jailer/internal/operations"
	"github.com/spf13/cobra"
)

func startCmd() *cobra.Command {
	var (
		limits limitsValue
		params paramsValue
	)

	cmd := &cobra.Command{
		Use:   "start [flags]",
		Short: "Start a jail",
		Example: "  jailer start --path /jails/web --name web --ip 10.0.0.2\n" +
			"  jailer start --config web.yaml\n" +
			"  jailer start --bundle ./bundle --limit wallclock:sigkill=3600",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			name, _ := cmd.Flags().GetString("name")
			hostname, _ := cmd.Flags().GetString("hostname")
			ips, _ := cmd.Flags().GetStringSlice("ip")
			config, _ := cmd.Flags().GetString("config")
			bundle, _ := cmd.Flags().GetString("bundle")

			jid, err := operations.Start(&operations.StartOpts{
				Path:     path,
				Name:     name,
				Hostname: hostname,
				IPs:      ips,
				Params:   params.params,
				Limits:   limits.limits,
				Config:   config,
				Bundle:   bundle,
			})
			if jid != 0 {
				fmt.Fprintln(cmd.OutOrStdout(), jid)
			}
			if err != nil {
				return fmt.Errorf("start: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringP("path", "p", "", "Root directory of the jail")
	cmd.Flags().StringP("name", "n", "", "Name of the jail")
	cmd.Flags().StringP("hostname", "H", "", "Hostname of the jail")
	cmd.Flags().StringSliceP("ip", "i", nil, "IPv4 or IPv6 address of the jail")
	cmd.Flags().VarP(&params, "param", "P", "Jail parameter")
	cmd.Flags().VarP(&limits, "limit", "L", "Resource limit")
	cmd.Flags().StringP("config", "c", "", "Saved jail configuration (YAML)")
	cmd.Flags().StringP("bundle", "b", "", "Path to OCI bundle directory")

	cmd.MarkFlagsMutuallyExclusive("config", "bundle")

	return cmd
}

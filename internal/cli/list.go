package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/netip"
	"strings"
	"text/tabwriter"

	"github.com/nixpig/jailer/internal/operations"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [flags]",
		Aliases: []string{"ls"},
		Short:   "List running jails",
		Example: "  jailer list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			entries, err := operations.List()
			if err != nil {
				return err
			}

			switch format {
			case "table":
				return writeTable(cmd.OutOrStdout(), entries)
			case "json":
				return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
			default:
				return fmt.Errorf("unknown format: %s", format)
			}
		},
	}

	cmd.Flags().StringP("format", "f", "table", "Output format (table or json)")

	return cmd
}

func writeTable(w io.Writer, entries []operations.ListEntry) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "JID\tNAME\tHOSTNAME\tPATH\tIP")
	for _, e := range entries {
		fmt.Fprintf(
			tw,
			"%d\t%s\t%s\t%s\t%s\n",
			e.JID,
			e.Name,
			e.Hostname,
			e.Path,
			joinAddrs(e.IPs),
		)
	}

	return tw.Flush()
}

func joinAddrs(addrs []netip.Addr) string {
	s := make([]string, len(addrs))
	for i, a := range addrs {
		s[i] = a.String()
	}

	return strings.Join(s, ",")
}

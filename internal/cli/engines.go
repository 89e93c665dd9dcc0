package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/FranksOps/indexnow/pkg/indexnow"
	"github.com/spf13/cobra"
)

func newEnginesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List known IndexNow endpoints usable with --engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tENDPOINT")
			for _, e := range indexnow.Engines() {
				fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.Endpoint)
			}
			return tw.Flush()
		},
	}
}

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate ticket statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		ctx := cmd.Context()

		total, err := gateway.TotalTickets(ctx)
		if err != nil {
			return err
		}
		byType, err := gateway.TicketsByType(ctx)
		if err != nil {
			return err
		}
		bySector, err := gateway.TicketsBySector(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("total tickets: %d\n\n", total)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tCOUNT")
		for _, tc := range byType {
			fmt.Fprintf(w, "%s\t%d\n", tc.Type, tc.Count)
		}
		fmt.Fprintln(w, "\nSECTOR\tCOUNT")
		for _, sc := range bySector {
			fmt.Fprintf(w, "%s\t%d\n", sc.Name, sc.Count)
		}
		return w.Flush()
	},
}

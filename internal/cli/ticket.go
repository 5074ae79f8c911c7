package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/supporthub/supporthub-client/internal/api"
	"github.com/supporthub/supporthub-client/internal/domain"
	"github.com/supporthub/supporthub-client/internal/engine"
	"github.com/supporthub/supporthub-client/internal/realtime"
	"github.com/supporthub/supporthub-client/internal/syncer"
)

var (
	ticketListAll      bool
	ticketListPage     int
	ticketListPageSize int
	ticketListState    string
	finalizeNotes      string
)

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Create and track support tickets",
}

var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets by state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		ctx := cmd.Context()

		var (
			tickets []domain.Ticket
			err     error
		)
		if ticketListAll {
			tickets, err = gateway.ListTickets(ctx)
		} else {
			tickets, err = gateway.ListOwnTickets(ctx)
		}
		if err != nil {
			return err
		}

		eng := engine.New(logger)
		eng.LoadSnapshot(tickets)

		partition, err := parsePartition(ticketListState)
		if err != nil {
			return err
		}
		page := eng.ViewOf(partition, ticketListPage, ticketListPageSize)
		printTickets(page)
		fmt.Printf("\n%d %s ticket(s) total, page %d\n", eng.Len(partition), partition, ticketListPage)
		return nil
	},
}

var ticketShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ticket id %q", args[0])
		}
		ticket, err := gateway.GetTicket(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("ticket #%d (%s)\n", ticket.ID, ticket.State())
		fmt.Printf("requester: %s\n", ticket.Requester)
		fmt.Printf("problem:   %s\n", ticket.ProblemDescription)
		if ticket.AssignedTo != nil {
			fmt.Printf("assignee:  %s\n", ticket.AssignedTo.FullName)
		}
		if ticket.Notes != "" {
			fmt.Printf("notes:     %s\n", ticket.Notes)
		}
		fmt.Printf("updated:   %s\n", ticket.UpdatedAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

var ticketCreateCmd = &cobra.Command{
	Use:   "create <problem description>",
	Short: "Open a new ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		ticket, err := gateway.CreateTicket(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ticket #%d created\n", ticket.ID)
		return nil
	},
}

var ticketAssignCmd = &cobra.Command{
	Use:   "assign <id>",
	Short: "Claim a ticket (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ticket id %q", args[0])
		}
		ticket, err := gateway.AssignTicket(cmd.Context(), id)
		if err != nil {
			return err
		}
		assignee := "you"
		if ticket.AssignedTo != nil {
			assignee = ticket.AssignedTo.FullName
		}
		fmt.Printf("ticket #%d assigned to %s\n", ticket.ID, assignee)
		return nil
	},
}

var ticketFinalizeCmd = &cobra.Command{
	Use:   "finalize <id>",
	Short: "Close a ticket with resolution notes (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ticket id %q", args[0])
		}
		ticket, err := gateway.FinalizeTicket(cmd.Context(), id, api.FinalizePatch{Notes: finalizeNotes})
		if err != nil {
			return err
		}
		fmt.Printf("ticket #%d finalized\n", ticket.ID)
		return nil
	},
}

var ticketWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow ticket lists live until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		ctx := cmd.Context()

		// Composition root for the live view: one channel instance, handed
		// to the coordinator explicitly.
		channel := realtime.NewChannel(cfg.Realtime, logger)
		defer channel.Close() //nolint:errcheck

		// Events referencing tickets we have never seen trigger a full
		// reload to self-heal.
		var coordinator *syncer.Coordinator
		eng := engine.New(logger, engine.WithResync(func() {
			if coordinator != nil {
				coordinator.RequestReload()
			}
		}))
		render := func() {
			fmt.Printf("open=%d assigned=%d closed=%d\n",
				eng.Len(engine.PartitionOpen),
				eng.Len(engine.PartitionAssigned),
				eng.Len(engine.PartitionClosed))
		}
		coordinator = syncer.New(gateway, channel, eng, logger, syncer.WithOnChange(render))
		if err := coordinator.Start(ctx); err != nil {
			return err
		}
		defer coordinator.Stop()

		fmt.Println("watching tickets, ctrl-c to stop")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
		case <-ctx.Done():
		}
		return nil
	},
}

func parsePartition(s string) (engine.Partition, error) {
	switch s {
	case "open":
		return engine.PartitionOpen, nil
	case "assigned", "progress":
		return engine.PartitionAssigned, nil
	case "closed":
		return engine.PartitionClosed, nil
	default:
		return "", fmt.Errorf("unknown state %q (want open, assigned or closed)", s)
	}
}

func printTickets(tickets []domain.Ticket) {
	if len(tickets) == 0 {
		fmt.Println("no tickets found")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREQUESTER\tPROBLEM\tASSIGNEE\tUPDATED")
	for _, t := range tickets {
		assignee := "-"
		if t.AssignedTo != nil {
			assignee = t.AssignedTo.FullName
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			t.ID, t.Requester, t.ProblemDescription, assignee,
			t.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func init() {
	ticketListCmd.Flags().BoolVar(&ticketListAll, "all", false, "list every ticket (admin)")
	ticketListCmd.Flags().StringVar(&ticketListState, "state", "open", "partition to list: open, assigned or closed")
	ticketListCmd.Flags().IntVar(&ticketListPage, "page", 1, "page number")
	ticketListCmd.Flags().IntVar(&ticketListPageSize, "page-size", engine.DefaultPageSize, "tickets per page")
	ticketFinalizeCmd.Flags().StringVar(&finalizeNotes, "notes", "", "resolution notes")

	ticketCmd.AddCommand(ticketListCmd)
	ticketCmd.AddCommand(ticketShowCmd)
	ticketCmd.AddCommand(ticketCreateCmd)
	ticketCmd.AddCommand(ticketAssignCmd)
	ticketCmd.AddCommand(ticketFinalizeCmd)
	ticketCmd.AddCommand(ticketWatchCmd)
}

package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/englishschool/internal/config"
	"github.com/example/englishschool/internal/placement"
	"github.com/spf13/cobra"
)

func newPlacementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "placement",
		Short: "Inspect placement-test bookings (non-UI)",
	}
	cmd.AddCommand(newPlacementSlotsCmd())
	cmd.AddCommand(newPlacementListCmd())
	return cmd
}

func newPlacementSlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "Print the configured slot catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			slots := placement.Catalog(cfg.SlotStart, cfg.SlotEnd, cfg.SlotStep)
			labels := make([]string, len(slots))
			for i, s := range slots {
				labels[i] = s.String()
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d slots every %s: %s\n", len(slots), cfg.SlotStep, strings.Join(labels, " "))
			if len(cfg.DisallowedWeekdays) > 0 {
				fmt.Fprintln(out, cfg.PlacementOptions().Rules.WeekdayMessage())
			}
			return nil
		},
	}
}

func newPlacementListCmd() *cobra.Command {
	var handlerID int64
	c := &cobra.Command{
		Use:   "list",
		Short: "List reservations assigned to a handler without marking them seen",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if handlerID == 0 {
				handlerID = rt.cfg.HandlerID
			}
			if handlerID == 0 {
				return fmt.Errorf("--handler-id is required when PLACEMENT_HANDLER_ID is unset")
			}

			svc := placement.NewService(placement.NewRepo(rt.db), rt.cfg.PlacementOptions(), nil, rt.logger)
			rs, err := svc.Inbox(ctx, handlerID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tTIME\tNAME\tPHONE\tLEVEL\tSEEN\tBOOKED")
			for _, r := range rs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
					r.ID, r.Date.Format(placement.DateLayout), r.Time, r.FullName, r.Phone, r.Level, r.Seen,
					r.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	c.Flags().Int64Var(&handlerID, "handler-id", 0, "handler user id (defaults to PLACEMENT_HANDLER_ID)")
	return c
}

package cmd

import (
	"context"
	"fmt"

	"github.com/example/englishschool/internal/migrate"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			m, err := migrate.New(rt.db, rt.logger)
			if err != nil {
				return err
			}
			defer m.Close()

			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			switch action {
			case "status":
				return m.Status(ctx)
			default:
				if err := m.Up(ctx); err != nil {
					return err
				}
				v, err := m.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
				return nil
			}
		},
	}
}

package commands

import (
	"github.com/spf13/cobra"
)

func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the occupancy summary as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			st, err := a.Service.GetOccupancyStats(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
}

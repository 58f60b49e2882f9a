package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hotel-pms/internal/database"
)

func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default room catalog into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := database.SeedRooms(ctx, a.Store, a.Log)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Rooms already present; nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d rooms\n", n)
			return nil
		},
	}
}

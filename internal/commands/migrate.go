package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hotel-pms/internal/config"
	"github.com/iliyamo/hotel-pms/internal/database"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the rooms, guests and bookings tables",
		Long:  `Applies the MySQL schema.  Statements are idempotent, so running it against an up to date database is a no-op.  Requires STORE_DRIVER=mysql.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoreDriver != config.StoreMySQL {
				return fmt.Errorf("migrate needs STORE_DRIVER=mysql (got %q)", cfg.StoreDriver)
			}
			db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer db.Close()
			if err := database.Migrate(ctxOf(cmd), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}

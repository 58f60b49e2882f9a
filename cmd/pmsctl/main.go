package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hotel-pms/internal/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "pmsctl",
		Short:        "Hotel PMS operator tool",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		commands.MigrateCmd(),
		commands.SeedCmd(),
		commands.TokenCmd(),
		commands.HashPasswordCmd(),
		commands.StatsCmd(),
		commands.ConsumeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

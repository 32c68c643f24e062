package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wax-miner",
		Short:         "Scheduled auto-miner for WAX blockchain games",
		Long:          "wax-miner watches each configured account's in-game cooldown and, when eligible, signs and broadcasts the mine action. Reads fail over across shuffled mirror endpoints; configuration is environment-driven.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newOnceCmd(),
		newCacheCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wax-miner-go/internal/assets"
	"wax-miner-go/internal/config"
)

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the on-disk asset metadata cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every cached asset entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			removed, err := assets.NewCache(cfg.AssetCacheDir, 0).Purge()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached assets from %s\n", removed, cfg.AssetCacheDir)
			return err
		},
	})
	return cacheCmd
}

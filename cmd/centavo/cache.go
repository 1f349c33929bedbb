package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the signature cache",
	}

	cmd.AddCommand(cacheStatsCmd())
	cmd.AddCommand(cachePruneCmd())

	return cmd
}

func cacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(_ *cobra.Command, _ []string) error {
			cache, path, err := loadCache()
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d signatures\n", path, cache.Size())
			return nil
		},
	}
}

func cachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop cache entries outside the retention window",
		RunE: func(_ *cobra.Command, _ []string) error {
			cache, path, err := loadCache()
			if err != nil {
				return err
			}
			pruned := cache.Prune()
			if err := cache.Save(path); err != nil {
				return err
			}
			fmt.Printf("pruned %d entries, %d remain\n", pruned, cache.Size())
			return nil
		},
	}
}

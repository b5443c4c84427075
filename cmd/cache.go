package cmd

import (
	"fmt"

	"emoji-sync/core/utils"

	"github.com/spf13/cobra"
)

var cleanAll bool

// cacheCmd is the parent command for cache maintenance operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the emoji cache",
}

// cacheInfoCmd prints per-namespace cache statistics.
var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show per-namespace cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, l, svc, err := bootstrap()
		if err != nil {
			return err
		}
		defer l.Sync()

		stats := svc.CacheInfo()
		if len(stats) == 0 {
			fmt.Println("cache is empty")
			return nil
		}

		fmt.Printf("cache directory: %s\n", svc.CacheDir())
		for _, s := range stats {
			fmt.Printf("%s: %d emojis, %s", s.Namespace, s.Count, utils.FormatBytes(s.TotalBytes))
			if !s.Oldest.IsZero() {
				fmt.Printf(", oldest %s, newest %s",
					utils.FormatAge(s.Oldest), utils.FormatAge(s.Newest))
			}
			fmt.Println()
		}
		return nil
	},
}

// cacheCleanCmd removes stale records, or everything with --all.
var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove stale cached emojis",
	Long: `Clean removes cached emojis older than the configured TTL. With
--all it evicts the entire cache instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, l, svc, err := bootstrap()
		if err != nil {
			return err
		}
		defer l.Sync()

		var removed int
		if cleanAll {
			removed, err = svc.EvictAll()
		} else {
			removed, err = svc.CleanStale()
		}
		if err != nil {
			return err
		}

		fmt.Printf("removed %d cached emoji(s)\n", removed)
		return nil
	},
}

func init() {
	cacheCleanCmd.Flags().BoolVar(&cleanAll, "all", false, "Evict the entire cache, not just stale entries")

	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
	RootCmd.AddCommand(cacheCmd)
}

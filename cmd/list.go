package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"emoji-sync/core/cache"
	"emoji-sync/core/config"
	"emoji-sync/core/provider"
	"emoji-sync/core/utils"
	"emoji-sync/feature/emoji"

	"github.com/spf13/cobra"
)

var (
	listSearch string
	listFormat string
	listLive   bool
)

// listCmd prints the cached emojis.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached emojis",
	Long: `List shows every cached emoji with its rendered token name, file,
size, and age. With --live it lists the remote catalogs instead of the cache.

Examples:
  # List everything in the cache
  emoji-sync list

  # Filter by substring
  emoji-sync list --search party

  # Machine-readable output
  emoji-sync list --format json

  # List what the providers expose right now
  emoji-sync list --live`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listSearch, "search", "", "Only show emojis whose name contains this substring")
	listCmd.Flags().StringVar(&listFormat, "format", "text", "Output format: text or json")
	listCmd.Flags().BoolVar(&listLive, "live", false, "List the remote provider catalogs instead of the cache")

	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if listFormat != "text" && listFormat != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", listFormat)
	}

	cfg, l, svc, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	if listLive {
		return listRemote(cfg, svc)
	}

	var records []cache.Record
	for _, stats := range svc.CacheInfo() {
		for _, rec := range svc.Records(stats.Namespace) {
			if listSearch != "" && !strings.Contains(rec.Name, listSearch) {
				continue
			}
			records = append(records, rec)
		}
	}

	if listFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("no cached emojis")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOKEN\tFILE\tSIZE\tAGE")
	for _, rec := range records {
		fmt.Fprintf(w, ":%s:\t%s\t%s\t%s\n",
			cfg.Emojis.FormatName(rec.Namespace, rec.Name),
			rec.Path,
			utils.FormatBytes(rec.Size),
			utils.FormatAge(rec.FetchedAt),
		)
	}
	return w.Flush()
}

// listRemote prints each enabled provider's live catalog.
func listRemote(cfg *config.Config, svc *emoji.Service) error {
	ctx := context.Background()

	targets, err := svc.Targets("")
	if err != nil {
		return err
	}

	var entries []provider.Entry
	for _, t := range targets {
		listed, err := t.Provider.List(ctx)
		if err != nil {
			return fmt.Errorf("listing %s: %w", t.Provider.Identify().Namespace, err)
		}
		for _, e := range listed {
			if listSearch != "" && !strings.Contains(e.Name, listSearch) {
				continue
			}
			entries = append(entries, e)
		}
	}

	if listFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("no emojis listed")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOKEN\tURL")
	for _, e := range entries {
		fmt.Fprintf(w, ":%s:\t%s\n", cfg.Emojis.FormatName(e.Namespace, e.Name), e.URL)
	}
	return w.Flush()
}

package cmd

import (
	"context"
	"fmt"

	"emoji-sync/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncProvider string
	syncForce    bool
	syncDryRun   bool
)

// syncCmd runs a full sync pass across the configured providers.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync emojis from the configured providers",
	Long: `Sync lists every enabled provider's emojis, downloads what is missing
or stale, and publishes the icons for the site build.

Examples:
  # Sync all enabled providers
  emoji-sync sync

  # Sync one provider only
  emoji-sync sync --provider slack

  # Ignore cache freshness and re-download everything
  emoji-sync sync --force

  # Show what would happen without downloading
  emoji-sync sync --dry-run`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncProvider, "provider", "", "Restrict the sync to one provider namespace")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Re-download every emoji regardless of cache freshness")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Compute the diff without downloading or publishing")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, l, svc, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	if cfg.Mirror.Enabled {
		client, err := storage.NewClient(cfg.Mirror)
		if err != nil {
			return fmt.Errorf("failed to create mirror client: %w", err)
		}
		mirror := storage.NewMirror(client, cfg.Mirror, l)
		if err := mirror.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to prepare mirror bucket: %w", err)
		}
		svc.SetMirror(mirror)
		l.Info("Mirroring icons to object storage", zap.String("bucket", cfg.Mirror.Bucket))
	}

	agg, err := svc.Sync(ctx, syncProvider, syncForce, syncDryRun)
	if err != nil {
		return err
	}

	for _, r := range agg.Results {
		fmt.Println(r.Summary())
	}
	for _, col := range agg.Collisions {
		fmt.Printf("collision: short name %q now points at %s (was %s)\n",
			col.Name, col.Winner, col.Previous)
	}

	if agg.Failed() {
		return fmt.Errorf("sync failed: one or more providers could not be listed")
	}
	if agg.HasErrors() && cfg.Sync.FailOnError {
		return fmt.Errorf("sync finished with errors")
	}
	return nil
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"emoji-sync/core/loader"
	"emoji-sync/core/logger"
	"emoji-sync/core/middleware/auth"
	"emoji-sync/core/middleware/rayid"
	"emoji-sync/core/storage"
	"emoji-sync/feature/emoji"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd starts the HTTP server exposing the sync engine.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the emoji sync server",
	Long:  `Starts the HTTP server and exposes sync, cache, and validation endpoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logg, svc, err := bootstrap()
		if err != nil {
			// The standard logger is not available yet.
			cobra.CheckErr(err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// Optional mirror, shared with every sync triggered over HTTP.
		if cfg.Mirror.Enabled {
			client, err := storage.NewClient(cfg.Mirror)
			if err != nil {
				logg.Fatal("Failed to create mirror client", zap.Error(err))
			}
			mirror := storage.NewMirror(client, cfg.Mirror, logg)
			if err := mirror.EnsureBucket(context.Background()); err != nil {
				logg.Fatal("Failed to prepare mirror bucket", zap.Error(err))
			}
			svc.SetMirror(mirror)
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		mgr := loader.NewManager(logg)
		mgr.Register(emoji.NewFeature(svc))

		// RayID must be first to trace everything.
		app.Use(rayid.New())

		// Logging middleware (Zap + RayID).
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Auth protects every route; an empty key disables it.
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

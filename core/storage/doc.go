// Package storage mirrors published emoji icons into S3-compatible object
// storage so that CDN-served sites can reference the same icon paths.
//
// It wraps the MinIO Go client behind a small Client interface, making it
// easy to mock storage interactions for unit testing (see core/storage/mocks).
// Mirroring is optional and off by default; when enabled, the publisher
// uploads every icon it writes locally.
//
// # Operations
//
//   - EnsureBucket: Creates the target bucket on first use.
//   - Upload: Mirrors a local icon file under the configured prefix.
//   - Prune: Removes mirrored objects for a namespace (or all of them).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	mirror := storage.NewMirror(client, config, logger)
//	err = mirror.EnsureBucket(ctx)
//	err = mirror.Upload(ctx, "slack/wave.png", "/cache/slack/wave.png", "image/png")
package storage

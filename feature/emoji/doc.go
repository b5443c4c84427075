// Package emoji is the feature slice exposing sync engine operations over
// HTTP when the server is running in serve mode.
//
// It follows the service/handler split: Service wraps the cache store,
// publisher, and sync orchestrator behind domain operations, and Handler
// translates them to Fiber routes under /emoji.
//
// # Routes
//
//   - POST   /emoji/sync            Run a sync pass (query: provider, force, dry_run)
//   - GET    /emoji/cache           Per-namespace cache statistics
//   - GET    /emoji/cache/:ns       Cached records for one namespace
//   - DELETE /emoji/cache/:ns      Evict one namespace
//   - GET    /emoji/validate        Config and provider connectivity report
package emoji

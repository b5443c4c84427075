// Package logger provides structured logging for the emoji sync engine,
// built on Zap.
//
// CLI runs use console encoding so per-provider sync summaries stay
// readable; serve mode defaults to JSON for log aggregation. Sync passes
// attach provider and namespace fields so a multi-provider run can be
// untangled after the fact.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID from a Fiber context and attaches
// it to the log entry, correlating all logs for one HTTP request through the
// rayid middleware.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: console or json
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log.Info("Sync complete", zap.Int("synced", n))
package logger

// Package syncer drives emoji synchronization passes.
//
// One pass per provider walks Listing → Diffing → Downloading → Publishing →
// Done. A listing failure is fatal to that provider's pass (there is nothing
// to diff against); everything after listing degrades per entry, so a single
// bad download never aborts the pass. Providers are isolated from each other:
// one misconfigured provider cannot prevent the others from syncing.
//
// # Concurrency
//
// Within a pass the download queue is drained by a bounded worker pool
// (errgroup with a limit). The queue is deduplicated before dispatch and a
// singleflight group collapses concurrent downloads of the same
// (namespace, name) key across passes, so at most one download is ever in
// flight per key. Outcomes are written to per-index slots and aggregated
// after the pool drains, which keeps per-entry error reporting in queue
// order regardless of completion order.
//
// # Retry policy
//
// Rate-limit responses during listing are retried with bounded backoff,
// honouring the remote's retry-after hint when given. Transport errors
// during downloads are retried a small fixed number of times per entry.
// Auth failures, vanished entries, and oversize assets are never retried.
package syncer

// Package cache provides the durable on-disk store for downloaded emoji
// assets.
//
// The Store owns a cache directory laid out as <dir>/<namespace>/<name>.<ext>
// plus a single manifest.json holding one Record per cached asset. The
// manifest is the only source of truth for "is this emoji cached and fresh";
// no other component touches it directly.
//
// # Consistency
//
// Asset files are written to a temporary path and atomically renamed into
// place, and the manifest itself is flushed atomically on every commit, so a
// crash mid-download can never leave a Record pointing at a truncated file.
// On lookup the stored fingerprint is verified against the file on disk;
// any mismatch or missing file is self-healed by reporting the entry as
// missing, which forces a re-download on the next pass.
//
// # Freshness
//
// Lookup classifies a record as Fresh, Stale, or Missing against a caller
// supplied TTL. Stale records keep their files around: the syncer uses them
// as a fallback when a re-download fails.
package cache

// Package provider abstracts external chat-platform emoji catalogs.
//
// A Provider can enumerate the custom emojis visible to its configured
// credential, fetch the image bytes for a single entry, and identify itself
// by kind and namespace. The rest of the engine (cache, syncer, publisher)
// is provider-agnostic: adding a new platform means adding a new Provider
// implementation and a case in the factory, nothing else.
//
// # Implementations
//
//   - Slack: one authenticated emoji.list call returns the workspace's full
//     custom emoji set. Alias entries are resolved to the underlying asset's
//     URL (bounded chain following with a cycle guard).
//   - Discord: lists a guild's custom emojis; entries carry an asset ID from
//     which the CDN fetch URL is constructed. Requires both a bot token and
//     a guild (tenant) ID.
//
// # Error Taxonomy
//
// Providers report failures through typed errors so the syncer can decide
// between aborting a pass, retrying with backoff, or skipping an entry:
// AuthError (fatal to the pass), RateLimitError (retried with backoff,
// carries a retry-after hint), UnavailableError (transport/5xx),
// NotFoundError (entry vanished between list and fetch, non-fatal).
package provider

// Package publisher materializes validated cached assets into the site's
// icon directory tree.
//
// Assets land under <icons_dir>/<namespace>/<name>.<ext>. When short-form
// resolution is enabled a bare <icons_dir>/<name>.<ext> entry is written as
// well, so :partyparrot: resolves without its namespace prefix. Two
// namespaces publishing the same bare name is a detectable collision: the
// most recently processed provider wins deterministically (providers are
// processed in declaration order) and the collision is recorded for the
// caller to warn about, never failing the build on its own.
//
// Files are hard-linked out of the cache when the filesystem allows it and
// copied otherwise. An optional Mirror uploads published icons to object
// storage so CI-built sites can serve them from a bucket.
package publisher

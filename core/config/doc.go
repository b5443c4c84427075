// Package config provides configuration management for the emoji sync
// engine.
//
// It uses Viper to merge three sources, lowest priority first: struct-tag
// defaults (registered via reflection over the `default` tags), the
// project's emoji-config.toml file, and environment variables (nested keys
// mapped as SECTION_KEY, e.g. CACHE_TTL_HOURS -> cache.ttl_hours). A .env
// file next to the config file is loaded first via godotenv, which is also
// how provider credentials usually enter the environment in local runs.
//
// # Configuration Structure
//
// The Config struct is divided into per-concern sections, each owned by the
// package that consumes it:
//   - Cache: cache directory, TTL, clean-on-build (core/cache)
//   - Icons: the site's icon directory (core/publisher)
//   - Emojis: prefix format, size limit, download timeout
//   - Sync: worker pool size, retry budgets, fail-on-error policy
//   - Mirror: optional S3/MinIO upload of published icons (core/storage)
//   - Server, Log: serve-mode and logging settings
//   - Providers: the ordered provider declarations (core/provider)
//
// # Usage
//
//	cfg, err := config.LoadConfig("emoji-config.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, decl := range cfg.EnabledProviders() { ... }
package config

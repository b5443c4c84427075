package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"emoji-sync/core/cache"
	"emoji-sync/core/filter"
	"emoji-sync/core/logger"
	"emoji-sync/core/provider"
	"emoji-sync/core/publisher"
	"emoji-sync/core/server"
	"emoji-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultConfigFile is the config file name looked up when none is given.
const DefaultConfigFile = "emoji-config.toml"

// EmojiOptions holds the global emoji settings.
type EmojiOptions struct {
	// NamespacePrefixRequired disables bare-name (short form) publishing
	// when true: only :<namespace>-<name>: resolves.
	NamespacePrefixRequired bool `mapstructure:"namespace_prefix_required" default:"false"`
	// MaxSizeKB skips emojis larger than this.
	MaxSizeKB int `mapstructure:"max_size_kb" default:"500"`
	// DownloadTimeout is the per-request timeout in seconds.
	DownloadTimeout int `mapstructure:"download_timeout" default:"30"`
	// PrefixFormat controls rendered token names: "namespace-name",
	// "namespace_name", or "name-only".
	PrefixFormat string `mapstructure:"prefix_format" default:"namespace-name"`
}

// FormatName renders an emoji token name according to PrefixFormat.
func (o EmojiOptions) FormatName(namespace, name string) string {
	switch o.PrefixFormat {
	case "namespace_name":
		return namespace + "_" + name
	case "name-only":
		return name
	default:
		return namespace + "-" + name
	}
}

// SyncOptions holds the sync pass tuning knobs.
type SyncOptions struct {
	// Workers bounds concurrent downloads per provider.
	Workers int `mapstructure:"workers" default:"4"`
	// Retries is the per-entry download retry budget.
	Retries int `mapstructure:"retries" default:"2"`
	// ListRetries is the rate-limit retry budget for listing.
	ListRetries int `mapstructure:"list_retries" default:"2"`
	// FailOnError makes a build-hook sync treat any error as fatal.
	FailOnError bool `mapstructure:"fail_on_error" default:"true"`
}

// Config holds all configuration for the emoji sync engine.
type Config struct {
	// Server holds serve-mode HTTP settings.
	Server server.Config `mapstructure:"server"`
	// Log holds logger settings.
	Log logger.Config `mapstructure:"log"`
	// Cache holds the asset cache settings.
	Cache cache.Config `mapstructure:"cache"`
	// Icons holds the icon publishing settings.
	Icons publisher.Config `mapstructure:"icons"`
	// Emojis holds global emoji options.
	Emojis EmojiOptions `mapstructure:"emojis"`
	// Sync holds orchestrator tuning.
	Sync SyncOptions `mapstructure:"sync"`
	// Mirror holds the optional object-storage mirror settings.
	Mirror storage.Config `mapstructure:"mirror"`
	// Providers is the ordered list of provider declarations.
	Providers []provider.Declaration `mapstructure:"providers"`
}

// LoadConfig loads configuration from the given TOML file, layering
// struct-tag defaults underneath and environment variables on top. A .env
// file next to the config file is loaded first if present.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	// Ignore error if .env doesn't exist (e.g. CI with real env vars).
	_ = godotenv.Overload(filepath.Join(filepath.Dir(path), ".env"))

	v := viper.New()

	// Recursively parse struct tags to register default values.
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. CACHE_DIRECTORY -> cache.directory).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default
// values in Viper based on the 'default' and 'mapstructure' tags. Slice and
// map fields (like the provider list) have no defaults and are skipped.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}
		if field.Type.Kind() == reflect.Slice || field.Type.Kind() == reflect.Map {
			continue
		}

		// Always set the default (even if empty) to register the key
		// for AutomaticEnv.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}

// Validate checks provider declarations and filter patterns.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one [[providers]] entry must be configured")
	}

	seen := make(map[string]struct{})
	for _, decl := range c.Providers {
		if err := validateNamespace(decl.Namespace); err != nil {
			return err
		}
		if _, dup := seen[decl.Namespace]; dup {
			return fmt.Errorf("duplicate provider namespace %q", decl.Namespace)
		}
		seen[decl.Namespace] = struct{}{}

		switch provider.Kind(decl.Type) {
		case provider.KindSlack, provider.KindDiscord:
		default:
			return fmt.Errorf("provider %q: unsupported type %q", decl.Namespace, decl.Type)
		}

		if decl.TokenEnv == "" {
			return fmt.Errorf("provider %q: token_env is required", decl.Namespace)
		}

		f := filter.New(decl.Filters.IncludePatterns, decl.Filters.ExcludePatterns)
		if err := f.Validate(); err != nil {
			return fmt.Errorf("provider %q: %w", decl.Namespace, err)
		}
	}
	return nil
}

// validateNamespace enforces the namespace naming rules: nonempty, at most
// 64 characters, alphanumeric plus dashes and underscores.
func validateNamespace(namespace string) error {
	if namespace == "" {
		return fmt.Errorf("provider namespace cannot be empty")
	}
	if len(namespace) > 64 {
		return fmt.Errorf("namespace %q is too long (max 64 characters)", namespace)
	}
	for _, r := range namespace {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("invalid namespace %q: only alphanumerics, dashes, and underscores are allowed", namespace)
		}
	}
	return nil
}

// EnabledProviders returns the enabled declarations in declaration order.
func (c *Config) EnabledProviders() []provider.Declaration {
	out := make([]provider.Declaration, 0, len(c.Providers))
	for _, decl := range c.Providers {
		if decl.IsEnabled() {
			out = append(out, decl)
		}
	}
	return out
}

// ProviderByNamespace returns the declaration for a namespace, if any.
func (c *Config) ProviderByNamespace(namespace string) (provider.Declaration, bool) {
	for _, decl := range c.Providers {
		if decl.Namespace == namespace {
			return decl, true
		}
	}
	return provider.Declaration{}, false
}

// MissingEnv returns the credential/tenant environment variables that are
// required by enabled providers but not set.
func (c *Config) MissingEnv() []string {
	var missing []string
	for _, decl := range c.EnabledProviders() {
		for _, name := range decl.RequiredEnv() {
			if name != "" && os.Getenv(name) == "" {
				missing = append(missing, name)
			}
		}
	}
	return missing
}

package provider

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

// Kind identifies a supported provider platform.
type Kind string

const (
	KindSlack   Kind = "slack"
	KindDiscord Kind = "discord"
)

// Descriptor is a provider's static identity, used for manifest keying and
// log attribution.
type Descriptor struct {
	// Kind is the platform type (slack, discord).
	Kind Kind
	// Namespace is the configured grouping label for this provider's emojis.
	Namespace string
}

// Entry describes one emoji visible in a provider's remote catalog.
// Entries are produced fresh on every List call and never persisted.
type Entry struct {
	// Namespace is the provider's configured namespace.
	Namespace string
	// Name is the emoji's short name, unique within the namespace.
	Name string
	// URL is the asset's download location.
	URL string
	// RemoteSize is the remote-reported byte size, or 0 when unknown.
	RemoteSize int64
}

// Content is the fetched asset for one entry.
type Content struct {
	Bytes       []byte
	ContentType string
}

// Provider is the capability contract over a chat platform's emoji catalog.
type Provider interface {
	// List enumerates every emoji currently visible to the configured
	// credential. It is a pure query and never mutates shared state.
	List(ctx context.Context) ([]Entry, error)

	// Fetch retrieves the asset bytes for one listed entry.
	Fetch(ctx context.Context, entry Entry) (*Content, error)

	// Identify returns the provider's static descriptor.
	Identify() Descriptor

	// Validate performs a lightweight connectivity check and returns the
	// number of emojis visible to the credential.
	Validate(ctx context.Context) (int, error)
}

// FilterRules holds the glob pattern sets configured for one provider.
type FilterRules struct {
	// IncludePatterns restricts syncing to matching names when non-empty.
	IncludePatterns []string `mapstructure:"include_patterns"`
	// ExcludePatterns skips matching names. Evaluated before includes.
	ExcludePatterns []string `mapstructure:"exclude_patterns"`
}

// Declaration is one provider block from the configuration file.
type Declaration struct {
	// Type is the platform kind (slack, discord).
	Type string `mapstructure:"type"`
	// Namespace groups this provider's emojis (e.g. "slack", "work").
	Namespace string `mapstructure:"namespace"`
	// TokenEnv names the environment variable holding the credential.
	TokenEnv string `mapstructure:"token_env"`
	// TenantEnv names the environment variable holding the tenant ID
	// (e.g. a Discord guild ID). Only required by tenant-scoped providers.
	TenantEnv string `mapstructure:"tenant_env"`
	// Enabled defaults to true when omitted.
	Enabled *bool `mapstructure:"enabled"`
	// Filters are the name filtering rules for this provider.
	Filters FilterRules `mapstructure:"filters"`
}

// IsEnabled reports whether the provider should take part in syncs.
func (d Declaration) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// RequiredEnv returns the environment variable names this declaration needs.
func (d Declaration) RequiredEnv() []string {
	vars := []string{d.TokenEnv}
	if Kind(d.Type) == KindDiscord && d.TenantEnv != "" {
		vars = append(vars, d.TenantEnv)
	}
	return vars
}

// Options carries runtime limits shared by all providers.
type Options struct {
	// Timeout bounds every network call.
	Timeout time.Duration
	// MaxBytes caps a single asset download. Zero means unlimited.
	MaxBytes int64
}

// New constructs the Provider for a configuration declaration, resolving
// credentials from the environment.
func New(decl Declaration, opts Options) (Provider, error) {
	if decl.TokenEnv == "" {
		return nil, fmt.Errorf("provider %q: token_env is required", decl.Namespace)
	}

	token := os.Getenv(decl.TokenEnv)
	if token == "" {
		return nil, fmt.Errorf("provider %q: token not found in environment variable %s", decl.Namespace, decl.TokenEnv)
	}

	client := newHTTPClient(opts.Timeout)

	switch Kind(decl.Type) {
	case KindSlack:
		return newSlack(decl.Namespace, token, client, opts.MaxBytes), nil

	case KindDiscord:
		if decl.TenantEnv == "" {
			return nil, fmt.Errorf("provider %q: tenant_env (guild ID variable) is required for discord", decl.Namespace)
		}
		guildID := os.Getenv(decl.TenantEnv)
		if guildID == "" {
			return nil, fmt.Errorf("provider %q: guild ID not found in environment variable %s", decl.Namespace, decl.TenantEnv)
		}
		return newDiscord(decl.Namespace, token, guildID, client, opts.MaxBytes), nil

	default:
		return nil, fmt.Errorf("provider %q: unsupported type %q", decl.Namespace, decl.Type)
	}
}

// newHTTPClient builds a client with strict connection-level timeouts so a
// hung remote cannot stall a sync pass beyond the configured bound.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// knownFormats are the image extensions recognised in asset URLs.
var knownFormats = []string{"svg", "png", "gif", "jpg", "webp"}

// ExtFromURL extracts a known image extension from an asset URL,
// defaulting to png.
func ExtFromURL(url string) string {
	lower := strings.ToLower(url)
	for _, ext := range knownFormats {
		if strings.Contains(lower, "."+ext) {
			return ext
		}
	}
	return "png"
}

package cache

import (
	"strings"
	"time"
)

// Config holds configuration for the emoji cache.
type Config struct {
	// Directory is where downloaded assets and the manifest live.
	Directory string `mapstructure:"directory" default:".emoji-cache"`
	// TTLHours is the age after which a cached asset is considered stale.
	TTLHours int `mapstructure:"ttl_hours" default:"24"`
	// CleanOnBuild evicts the whole cache before every sync pass.
	CleanOnBuild bool `mapstructure:"clean_on_build" default:"false"`
}

// TTL returns the configured time-to-live as a duration.
func (c Config) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// Record is the persistent metadata for one cached asset, keyed by
// (namespace, name) in the manifest.
type Record struct {
	// Namespace is the owning provider's namespace.
	Namespace string `json:"namespace"`
	// Name is the emoji name within the namespace.
	Name string `json:"name"`
	// Path is the asset file path relative to the cache directory.
	Path string `json:"path"`
	// FetchedAt is when the asset was last downloaded.
	FetchedAt time.Time `json:"fetched_at"`
	// Fingerprint is the sha256 hex digest of the file contents.
	Fingerprint string `json:"fingerprint"`
	// Size is the asset's byte size.
	Size int64 `json:"size"`
	// ContentType is the content type reported at download time.
	ContentType string `json:"content_type"`
	// SourceURL is where the asset was fetched from.
	SourceURL string `json:"source_url"`
}

// Ext returns the record's file extension without the leading dot.
func (r Record) Ext() string {
	if i := strings.LastIndex(r.Path, "."); i >= 0 {
		return r.Path[i+1:]
	}
	return ""
}

// Freshness classifies a lookup result.
type Freshness int

const (
	// Missing means no usable record exists and a download is required.
	Missing Freshness = iota
	// Fresh means the record exists and is within its TTL.
	Fresh
	// Stale means the record exists but has aged out. Its file is still
	// readable and usable as a fallback.
	Stale
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "missing"
	}
}

// Stats summarises one namespace's cache contents.
type Stats struct {
	Namespace  string    `json:"namespace"`
	Count      int       `json:"count"`
	TotalBytes int64     `json:"total_bytes"`
	Oldest     time.Time `json:"oldest_fetch,omitempty"`
	Newest     time.Time `json:"newest_fetch,omitempty"`
}

// ExtForContentType maps an image content type to a file extension,
// returning "" when the type is unknown.
func ExtForContentType(contentType string) string {
	ct := strings.ToLower(contentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/svg+xml":
		return "svg"
	default:
		if strings.Contains(ct, "svg") {
			return "svg"
		}
		return ""
	}
}

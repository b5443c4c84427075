package syncer

import (
	"fmt"

	"emoji-sync/core/publisher"
)

// EntryError is a per-emoji failure recorded during a pass.
type EntryError struct {
	// Name is the offending emoji name.
	Name string `json:"name"`
	// Err is the cause.
	Err error `json:"-"`
}

func (e EntryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Result is the outcome of one provider's sync pass. It is returned to the
// caller and never persisted.
type Result struct {
	// Provider is the platform kind (slack, discord).
	Provider string `json:"provider"`
	// Namespace is the provider's configured namespace.
	Namespace string `json:"namespace"`
	// Total is the remote catalog size before filtering.
	Total int `json:"total"`
	// Synced counts entries downloaded and committed this pass. In dry-run
	// mode it counts entries that would have been downloaded.
	Synced int `json:"synced"`
	// Cached counts entries reused from the cache without a download.
	Cached int `json:"cached"`
	// SkippedFilter counts entries rejected by the name filter.
	SkippedFilter int `json:"skipped_filter"`
	// SkippedOversize counts entries over the size limit.
	SkippedOversize int `json:"skipped_oversize"`
	// Errored counts entries that failed to download or publish.
	Errored int `json:"errored"`
	// Errors lists per-entry failures in queue order.
	Errors []EntryError `json:"errors,omitempty"`
	// Err is a provider-level failure (listing aborted the pass).
	Err error `json:"-"`
	// DryRun marks a pass that skipped downloading and publishing.
	DryRun bool `json:"dry_run,omitempty"`
}

// Failed reports whether the provider's pass aborted before diffing.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Summary renders the one-line per-provider report.
func (r Result) Summary() string {
	if r.Failed() {
		return fmt.Sprintf("%s (%s): failed: %v", r.Provider, r.Namespace, r.Err)
	}
	return fmt.Sprintf("%s (%s): %d synced, %d cached, %d filtered, %d oversize, %d errors",
		r.Provider, r.Namespace, r.Synced, r.Cached, r.SkippedFilter, r.SkippedOversize, r.Errored)
}

// Aggregate bundles every provider's result for one sync run.
type Aggregate struct {
	// Results holds one Result per provider, in declaration order.
	Results []Result `json:"results"`
	// Collisions are bare-name collisions detected while publishing.
	Collisions []publisher.Collision `json:"collisions,omitempty"`
}

// Failed reports whether any provider's pass aborted at listing.
func (a Aggregate) Failed() bool {
	for _, r := range a.Results {
		if r.Failed() {
			return true
		}
	}
	return false
}

// HasErrors reports whether any provider-level or per-entry error occurred.
// The caller's fail-on-error policy decides whether this is build-fatal.
func (a Aggregate) HasErrors() bool {
	for _, r := range a.Results {
		if r.Failed() || len(r.Errors) > 0 {
			return true
		}
	}
	return false
}

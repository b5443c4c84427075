package syncer

import (
	"context"
	"errors"
	"time"

	"emoji-sync/core/cache"
	"emoji-sync/core/filter"
	"emoji-sync/core/provider"
	"emoji-sync/core/publisher"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Options controls a sync run.
type Options struct {
	// TTL is the cache freshness window.
	TTL time.Duration
	// MaxSizeKB skips assets larger than this. Zero disables the check.
	MaxSizeKB int
	// Workers bounds concurrent downloads per provider.
	Workers int
	// Retries is the number of additional download attempts per entry
	// after a transport failure.
	Retries int
	// ListRetries is the number of additional listing attempts after a
	// rate-limit response.
	ListRetries int
	// Force re-downloads every entry regardless of cache freshness.
	Force bool
	// DryRun computes the diff but skips downloading and publishing.
	DryRun bool
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return 4
	}
	return o.Workers
}

// Target pairs a provider with its configured name filter.
type Target struct {
	Provider provider.Provider
	Filter   *filter.Filter
}

// Orchestrator runs sync passes against the cache store and icon publisher.
// The store is the sole mutation boundary for cache state; workers never
// write cache files directly.
type Orchestrator struct {
	store  *cache.Store
	pub    *publisher.Publisher
	opts   Options
	logger *zap.Logger

	sf   singleflight.Group
	wait func(ctx context.Context, d time.Duration) error
}

// New creates an Orchestrator.
func New(store *cache.Store, pub *publisher.Publisher, opts Options, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:  store,
		pub:    pub,
		opts:   opts,
		logger: logger,
		wait:   sleepCtx,
	}
}

// SyncAll runs one pass per target in order and returns the aggregate
// result. Each provider's failure is isolated to its own Result.
func (o *Orchestrator) SyncAll(ctx context.Context, targets []Target) Aggregate {
	agg := Aggregate{Results: make([]Result, 0, len(targets))}
	for _, t := range targets {
		agg.Results = append(agg.Results, o.SyncProvider(ctx, t.Provider, t.Filter))
	}
	agg.Collisions = o.pub.Collisions()
	return agg
}

// job is one queued download with an optional stale fallback record.
type job struct {
	entry provider.Entry
	stale *cache.Record
}

// outcome is one download's terminal state, slotted by queue index.
type outcome struct {
	rec    cache.Record
	err    error
	reused bool
}

// SyncProvider runs a full pass for one provider.
func (o *Orchestrator) SyncProvider(ctx context.Context, p provider.Provider, f *filter.Filter) Result {
	desc := p.Identify()
	res := Result{
		Provider:  string(desc.Kind),
		Namespace: desc.Namespace,
		DryRun:    o.opts.DryRun,
	}
	log := o.logger.With(
		zap.String("provider", string(desc.Kind)),
		zap.String("namespace", desc.Namespace),
	)

	// Listing
	entries, err := o.listWithRetry(ctx, p)
	if err != nil {
		log.Error("Listing failed, aborting provider pass", zap.Error(err))
		res.Err = err
		return res
	}
	res.Total = len(entries)
	log.Info("Listed remote catalog", zap.Int("entries", len(entries)))

	// Diffing
	var queue []job
	var publish []cache.Record
	maxBytes := int64(o.opts.MaxSizeKB) * 1024
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}

		if !f.Accepts(e.Name) {
			res.SkippedFilter++
			continue
		}
		if maxBytes > 0 && e.RemoteSize > maxBytes {
			res.SkippedOversize++
			continue
		}

		rec, freshness := o.store.Lookup(desc.Namespace, e.Name, o.opts.TTL)
		if freshness == cache.Fresh && !o.opts.Force {
			res.Cached++
			publish = append(publish, rec)
			continue
		}

		j := job{entry: e}
		if freshness == cache.Stale {
			j.stale = &rec
		}
		queue = append(queue, j)
	}

	if o.opts.DryRun {
		res.Synced = len(queue)
		log.Info("Dry run, skipping downloads", zap.Int("would_sync", len(queue)))
		return res
	}

	// Downloading
	outcomes := make([]outcome, len(queue))
	g := new(errgroup.Group)
	g.SetLimit(o.opts.workers())
	for i, j := range queue {
		i, j := i, j
		g.Go(func() error {
			outcomes[i] = o.download(ctx, p, j.entry)
			return nil
		})
	}
	_ = g.Wait()

	// Aggregate in queue order so error reporting is reproducible.
	for i, out := range outcomes {
		j := queue[i]
		switch {
		case out.err == nil && out.reused:
			res.Cached++
			publish = append(publish, out.rec)
		case out.err == nil:
			res.Synced++
			publish = append(publish, out.rec)
		case errors.Is(out.err, provider.ErrTooLarge):
			res.SkippedOversize++
		default:
			res.Errored++
			res.Errors = append(res.Errors, EntryError{Name: j.entry.Name, Err: out.err})
			if j.stale != nil {
				log.Warn("Re-download failed, keeping stale cached copy",
					zap.String("name", j.entry.Name), zap.Error(out.err))
				publish = append(publish, *j.stale)
			}
		}
	}

	// Publishing
	for _, rec := range publish {
		if _, err := o.pub.Publish(ctx, rec, o.store.AbsPath(rec)); err != nil {
			res.Errored++
			res.Errors = append(res.Errors, EntryError{Name: rec.Name, Err: err})
		}
	}

	log.Info("Provider pass complete",
		zap.Int("synced", res.Synced),
		zap.Int("cached", res.Cached),
		zap.Int("errors", res.Errored),
	)
	return res
}

// listWithRetry calls List, retrying only on rate-limit responses with
// bounded backoff. Auth and transport failures fail the pass immediately.
func (o *Orchestrator) listWithRetry(ctx context.Context, p provider.Provider) ([]provider.Entry, error) {
	var lastErr error
	attempts := o.opts.ListRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		entries, err := p.List(ctx)
		if err == nil {
			return entries, nil
		}
		lastErr = err

		retryIn, rateLimited := provider.IsRateLimit(err)
		if !rateLimited || attempt == attempts-1 {
			return nil, err
		}
		if retryIn <= 0 {
			retryIn = backoff(attempt)
		}
		if err := o.wait(ctx, retryIn); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// download fetches and commits one entry. The singleflight group guarantees
// at most one in-flight download per (namespace, name) key; concurrent
// passes hitting the same key share the committed record and count it as a
// cache reuse.
func (o *Orchestrator) download(ctx context.Context, p provider.Provider, entry provider.Entry) outcome {
	executed := false
	v, err, _ := o.sf.Do(entry.Namespace+"/"+entry.Name, func() (interface{}, error) {
		executed = true
		return o.fetchAndCommit(ctx, p, entry)
	})
	if err != nil {
		return outcome{err: err}
	}
	return outcome{rec: v.(cache.Record), reused: !executed}
}

func (o *Orchestrator) fetchAndCommit(ctx context.Context, p provider.Provider, entry provider.Entry) (cache.Record, error) {
	var lastErr error
	attempts := o.opts.Retries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := o.wait(ctx, backoff(attempt)); err != nil {
				return cache.Record{}, err
			}
		}

		content, err := p.Fetch(ctx, entry)
		if err != nil {
			// Vanished, oversize, and auth failures are terminal.
			if provider.IsNotFound(err) || errors.Is(err, provider.ErrTooLarge) || provider.IsAuth(err) {
				return cache.Record{}, err
			}
			lastErr = err
			continue
		}

		ext := cache.ExtForContentType(content.ContentType)
		if ext == "" {
			ext = provider.ExtFromURL(entry.URL)
		}
		return o.store.Commit(entry.Namespace, entry.Name, ext, content.Bytes, content.ContentType, entry.URL)
	}
	return cache.Record{}, lastErr
}

// backoff returns the wait before retry attempt n (1-based doubling).
func backoff(attempt int) time.Duration {
	d := 250 * time.Millisecond << uint(attempt)
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package emoji

import (
	"context"
	"fmt"
	"time"

	"emoji-sync/core/cache"
	"emoji-sync/core/config"
	"emoji-sync/core/filter"
	"emoji-sync/core/provider"
	"emoji-sync/core/publisher"
	"emoji-sync/core/syncer"

	"go.uber.org/zap"
)

// Service wires the cache store, icon publisher, and sync orchestrator
// behind the emoji domain operations.
type Service struct {
	cfg    *config.Config
	store  *cache.Store
	mirror publisher.Mirror
	logger *zap.Logger
}

// NewService creates a new emoji service.
func NewService(cfg *config.Config, store *cache.Store, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, store: store, logger: logger}
}

// SetMirror attaches an optional object-storage mirror used while publishing.
func (s *Service) SetMirror(m publisher.Mirror) {
	s.mirror = m
}

// Targets builds the sync targets for the enabled providers. A non-empty
// scope restricts the run to one namespace.
func (s *Service) Targets(scope string) ([]syncer.Target, error) {
	decls := s.cfg.EnabledProviders()
	if scope != "" {
		decl, ok := s.cfg.ProviderByNamespace(scope)
		if !ok {
			return nil, fmt.Errorf("unknown provider namespace %q", scope)
		}
		if !decl.IsEnabled() {
			return nil, fmt.Errorf("provider %q is disabled", scope)
		}
		decls = []provider.Declaration{decl}
	}

	targets := make([]syncer.Target, 0, len(decls))
	for _, decl := range decls {
		p, err := provider.New(decl, provider.Options{
			Timeout:  time.Duration(s.cfg.Emojis.DownloadTimeout) * time.Second,
			MaxBytes: int64(s.cfg.Emojis.MaxSizeKB) * 1024,
		})
		if err != nil {
			return nil, err
		}
		targets = append(targets, syncer.Target{
			Provider: p,
			Filter:   filter.New(decl.Filters.IncludePatterns, decl.Filters.ExcludePatterns),
		})
	}
	return targets, nil
}

// Sync runs a sync pass for the scoped providers and returns the aggregate
// result.
func (s *Service) Sync(ctx context.Context, scope string, force, dryRun bool) (syncer.Aggregate, error) {
	targets, err := s.Targets(scope)
	if err != nil {
		return syncer.Aggregate{}, err
	}

	if s.cfg.Cache.CleanOnBuild && !dryRun {
		if n, err := s.store.EvictAll(); err != nil {
			return syncer.Aggregate{}, fmt.Errorf("cleaning cache: %w", err)
		} else if n > 0 {
			s.logger.Info("Evicted cache before sync", zap.Int("records", n))
		}
	}

	pub := publisher.New(s.cfg.Icons, !s.cfg.Emojis.NamespacePrefixRequired, s.logger)
	if s.mirror != nil {
		pub.SetMirror(s.mirror)
	}

	orch := syncer.New(s.store, pub, syncer.Options{
		TTL:         s.cfg.Cache.TTL(),
		MaxSizeKB:   s.cfg.Emojis.MaxSizeKB,
		Workers:     s.cfg.Sync.Workers,
		Retries:     s.cfg.Sync.Retries,
		ListRetries: s.cfg.Sync.ListRetries,
		Force:       force,
		DryRun:      dryRun,
	}, s.logger)

	return orch.SyncAll(ctx, targets), nil
}

// CacheInfo returns per-namespace cache statistics.
func (s *Service) CacheInfo() []cache.Stats {
	namespaces := s.store.Namespaces()
	stats := make([]cache.Stats, 0, len(namespaces))
	for _, ns := range namespaces {
		stats = append(stats, s.store.Info(ns))
	}
	return stats
}

// Records returns the cached records for one namespace, sorted by name.
func (s *Service) Records(namespace string) []cache.Record {
	return s.store.Records(namespace)
}

// Evict removes one namespace from the cache and returns the record count.
func (s *Service) Evict(namespace string) (int, error) {
	return s.store.Evict(namespace)
}

// EvictAll removes every cached record.
func (s *Service) EvictAll() (int, error) {
	return s.store.EvictAll()
}

// CleanStale removes records older than the configured TTL.
func (s *Service) CleanStale() (int, error) {
	return s.store.CleanStale(s.cfg.Cache.TTL())
}

// CacheDir returns the cache root directory.
func (s *Service) CacheDir() string {
	return s.store.Dir()
}

// ProviderCheck is the validation outcome for one provider.
type ProviderCheck struct {
	Namespace string `json:"namespace"`
	Type      string `json:"type"`
	OK        bool   `json:"ok"`
	Count     int    `json:"count,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ValidationReport is the outcome of a config validation run.
type ValidationReport struct {
	MissingEnv []string        `json:"missing_env,omitempty"`
	Providers  []ProviderCheck `json:"providers,omitempty"`
}

// OK reports whether the configuration passed every requested check.
func (r ValidationReport) OK() bool {
	if len(r.MissingEnv) > 0 {
		return false
	}
	for _, p := range r.Providers {
		if !p.OK {
			return false
		}
	}
	return true
}

// Validate checks required environment variables and, when testProviders is
// set, performs a live connectivity check against every enabled provider.
func (s *Service) Validate(ctx context.Context, testProviders bool) ValidationReport {
	report := ValidationReport{MissingEnv: s.cfg.MissingEnv()}
	if !testProviders {
		return report
	}

	for _, decl := range s.cfg.EnabledProviders() {
		check := ProviderCheck{Namespace: decl.Namespace, Type: decl.Type}

		p, err := provider.New(decl, provider.Options{
			Timeout: time.Duration(s.cfg.Emojis.DownloadTimeout) * time.Second,
		})
		if err != nil {
			check.Error = err.Error()
			report.Providers = append(report.Providers, check)
			continue
		}

		count, err := p.Validate(ctx)
		if err != nil {
			check.Error = err.Error()
		} else {
			check.OK = true
			check.Count = count
		}
		report.Providers = append(report.Providers, check)
	}
	return report
}

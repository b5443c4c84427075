package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

const manifestName = "manifest.json"

// manifest is the on-disk shape of the record store.
type manifest struct {
	Version int               `json:"version"`
	Records map[string]Record `json:"records"`
}

// Store is the durable cache of downloaded emoji assets. All mutation of the
// cache directory and manifest goes through it.
type Store struct {
	dir    string
	logger *zap.Logger

	mu      sync.Mutex
	records map[string]Record
}

// NewStore opens (or initialises) the cache at cfg.Directory and loads the
// manifest. A corrupt manifest is logged and replaced with an empty one
// rather than failing the build.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	s := &Store{
		dir:     cfg.Directory,
		logger:  logger,
		records: make(map[string]Record),
	}

	data, err := os.ReadFile(s.manifestPath())
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn("Corrupt cache manifest, starting fresh", zap.Error(err))
		return s, nil
	}
	if m.Records != nil {
		s.records = m.Records
	}
	return s, nil
}

// Dir returns the cache directory root.
func (s *Store) Dir() string {
	return s.dir
}

// AbsPath resolves a record's file path against the cache directory.
func (s *Store) AbsPath(r Record) string {
	return filepath.Join(s.dir, filepath.FromSlash(r.Path))
}

func (s *Store) manifestPath() string {
	return filepath.Join(s.dir, manifestName)
}

func key(namespace, name string) string {
	return namespace + "/" + name
}

// Lookup classifies (namespace, name) against the given TTL. A record whose
// file is missing or whose fingerprint no longer matches is dropped and
// reported Missing, forcing a clean re-download.
func (s *Store) Lookup(namespace, name string, ttl time.Duration) (Record, Freshness) {
	s.mu.Lock()
	rec, ok := s.records[key(namespace, name)]
	s.mu.Unlock()

	if !ok {
		return Record{}, Missing
	}

	if err := s.verify(rec); err != nil {
		s.logger.Warn("Cache record failed verification, treating as missing",
			zap.String("namespace", namespace),
			zap.String("name", name),
			zap.Error(err),
		)
		s.drop(namespace, name)
		return Record{}, Missing
	}

	if time.Since(rec.FetchedAt) <= ttl {
		return rec, Fresh
	}
	return rec, Stale
}

// verify checks that the record's file exists and matches its fingerprint.
func (s *Store) verify(rec Record) error {
	data, err := os.ReadFile(s.AbsPath(rec))
	if err != nil {
		return fmt.Errorf("reading cached file: %w", err)
	}
	if fp := fingerprint(data); fp != rec.Fingerprint {
		return fmt.Errorf("fingerprint mismatch: manifest %s, file %s", rec.Fingerprint, fp)
	}
	return nil
}

// drop removes a record (and its file, best effort) and flushes the manifest.
func (s *Store) drop(namespace, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(namespace, name)
	if rec, ok := s.records[k]; ok {
		_ = os.Remove(s.AbsPath(rec))
		delete(s.records, k)
		if err := s.flushLocked(); err != nil {
			s.logger.Warn("Failed to flush manifest after drop", zap.Error(err))
		}
	}
}

// Commit writes a downloaded asset into the cache and records it in the
// manifest as one logically atomic step: bytes go to a temp file that is
// renamed into place, then the manifest is rewritten atomically. Safe to
// call concurrently; two commits for the same key leave the manifest
// pointing at a self-consistent record (last writer wins).
func (s *Store) Commit(namespace, name, ext string, data []byte, contentType, sourceURL string) (Record, error) {
	if ext == "" {
		ext = "png"
	}

	nsDir := filepath.Join(s.dir, namespace)
	if err := os.MkdirAll(nsDir, 0o755); err != nil {
		return Record{}, fmt.Errorf("creating namespace directory: %w", err)
	}

	finalPath := filepath.Join(nsDir, name+"."+ext)

	tmp, err := os.CreateTemp(nsDir, "."+name+"-*.tmp")
	if err != nil {
		return Record{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return Record{}, fmt.Errorf("writing asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return Record{}, fmt.Errorf("closing asset: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return Record{}, fmt.Errorf("renaming asset into place: %w", err)
	}

	rec := Record{
		Namespace:   namespace,
		Name:        name,
		Path:        namespace + "/" + name + "." + ext,
		FetchedAt:   time.Now(),
		Fingerprint: fingerprint(data),
		Size:        int64(len(data)),
		ContentType: contentType,
		SourceURL:   sourceURL,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A re-download may change the extension; remove the superseded file.
	if old, ok := s.records[key(namespace, name)]; ok && old.Path != rec.Path {
		_ = os.Remove(s.AbsPath(old))
	}

	s.records[key(namespace, name)] = rec
	if err := s.flushLocked(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// flushLocked rewrites the manifest atomically. Caller holds s.mu.
func (s *Store) flushLocked() error {
	m := manifest{Version: 1, Records: s.records}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := atomic.WriteFile(s.manifestPath(), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Evict removes all cached files and records for one namespace, returning
// the number of records removed.
func (s *Store) Evict(namespace string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for k, rec := range s.records {
		if rec.Namespace != namespace {
			continue
		}
		_ = os.Remove(s.AbsPath(rec))
		delete(s.records, k)
		count++
	}
	_ = os.Remove(filepath.Join(s.dir, namespace))

	if count > 0 {
		if err := s.flushLocked(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// EvictAll removes every cached file and record across all namespaces.
func (s *Store) EvictAll() (int, error) {
	s.mu.Lock()
	namespaces := make(map[string]struct{})
	for _, rec := range s.records {
		namespaces[rec.Namespace] = struct{}{}
	}
	s.mu.Unlock()

	total := 0
	for ns := range namespaces {
		n, err := s.Evict(ns)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// CleanStale removes records (and files) older than the TTL, returning the
// number removed.
func (s *Store) CleanStale(ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for k, rec := range s.records {
		if time.Since(rec.FetchedAt) <= ttl {
			continue
		}
		_ = os.Remove(s.AbsPath(rec))
		delete(s.records, k)
		count++
	}

	if count > 0 {
		if err := s.flushLocked(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Records returns the records for one namespace sorted by name. An empty
// namespace returns every record, sorted by namespace then name.
func (s *Store) Records(namespace string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if namespace == "" || rec.Namespace == namespace {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Namespaces returns the distinct namespaces present in the manifest, sorted.
func (s *Store) Namespaces() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, rec := range s.records {
		seen[rec.Namespace] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for ns := range seen {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Info summarises one namespace's cache contents.
func (s *Store) Info(namespace string) Stats {
	stats := Stats{Namespace: namespace}
	for _, rec := range s.Records(namespace) {
		stats.Count++
		stats.TotalBytes += rec.Size
		if stats.Oldest.IsZero() || rec.FetchedAt.Before(stats.Oldest) {
			stats.Oldest = rec.FetchedAt
		}
		if rec.FetchedAt.After(stats.Newest) {
			stats.Newest = rec.FetchedAt
		}
	}
	return stats
}

// fingerprint returns the sha256 hex digest of data.
func fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

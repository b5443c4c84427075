package publisher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"emoji-sync/core/cache"

	"go.uber.org/zap"
)

// Config holds configuration for icon publishing.
type Config struct {
	// Directory is the site's icon tree root.
	Directory string `mapstructure:"directory" default:"overrides/assets/emojis"`
}

// Mirror uploads published icons to a secondary location (e.g. an S3
// bucket). Implementations live in core/storage.
type Mirror interface {
	Upload(ctx context.Context, objectName, filePath, contentType string) error
}

// Collision records two namespaces publishing the same bare emoji name.
type Collision struct {
	// Name is the colliding bare emoji name.
	Name string
	// Previous is the namespace that held the bare name before.
	Previous string
	// Winner is the namespace that now owns it.
	Winner string
}

// Publisher copies cached assets into the icon directory. It is owned by a
// single orchestrator pass per namespace; bare-name ownership is tracked
// across namespaces to detect collisions.
type Publisher struct {
	dir        string
	shortNames bool
	logger     *zap.Logger
	mirror     Mirror

	mu         sync.Mutex
	bareOwners map[string]string
	collisions []Collision
}

// New creates a Publisher writing into cfg.Directory. shortNames controls
// whether bare-name entries are published alongside namespaced ones.
func New(cfg Config, shortNames bool, logger *zap.Logger) *Publisher {
	return &Publisher{
		dir:        cfg.Directory,
		shortNames: shortNames,
		logger:     logger,
		bareOwners: make(map[string]string),
	}
}

// SetMirror enables uploading published icons to object storage.
func (p *Publisher) SetMirror(m Mirror) {
	p.mirror = m
}

// Publish writes one cached asset into the icon tree, returning the paths
// written. srcPath is the asset's absolute location in the cache.
func (p *Publisher) Publish(ctx context.Context, rec cache.Record, srcPath string) ([]string, error) {
	nsDir := filepath.Join(p.dir, rec.Namespace)
	if err := os.MkdirAll(nsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating icon directory: %w", err)
	}

	fileName := rec.Name + "." + rec.Ext()
	dest := filepath.Join(nsDir, fileName)
	if err := materialize(srcPath, dest); err != nil {
		return nil, fmt.Errorf("publishing %s/%s: %w", rec.Namespace, rec.Name, err)
	}
	written := []string{dest}

	if p.shortNames {
		barePath, err := p.publishBare(rec, srcPath, fileName)
		if err != nil {
			return written, err
		}
		written = append(written, barePath)
	}

	if p.mirror != nil {
		for _, path := range written {
			rel, err := filepath.Rel(p.dir, path)
			if err != nil {
				rel = filepath.Base(path)
			}
			if err := p.mirror.Upload(ctx, filepath.ToSlash(rel), path, rec.ContentType); err != nil {
				return written, fmt.Errorf("mirroring %s: %w", rel, err)
			}
		}
	}

	return written, nil
}

// publishBare writes the short-form entry, tracking ownership so a bare name
// claimed by two namespaces is recorded as a collision. Last writer wins.
func (p *Publisher) publishBare(rec cache.Record, srcPath, fileName string) (string, error) {
	p.mu.Lock()
	if owner, ok := p.bareOwners[rec.Name]; ok && owner != rec.Namespace {
		p.collisions = append(p.collisions, Collision{
			Name:     rec.Name,
			Previous: owner,
			Winner:   rec.Namespace,
		})
		p.logger.Warn("Bare emoji name collision",
			zap.String("name", rec.Name),
			zap.String("previous", owner),
			zap.String("winner", rec.Namespace),
		)
	}
	p.bareOwners[rec.Name] = rec.Namespace
	p.mu.Unlock()

	// A previous owner may have published under a different extension.
	stale, _ := filepath.Glob(filepath.Join(p.dir, rec.Name+".*"))
	for _, f := range stale {
		_ = os.Remove(f)
	}

	bare := filepath.Join(p.dir, fileName)
	if err := materialize(srcPath, bare); err != nil {
		return "", fmt.Errorf("publishing bare name %s: %w", rec.Name, err)
	}
	return bare, nil
}

// Collisions returns the bare-name collisions recorded so far.
func (p *Publisher) Collisions() []Collision {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Collision, len(p.collisions))
	copy(out, p.collisions)
	return out
}

// CleanNamespace removes one namespace's published subtree.
func (p *Publisher) CleanNamespace(namespace string) error {
	return os.RemoveAll(filepath.Join(p.dir, namespace))
}

// materialize links src to dst, falling back to a copy when hard links are
// not supported (e.g. across filesystems).
func materialize(src, dst string) error {
	_ = os.Remove(dst)
	if err := os.Link(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

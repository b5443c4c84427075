package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Mirror replicates published icons into an object storage bucket so that
// sites served from a CDN can reference the same paths.
type Mirror struct {
	client Client
	cfg    Config
	logger *zap.Logger
}

// NewMirror creates a mirror over an existing client.
func NewMirror(client Client, cfg Config, logger *zap.Logger) *Mirror {
	return &Mirror{client: client, cfg: cfg, logger: logger}
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (m *Mirror) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %q: %w", m.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.cfg.Bucket, minio.MakeBucketOptions{Region: m.cfg.Region}); err != nil {
		return fmt.Errorf("creating bucket %q: %w", m.cfg.Bucket, err)
	}
	m.logger.Info("Created mirror bucket", zap.String("bucket", m.cfg.Bucket))
	return nil
}

// Upload mirrors a local file under the configured prefix.
func (m *Mirror) Upload(ctx context.Context, objectName, filePath, contentType string) error {
	key := m.objectKey(objectName)
	_, err := m.client.FPutObject(ctx, m.cfg.Bucket, key, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("uploading %q: %w", key, err)
	}
	m.logger.Debug("Mirrored icon", zap.String("object", key))
	return nil
}

// Prune removes every mirrored object under the given namespace. An empty
// namespace removes everything under the configured prefix.
func (m *Mirror) Prune(ctx context.Context, namespace string) (int, error) {
	prefix := m.objectKey(namespace)
	if namespace != "" {
		prefix += "/"
	}

	removed := 0
	for obj := range m.client.ListObjects(ctx, m.cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return removed, fmt.Errorf("listing %q: %w", prefix, obj.Err)
		}
		if err := m.client.RemoveObject(ctx, m.cfg.Bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("removing %q: %w", obj.Key, err)
		}
		removed++
	}
	if removed > 0 {
		m.logger.Info("Pruned mirrored icons",
			zap.String("prefix", prefix),
			zap.Int("removed", removed))
	}
	return removed, nil
}

func (m *Mirror) objectKey(name string) string {
	prefix := strings.Trim(m.cfg.Prefix, "/")
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return path.Join(prefix, name)
}

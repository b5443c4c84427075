package publisher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"emoji-sync/core/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeAsset(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func record(namespace, name, ext string) cache.Record {
	return cache.Record{
		Namespace:   namespace,
		Name:        name,
		Path:        namespace + "/" + name + "." + ext,
		ContentType: "image/" + ext,
	}
}

func TestPublishNamespaced(t *testing.T) {
	iconsDir := t.TempDir()
	src := writeAsset(t, t.TempDir(), "wave.png", []byte("png"))

	p := New(Config{Directory: iconsDir}, false, zap.NewNop())

	written, err := p.Publish(context.Background(), record("slack", "wave", "png"), src)
	require.NoError(t, err)
	require.Len(t, written, 1)

	data, err := os.ReadFile(filepath.Join(iconsDir, "slack", "wave.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
}

func TestPublishShortForm(t *testing.T) {
	iconsDir := t.TempDir()
	src := writeAsset(t, t.TempDir(), "wave.png", []byte("png"))

	p := New(Config{Directory: iconsDir}, true, zap.NewNop())

	written, err := p.Publish(context.Background(), record("slack", "wave", "png"), src)
	require.NoError(t, err)
	require.Len(t, written, 2)

	assert.FileExists(t, filepath.Join(iconsDir, "slack", "wave.png"))
	assert.FileExists(t, filepath.Join(iconsDir, "wave.png"))
	assert.Empty(t, p.Collisions())
}

func TestBareNameCollision(t *testing.T) {
	iconsDir := t.TempDir()
	srcDir := t.TempDir()
	slackSrc := writeAsset(t, srcDir, "slack-wave.png", []byte("slack"))
	discordSrc := writeAsset(t, srcDir, "discord-wave.gif", []byte("discord"))

	p := New(Config{Directory: iconsDir}, true, zap.NewNop())

	_, err := p.Publish(context.Background(), record("slack", "wave", "png"), slackSrc)
	require.NoError(t, err)
	_, err = p.Publish(context.Background(), record("discord", "wave", "gif"), discordSrc)
	require.NoError(t, err)

	// Most recently processed namespace wins the bare name.
	data, err := os.ReadFile(filepath.Join(iconsDir, "wave.gif"))
	require.NoError(t, err)
	assert.Equal(t, []byte("discord"), data)

	// The loser's differently-extensioned bare file is gone.
	_, err = os.Stat(filepath.Join(iconsDir, "wave.png"))
	assert.True(t, os.IsNotExist(err))

	// Namespaced entries are unaffected.
	assert.FileExists(t, filepath.Join(iconsDir, "slack", "wave.png"))
	assert.FileExists(t, filepath.Join(iconsDir, "discord", "wave.gif"))

	collisions := p.Collisions()
	require.Len(t, collisions, 1)
	assert.Equal(t, Collision{Name: "wave", Previous: "slack", Winner: "discord"}, collisions[0])
}

func TestRepublishSameNamespaceIsNotCollision(t *testing.T) {
	iconsDir := t.TempDir()
	src := writeAsset(t, t.TempDir(), "wave.png", []byte("png"))

	p := New(Config{Directory: iconsDir}, true, zap.NewNop())

	_, err := p.Publish(context.Background(), record("slack", "wave", "png"), src)
	require.NoError(t, err)
	_, err = p.Publish(context.Background(), record("slack", "wave", "png"), src)
	require.NoError(t, err)

	assert.Empty(t, p.Collisions())
}

func TestCleanNamespace(t *testing.T) {
	iconsDir := t.TempDir()
	src := writeAsset(t, t.TempDir(), "wave.png", []byte("png"))

	p := New(Config{Directory: iconsDir}, false, zap.NewNop())
	_, err := p.Publish(context.Background(), record("slack", "wave", "png"), src)
	require.NoError(t, err)

	require.NoError(t, p.CleanNamespace("slack"))
	_, err = os.Stat(filepath.Join(iconsDir, "slack"))
	assert.True(t, os.IsNotExist(err))
}

type fakeMirror struct {
	uploads []string
	fail    error
}

func (m *fakeMirror) Upload(_ context.Context, objectName, _ string, _ string) error {
	if m.fail != nil {
		return m.fail
	}
	m.uploads = append(m.uploads, objectName)
	return nil
}

func TestMirrorUploads(t *testing.T) {
	iconsDir := t.TempDir()
	src := writeAsset(t, t.TempDir(), "wave.png", []byte("png"))

	mirror := &fakeMirror{}
	p := New(Config{Directory: iconsDir}, true, zap.NewNop())
	p.SetMirror(mirror)

	_, err := p.Publish(context.Background(), record("slack", "wave", "png"), src)
	require.NoError(t, err)

	assert.Equal(t, []string{"slack/wave.png", "wave.png"}, mirror.uploads)
}

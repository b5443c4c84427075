package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Config{Directory: t.TempDir(), TTLHours: 24}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestCommitAndLookup(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Commit("slack", "wave", "png", []byte("png-bytes"), "image/png", "https://e/wave.png")
	require.NoError(t, err)
	assert.Equal(t, "slack/wave.png", rec.Path)
	assert.Equal(t, int64(9), rec.Size)
	assert.Equal(t, "png", rec.Ext())

	// File materialized at the deterministic layout path.
	data, err := os.ReadFile(filepath.Join(s.Dir(), "slack", "wave.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	got, freshness := s.Lookup("slack", "wave", time.Hour)
	assert.Equal(t, Fresh, freshness)
	assert.Equal(t, rec.Fingerprint, got.Fingerprint)
}

func TestLookupMissing(t *testing.T) {
	s := newTestStore(t)

	_, freshness := s.Lookup("slack", "nothing", time.Hour)
	assert.Equal(t, Missing, freshness)
}

func TestFreshnessBoundary(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Commit("slack", "wave", "png", []byte("x"), "image/png", "")
	require.NoError(t, err)

	// Well within TTL.
	_, freshness := s.Lookup("slack", "wave", time.Hour)
	assert.Equal(t, Fresh, freshness)

	// Shrinking the TTL past the record's age flips the result to Stale
	// without any other state change.
	_, freshness = s.Lookup("slack", "wave", -time.Second)
	assert.Equal(t, Stale, freshness)

	rec, freshness := s.Lookup("slack", "wave", time.Hour)
	assert.Equal(t, Fresh, freshness)
	assert.NotEmpty(t, rec.Fingerprint)
}

func TestCorruptionSelfHeals(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Commit("slack", "wave", "png", []byte("original"), "image/png", "")
	require.NoError(t, err)

	// Tamper with the cached file behind the manifest's back.
	require.NoError(t, os.WriteFile(s.AbsPath(rec), []byte("tampered"), 0o644))

	_, freshness := s.Lookup("slack", "wave", time.Hour)
	assert.Equal(t, Missing, freshness)

	// The record is gone for good, not just for this call.
	_, freshness = s.Lookup("slack", "wave", time.Hour)
	assert.Equal(t, Missing, freshness)
}

func TestMissingFileSelfHeals(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.Commit("slack", "wave", "png", []byte("original"), "image/png", "")
	require.NoError(t, err)
	require.NoError(t, os.Remove(s.AbsPath(rec)))

	_, freshness := s.Lookup("slack", "wave", time.Hour)
	assert.Equal(t, Missing, freshness)
}

func TestCommitLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Commit("slack", "wave", "png", []byte("bytes"), "image/png", "")
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(s.Dir(), "slack"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "wave.png", entries[0].Name())
}

func TestRecommitChangesExtension(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Commit("slack", "wave", "png", []byte("v1"), "image/png", "")
	require.NoError(t, err)

	rec, err := s.Commit("slack", "wave", "gif", []byte("v2"), "image/gif", "")
	require.NoError(t, err)
	assert.Equal(t, "slack/wave.gif", rec.Path)

	// The old .png file is cleaned up.
	_, err = os.Stat(filepath.Join(s.Dir(), "slack", "wave.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestManifestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewStore(Config{Directory: dir}, zap.NewNop())
	require.NoError(t, err)
	_, err = s1.Commit("slack", "wave", "png", []byte("bytes"), "image/png", "https://e/w.png")
	require.NoError(t, err)

	s2, err := NewStore(Config{Directory: dir}, zap.NewNop())
	require.NoError(t, err)

	rec, freshness := s2.Lookup("slack", "wave", time.Hour)
	assert.Equal(t, Fresh, freshness)
	assert.Equal(t, "https://e/w.png", rec.SourceURL)
}

func TestCorruptManifestStartsFresh(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{not json"), 0o644))

	s, err := NewStore(Config{Directory: dir}, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, s.Records(""))
}

func TestEvict(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Commit("slack", "wave", "png", []byte("a"), "image/png", "")
	require.NoError(t, err)
	_, err = s.Commit("slack", "cat", "png", []byte("b"), "image/png", "")
	require.NoError(t, err)
	_, err = s.Commit("discord", "dog", "png", []byte("c"), "image/png", "")
	require.NoError(t, err)

	n, err := s.Evict("slack")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, freshness := s.Lookup("slack", "wave", time.Hour)
	assert.Equal(t, Missing, freshness)

	// Other namespaces are untouched.
	_, freshness = s.Lookup("discord", "dog", time.Hour)
	assert.Equal(t, Fresh, freshness)
}

func TestEvictAll(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Commit("slack", "wave", "png", []byte("a"), "image/png", "")
	require.NoError(t, err)
	_, err = s.Commit("discord", "dog", "png", []byte("b"), "image/png", "")
	require.NoError(t, err)

	n, err := s.EvictAll()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, s.Records(""))
}

func TestCleanStale(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Commit("slack", "old", "png", []byte("a"), "image/png", "")
	require.NoError(t, err)

	// Zero TTL makes everything stale.
	n, err := s.CleanStale(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, freshness := s.Lookup("slack", "old", time.Hour)
	assert.Equal(t, Missing, freshness)
}

func TestRecordsAndNamespaces(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Commit("slack", "wave", "png", []byte("a"), "image/png", "")
	require.NoError(t, err)
	_, err = s.Commit("slack", "cat", "png", []byte("b"), "image/png", "")
	require.NoError(t, err)
	_, err = s.Commit("discord", "dog", "png", []byte("c"), "image/png", "")
	require.NoError(t, err)

	recs := s.Records("slack")
	require.Len(t, recs, 2)
	assert.Equal(t, "cat", recs[0].Name)
	assert.Equal(t, "wave", recs[1].Name)

	all := s.Records("")
	require.Len(t, all, 3)
	assert.Equal(t, "discord", all[0].Namespace)

	assert.Equal(t, []string{"discord", "slack"}, s.Namespaces())
}

func TestInfo(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Commit("slack", "wave", "png", []byte("aaaa"), "image/png", "")
	require.NoError(t, err)
	_, err = s.Commit("slack", "cat", "png", []byte("bb"), "image/png", "")
	require.NoError(t, err)

	stats := s.Info("slack")
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, int64(6), stats.TotalBytes)
	assert.False(t, stats.Oldest.IsZero())
	assert.False(t, stats.Newest.Before(stats.Oldest))
}

func TestManifestShape(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Commit("slack", "wave", "png", []byte("bytes"), "image/png", "")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(s.Dir(), "manifest.json"))
	require.NoError(t, err)

	var m struct {
		Version int               `json:"version"`
		Records map[string]Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, 1, m.Version)
	assert.Contains(t, m.Records, "slack/wave")
}

func TestExtForContentType(t *testing.T) {
	assert.Equal(t, "png", ExtForContentType("image/png"))
	assert.Equal(t, "gif", ExtForContentType("image/gif"))
	assert.Equal(t, "jpg", ExtForContentType("image/jpeg"))
	assert.Equal(t, "svg", ExtForContentType("image/svg+xml; charset=utf-8"))
	assert.Equal(t, "", ExtForContentType("application/octet-stream"))
}

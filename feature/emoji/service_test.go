package emoji

import (
	"context"
	"testing"

	"emoji-sync/core/cache"
	"emoji-sync/core/config"
	"emoji-sync/core/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	enabled := true
	disabled := false
	return &config.Config{
		Cache: cache.Config{Directory: t.TempDir(), TTLHours: 24},
		Emojis: config.EmojiOptions{
			MaxSizeKB:       500,
			DownloadTimeout: 5,
			PrefixFormat:    "namespace-name",
		},
		Providers: []provider.Declaration{
			{Type: "slack", Namespace: "work", TokenEnv: "TEST_SLACK_TOKEN", Enabled: &enabled},
			{Type: "discord", Namespace: "gaming", TokenEnv: "TEST_DISCORD_TOKEN", TenantEnv: "TEST_GUILD_ID", Enabled: &disabled},
		},
	}
}

func testService(t *testing.T) (*Service, *cache.Store) {
	t.Helper()
	cfg := testConfig(t)
	store, err := cache.NewStore(cfg.Cache, zap.NewNop())
	require.NoError(t, err)
	return NewService(cfg, store, zap.NewNop()), store
}

func TestTargetsResolvesEnabledProviders(t *testing.T) {
	t.Setenv("TEST_SLACK_TOKEN", "xoxb-test")

	svc, _ := testService(t)
	targets, err := svc.Targets("")
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, provider.KindSlack, targets[0].Provider.Identify().Kind)
	assert.Equal(t, "work", targets[0].Provider.Identify().Namespace)
}

func TestTargetsScope(t *testing.T) {
	t.Setenv("TEST_SLACK_TOKEN", "xoxb-test")

	svc, _ := testService(t)

	targets, err := svc.Targets("work")
	require.NoError(t, err)
	require.Len(t, targets, 1)

	_, err = svc.Targets("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider namespace")

	_, err = svc.Targets("gaming")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestTargetsMissingToken(t *testing.T) {
	t.Setenv("TEST_SLACK_TOKEN", "")

	svc, _ := testService(t)
	_, err := svc.Targets("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_SLACK_TOKEN")
}

func TestCacheInfoAndRecords(t *testing.T) {
	svc, store := testService(t)

	_, err := store.Commit("work", "wave", "png", []byte("png-bytes"), "image/png", "https://example.com/wave.png")
	require.NoError(t, err)
	_, err = store.Commit("work", "party", "gif", []byte("gif-bytes"), "image/gif", "https://example.com/party.gif")
	require.NoError(t, err)

	stats := svc.CacheInfo()
	require.Len(t, stats, 1)
	assert.Equal(t, "work", stats[0].Namespace)
	assert.Equal(t, 2, stats[0].Count)

	records := svc.Records("work")
	require.Len(t, records, 2)
	assert.Equal(t, "party", records[0].Name)
	assert.Equal(t, "wave", records[1].Name)

	removed, err := svc.Evict("work")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Empty(t, svc.Records("work"))
}

func TestValidateEnvOnly(t *testing.T) {
	t.Setenv("TEST_SLACK_TOKEN", "")

	svc, _ := testService(t)
	report := svc.Validate(context.Background(), false)
	assert.Equal(t, []string{"TEST_SLACK_TOKEN"}, report.MissingEnv)
	assert.Empty(t, report.Providers)
	assert.False(t, report.OK())

	t.Setenv("TEST_SLACK_TOKEN", "xoxb-test")
	report = svc.Validate(context.Background(), false)
	assert.Empty(t, report.MissingEnv)
	assert.True(t, report.OK())
}

func TestSyncUnknownScope(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.Sync(context.Background(), "nope", false, false)
	require.Error(t, err)
}

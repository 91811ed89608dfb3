package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return v
}

func TestNewsDefaults(t *testing.T) {
	cfg, err := newsFrom(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.RetentionDays)
	assert.Equal(t, 0.8, cfg.SimilarityThreshold)
	assert.Equal(t, time.Hour, cfg.FetchInterval())
	assert.Equal(t, "Asia/Taipei", cfg.Timezone)
	assert.Equal(t, "data", cfg.DataFolder)
	assert.Equal(t, []string{"yahoo"}, cfg.Sources)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestNewsOverrides(t *testing.T) {
	cfg, err := newsFrom(newViper(t, `
news:
  retention_days: 3
  similarity_threshold: 0.9
  fetch_interval_seconds: 600
  sources: "yahoo, google"
  request_timeout: 30s
`))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.RetentionDays)
	assert.Equal(t, 72*time.Hour, cfg.Retention())
	assert.Equal(t, 0.9, cfg.SimilarityThreshold)
	assert.Equal(t, 10*time.Minute, cfg.FetchInterval())
	assert.Equal(t, []string{"yahoo", "google"}, cfg.Sources)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestNewsValidation(t *testing.T) {
	_, err := newsFrom(newViper(t, "news:\n  similarity_threshold: 1.5\n"))
	assert.Error(t, err)

	_, err = newsFrom(newViper(t, "news:\n  fetch_interval_seconds: 0\n"))
	assert.Error(t, err)

	_, err = newsFrom(newViper(t, "news:\n  retention_days: -1\n"))
	assert.Error(t, err)
}

func TestLocationFallback(t *testing.T) {
	loc := Location("Nowhere/Invalid")
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 8*3600, offset)
}

func TestNewsEnvOverrides(t *testing.T) {
	t.Setenv("NEWS_RETENTION_DAYS", "9")
	t.Setenv("NEWS_SIMILARITY_THRESHOLD", "0.65")
	t.Setenv("NEWS_FETCH_INTERVAL_SECONDS", "120")
	t.Setenv("NEWS_SOURCES", "yahoo,baha")
	t.Setenv("NEWS_REQUEST_TIMEOUT", "5s")

	cfg, err := newsFrom(newViper(t, "news:\n  retention_days: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.RetentionDays, "environment wins over config.yaml")
	assert.Equal(t, 0.65, cfg.SimilarityThreshold)
	assert.Equal(t, 2*time.Minute, cfg.FetchInterval())
	assert.Equal(t, []string{"yahoo", "baha"}, cfg.Sources)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestNewsEnvOverrideIsValidated(t *testing.T) {
	t.Setenv("NEWS_SIMILARITY_THRESHOLD", "2")

	_, err := newsFrom(newViper(t, ""))
	assert.Error(t, err)
}

func TestOpenAIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := openAIFrom(newViper(t, ""))
	assert.Error(t, err)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_CHAT_MODEL", "gpt-4o")
	cfg, err := openAIFrom(newViper(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "gpt-4o", cfg.ChatModel)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
}

func TestForumEnvOverrides(t *testing.T) {
	t.Setenv("FORUM_TAGS", "國際,科技")
	t.Setenv("FORUM_LAYOUT", "gallery")

	cfg, err := forumFrom(newViper(t, "forum:\n  topic: 每日新聞\n"))
	require.NoError(t, err)
	assert.Equal(t, "每日新聞", cfg.Topic)
	assert.Equal(t, []string{"國際", "科技"}, cfg.Tags)
	assert.Equal(t, "gallery", cfg.Layout)
}

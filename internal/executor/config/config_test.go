package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"
	cfg.Database.Host = "localhost"
	cfg.Database.User = "intel"
	cfg.Database.Password = "secret"
	cfg.AI.Provider = "gemini"
	cfg.Gemini.APIKey = "key"
	cfg.Gemini.MaxRequestPerMinute = 15
	cfg.Enrichment.BatchSize = 10
	cfg.Ingestion.SummaryMaxLength = 2000
	return cfg
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("missing store credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Password = ""
		cfg.Database.Host = ""

		err := cfg.Validate()
		require.ErrorIs(t, err, ErrMissingConfig)
		assert.Contains(t, err.Error(), "database.host")
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("missing analysis credential", func(t *testing.T) {
		cfg := validConfig()
		cfg.Gemini.APIKey = ""
		require.ErrorIs(t, cfg.Validate(), ErrMissingConfig)
	})

	t.Run("openai key checked when selected", func(t *testing.T) {
		cfg := validConfig()
		cfg.AI.Provider = "openai"
		cfg.OpenAI.MaxRequestPerMinute = 60
		err := cfg.Validate()
		require.ErrorIs(t, err, ErrMissingConfig)
		assert.Contains(t, err.Error(), "openai.api_key")
	})

	t.Run("mongo needs uri", func(t *testing.T) {
		cfg := validConfig()
		cfg.Store.Driver = "mongo"
		err := cfg.Validate()
		require.ErrorIs(t, err, ErrMissingConfig)
		assert.Contains(t, err.Error(), "mongo.uri")
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := validConfig()
		cfg.AI.Provider = "llama"
		assert.Error(t, cfg.Validate())
	})

	t.Run("telegram enabled without token", func(t *testing.T) {
		cfg := validConfig()
		cfg.Telegram.Enabled = true
		require.ErrorIs(t, cfg.Validate(), ErrMissingConfig)
	})
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("DATABASE_USER", "intel")
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("ENRICHMENT_BATCH_SIZE", "5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "gemini-key", cfg.Gemini.APIKey)
	assert.Equal(t, 5, cfg.Enrichment.BatchSize)
	assert.Equal(t, 2000, cfg.Ingestion.SummaryMaxLength)
	assert.Equal(t, time.Second, cfg.Enrichment.Delay)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Len(t, cfg.Ingestion.Feeds, len(DefaultFeeds))
	require.NoError(t, cfg.Validate())
}

func TestFeedURLs(t *testing.T) {
	cfg := &Config{}
	cfg.Ingestion.Feeds = []string{" https://a.example/feed ", ""}
	cfg.Ingestion.GoogleNewsQueries = []string{"Ghana Real Estate Market"}
	cfg.Ingestion.GoogleNewsLocale = "hl=en-GH&gl=GH&ceid=GH:en"

	assert.Equal(t, []string{
		"https://a.example/feed",
		"https://news.google.com/rss/search?q=Ghana+Real+Estate+Market&hl=en-GH&gl=GH&ceid=GH:en",
	}, cfg.FeedURLs())
}

func TestIsGoogleNewsFeed(t *testing.T) {
	cfg := &Config{}
	cfg.Ingestion.GoogleNewsQueries = []string{"Accra housing"}
	cfg.Ingestion.GoogleNewsLocale = "hl=en-GH&gl=GH&ceid=GH:en"

	feeds := cfg.FeedURLs()
	require.Len(t, feeds, 1)
	assert.True(t, IsGoogleNewsFeed(feeds[0]))
	assert.False(t, IsGoogleNewsFeed("https://www.myjoyonline.com/feed"))
	assert.False(t, IsGoogleNewsFeed("https://news.google.com/rss"))
}

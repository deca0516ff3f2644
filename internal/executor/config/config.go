package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang-market-intel/pkg/common"
	"golang-market-intel/pkg/config"
)

// ErrMissingConfig is returned by Validate when a required setting is absent.
var ErrMissingConfig = errors.New("missing required configuration")

// Executor holds settings shared by every job run.
type Executor struct {
	RunTimeout time.Duration `mapstructure:"run_timeout"`
	LockTTL    time.Duration `mapstructure:"lock_ttl"`
}

// Ingestion holds the feed poller configuration.
type Ingestion struct {
	Schedule             string        `mapstructure:"schedule"`
	Feeds                []string      `mapstructure:"feeds"`
	GoogleNewsQueries    []string      `mapstructure:"google_news_queries"`
	GoogleNewsLocale     string        `mapstructure:"google_news_locale"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	UserAgent            string        `mapstructure:"user_agent"`
	SummaryMaxLength     int           `mapstructure:"summary_max_length"`
	MaxConcurrentFeeds   int           `mapstructure:"max_concurrent_feeds"`
	DedupCacheTTL        time.Duration `mapstructure:"dedup_cache_ttl"`
	BackfillEmptySummary bool          `mapstructure:"backfill_empty_summary"`
}

// Enrichment holds the enrichment worker configuration.
type Enrichment struct {
	Schedule  string        `mapstructure:"schedule"`
	BatchSize int           `mapstructure:"batch_size"`
	Delay     time.Duration `mapstructure:"delay"`
}

// AI selects and bounds the analysis provider.
type AI struct {
	Provider       string        `mapstructure:"provider"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// OpenAI holds the configuration for an OpenAI-compatible chat completions API.
type OpenAI struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the execution service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Store      config.Store    `mapstructure:"store"`
	Database   config.Database `mapstructure:"database"`
	Mongo      config.Mongo    `mapstructure:"mongo"`
	Redis      config.Redis    `mapstructure:"redis"`
	Executor   Executor        `mapstructure:"executor"`
	Ingestion  Ingestion       `mapstructure:"ingestion"`
	Enrichment Enrichment      `mapstructure:"enrichment"`
	AI         AI              `mapstructure:"ai"`
	Gemini     Gemini          `mapstructure:"gemini"`
	OpenAI     OpenAI          `mapstructure:"openai"`
	Telegram   Telegram        `mapstructure:"telegram"`
}

// DefaultFeeds is the built-in list of Ghanaian news and business feeds.
var DefaultFeeds = []string{
	"https://www.myjoyonline.com/feed",
	"https://ghheadlines.com/rss",
	"https://www.ghanaiantimes.com.gh/feed",
	"https://accramail.com/feed",
	"https://theheraldghana.com/feed",
	"https://jbklutse.com/feed",
	"https://akonnornews.com/feed",
	"https://ghstandard.com/feed",
	"https://adomonline.com/feed",
	"https://mfidie.com/feed",
	"https://liveghanatv.com/feed",
	"https://afiaghana.com/feed",
	"https://successafrica.info/feed",
	"https://enewsghana.com/feed",
	"https://adwoaadubianews.com/feed",
	"https://adesawyerr.com/feed",
	"https://fifty7tech.com/feed",
	"https://ghnewsfile.com/feed",
	"https://dailynewsghana.com/feed",
	"https://aptnewsghana.com/index.php/feed",
	"https://impelnews.net/feed",
	"https://housinginghana.com/feed.xml",
	"https://rss.modernghana.com/news.xml",
	"https://rss.modernghana.com/twitterfeed.xml",
	"https://citibusinessnews.com/feed",
	"https://www.ghanaweb.com/GhanaHomePage/business/rss.xml",
	"https://www.businessghana.com/rss/news.php",
	"https://thebftonline.com/feed/",
	"https://norvanreports.com/feed/",
	"https://www.graphic.com.gh/business/business-news.feed",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                         "market-intel-executor",
		"redis.enabled":                    false,
		"redis.host":                       "localhost",
		"redis.port":                       6379,
		"redis.password":                   "",
		"redis.db":                         0,
		"redis.pool_size":                  5,
		"executor.run_timeout":             30 * time.Minute,
		"executor.lock_ttl":                45 * time.Minute,
		"ingestion.schedule":               "*/30 * * * *",
		"ingestion.feeds":                  DefaultFeeds,
		"ingestion.google_news_queries":    []string{"Ghana Real Estate Market"},
		"ingestion.google_news_locale":     "hl=en-GH&gl=GH&ceid=GH:en",
		"ingestion.request_timeout":        20 * time.Second,
		"ingestion.user_agent":             common.DefaultUserAgent,
		"ingestion.summary_max_length":     2000,
		"ingestion.max_concurrent_feeds":   1,
		"ingestion.dedup_cache_ttl":        6 * time.Hour,
		"ingestion.backfill_empty_summary": false,
		"enrichment.schedule":              "*/10 * * * *",
		"enrichment.batch_size":            10,
		"enrichment.delay":                 time.Second,
		"ai.provider":                      "gemini",
		"ai.request_timeout":               60 * time.Second,
		"gemini.api_key":                   "",
		"gemini.model":                     "gemini-2.0-flash",
		"gemini.max_request_per_minute":    15,
		"openai.api_key":                   "",
		"openai.base_url":                  "https://api.openai.com/v1/chat/completions",
		"openai.model":                     "gpt-4o-mini",
		"openai.max_request_per_minute":    60,
		"telegram.enabled":                 false,
		"telegram.bot_token":               "",
		"telegram.chat_id":                 0,
	}
}

// Load loads the executor configuration from the given path and the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, config.StoreDefaults, defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every credential needed before work begins is present.
func (c *Config) Validate() error {
	var missing []string

	switch c.Store.Driver {
	case "postgres":
		if c.Database.Host == "" {
			missing = append(missing, "database.host")
		}
		if c.Database.User == "" {
			missing = append(missing, "database.user")
		}
		if c.Database.Password == "" {
			missing = append(missing, "database.password")
		}
	case "mongo":
		if c.Mongo.URI == "" {
			missing = append(missing, "mongo.uri")
		}
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}

	switch c.AI.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			missing = append(missing, "gemini.api_key")
		}
		if c.Gemini.MaxRequestPerMinute <= 0 {
			return fmt.Errorf("gemini.max_request_per_minute must be positive")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			missing = append(missing, "openai.api_key")
		}
		if c.OpenAI.MaxRequestPerMinute <= 0 {
			return fmt.Errorf("openai.max_request_per_minute must be positive")
		}
	default:
		return fmt.Errorf("unsupported ai provider %q", c.AI.Provider)
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			missing = append(missing, "telegram.bot_token")
		}
		if c.Telegram.ChatID == 0 {
			missing = append(missing, "telegram.chat_id")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	if c.Enrichment.BatchSize <= 0 {
		return fmt.Errorf("enrichment.batch_size must be positive")
	}
	if c.Ingestion.SummaryMaxLength <= 0 {
		return fmt.Errorf("ingestion.summary_max_length must be positive")
	}
	return nil
}

// GoogleNewsSearchURL is the base of the Google News search feeds built from ingestion.google_news_queries.
const GoogleNewsSearchURL = "https://news.google.com/rss/search"

// IsGoogleNewsFeed reports whether feedURL is a Google News search feed.
func IsGoogleNewsFeed(feedURL string) bool {
	return strings.HasPrefix(strings.TrimSpace(feedURL), GoogleNewsSearchURL+"?")
}

// FeedURLs returns the configured feeds followed by one Google News search feed per query.
func (c *Config) FeedURLs() []string {
	feeds := make([]string, 0, len(c.Ingestion.Feeds)+len(c.Ingestion.GoogleNewsQueries))
	for _, feed := range c.Ingestion.Feeds {
		if feed = strings.TrimSpace(feed); feed != "" {
			feeds = append(feeds, feed)
		}
	}
	for _, query := range c.Ingestion.GoogleNewsQueries {
		if query = strings.TrimSpace(query); query == "" {
			continue
		}
		feeds = append(feeds, fmt.Sprintf("%s?q=%s&%s", GoogleNewsSearchURL, url.QueryEscape(query), c.Ingestion.GoogleNewsLocale))
	}
	return feeds
}

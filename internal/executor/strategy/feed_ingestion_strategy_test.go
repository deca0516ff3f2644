package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/executor/classifier"
	"golang-market-intel/internal/executor/config"
	"golang-market-intel/internal/executor/dto"
	"golang-market-intel/pkg/logger"
)

const businessFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Accra Business Daily</title>
  <link>https://accra.example</link>
  <item>
    <title>Cedi depreciates against Dollar</title>
    <link> https://accra.example/cedi </link>
    <description>&lt;p&gt;The &lt;b&gt;cedi&lt;/b&gt; fell again.&lt;/p&gt;</description>
    <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>New apartment complex opens in Accra</title>
    <link>https://accra.example/apartments</link>
    <description>Units go on sale next month.</description>
  </item>
  <item>
    <title>Local football match results</title>
    <link>https://accra.example/football</link>
    <description>Hearts beat Kotoko.</description>
  </item>
  <item>
    <title>Inflation eases in May</title>
    <description>No link on this one.</description>
  </item>
</channel>
</rss>`

const syndicatedFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title></title>
  <item>
    <title>Cedi depreciates against Dollar</title>
    <link>https://accra.example/cedi</link>
    <description>Syndicated copy.</description>
  </item>
</channel>
</rss>`

func newFeedServer(t *testing.T, feeds map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := feeds[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func newIngestionConfig(feeds ...string) *config.Config {
	cfg := &config.Config{}
	cfg.Ingestion.Feeds = feeds
	cfg.Ingestion.RequestTimeout = 5 * time.Second
	cfg.Ingestion.UserAgent = "test-agent"
	cfg.Ingestion.SummaryMaxLength = 2000
	cfg.Ingestion.DedupCacheTTL = time.Minute
	return cfg
}

func decodeIngestionReport(t *testing.T, out string) dto.IngestionReport {
	t.Helper()
	var report dto.IngestionReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	return report
}

func TestFeedIngestionArchivesRelevantEntries(t *testing.T) {
	server := newFeedServer(t, map[string]string{"/business": businessFeed})
	repo := newMemoryNewsRepo()
	fixed := time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)

	s := NewFeedIngestionStrategy(newIngestionConfig(server.URL+"/business"), logger.NewNop(), repo, classifier.Default())
	s.now = func() time.Time { return fixed }

	out, err := s.Execute(context.Background(), &entity.Job{Type: entity.JobTypeFeedIngestion})
	require.NoError(t, err)

	report := decodeIngestionReport(t, out)
	assert.Equal(t, 1, report.Feeds)
	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, 2, report.Relevant)
	assert.Equal(t, 1, report.Irrelevant)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 2, report.Archived)
	require.Len(t, report.FeedResults, 1)
	assert.Equal(t, dto.SUCCESS, report.FeedResults[0].Status)
	assert.Equal(t, "Accra Business Daily", report.FeedResults[0].Source)

	items := repo.all()
	require.Len(t, items, 2)

	apartments, cedi := items[0], items[1]
	assert.Equal(t, "https://accra.example/apartments", apartments.URL)
	assert.Equal(t, entity.CategoryRealEstate, apartments.Category)
	assert.Equal(t, fixed, apartments.PublishedAt, "missing dates fall back to ingestion time")

	assert.Equal(t, "https://accra.example/cedi", cedi.URL)
	assert.Equal(t, entity.CategoryEconomy, cedi.Category)
	assert.Equal(t, "The cedi fell again.", cedi.Summary)
	assert.Equal(t, "Accra Business Daily", cedi.Source)
	assert.Equal(t, entity.StatusPendingEnrichment, cedi.Status)
	assert.Equal(t, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), cedi.PublishedAt)
	assert.Contains(t, []string(cedi.MatchedSignals), "cedi")
	assert.NotEmpty(t, cedi.ID)

	for _, item := range items {
		assert.NotContains(t, item.Title, "football")
	}
}

func TestFeedIngestionIsIdempotentAcrossRuns(t *testing.T) {
	server := newFeedServer(t, map[string]string{"/business": businessFeed})
	repo := newMemoryNewsRepo()
	cfg := newIngestionConfig(server.URL + "/business")

	first := NewFeedIngestionStrategy(cfg, logger.NewNop(), repo, classifier.Default())
	_, err := first.Execute(context.Background(), nil)
	require.NoError(t, err)

	second := NewFeedIngestionStrategy(cfg, logger.NewNop(), repo, classifier.Default())
	out, err := second.Execute(context.Background(), nil)
	require.NoError(t, err)

	report := decodeIngestionReport(t, out)
	assert.Equal(t, 0, report.Archived)
	assert.Equal(t, 2, report.Duplicates)
	assert.Len(t, repo.all(), 2)
}

func TestFeedIngestionSameURLAcrossFeeds(t *testing.T) {
	server := newFeedServer(t, map[string]string{
		"/business":   businessFeed,
		"/syndicated": syndicatedFeed,
	})
	repo := newMemoryNewsRepo()
	cfg := newIngestionConfig(server.URL+"/business", server.URL+"/syndicated")

	s := NewFeedIngestionStrategy(cfg, logger.NewNop(), repo, classifier.Default())
	report := s.Ingest(context.Background(), cfg.FeedURLs())

	assert.Equal(t, 2, report.Archived)
	assert.Equal(t, 1, report.Duplicates)
	require.Len(t, report.FeedResults, 2)
	assert.Equal(t, server.URL+"/syndicated", report.FeedResults[1].Source, "untitled feeds use their URL as source")
	assert.Equal(t, 2, repo.lookups, "one store lookup per distinct URL")
}

func TestFeedIngestionIsolatesFailingSources(t *testing.T) {
	server := newFeedServer(t, map[string]string{"/business": businessFeed})
	repo := newMemoryNewsRepo()
	cfg := newIngestionConfig(server.URL+"/missing", server.URL+"/business")

	s := NewFeedIngestionStrategy(cfg, logger.NewNop(), repo, classifier.Default())
	report := s.Ingest(context.Background(), cfg.FeedURLs())

	assert.Equal(t, 2, report.Feeds)
	assert.Equal(t, 1, report.FailedFeeds)
	assert.Equal(t, dto.FAILED, report.FeedResults[0].Status)
	assert.NotEmpty(t, report.FeedResults[0].Error)
	assert.Equal(t, 2, report.Archived)
}

func TestFeedIngestionCountsStoreErrors(t *testing.T) {
	server := newFeedServer(t, map[string]string{"/business": businessFeed})

	t.Run("dedup lookup fails", func(t *testing.T) {
		repo := newMemoryNewsRepo()
		repo.existsErr = errors.New("connection reset")
		s := NewFeedIngestionStrategy(newIngestionConfig(server.URL+"/business"), logger.NewNop(), repo, classifier.Default())

		report := s.Ingest(context.Background(), []string{server.URL + "/business"})
		assert.Equal(t, 2, report.DedupErrors)
		assert.Equal(t, 0, report.Archived)
		assert.Empty(t, repo.all())
	})

	t.Run("insert fails", func(t *testing.T) {
		repo := newMemoryNewsRepo()
		repo.insertErr = errors.New("disk full")
		s := NewFeedIngestionStrategy(newIngestionConfig(server.URL+"/business"), logger.NewNop(), repo, classifier.Default())

		report := s.Ingest(context.Background(), []string{server.URL + "/business"})
		assert.Equal(t, 2, report.InsertErrors)
		assert.Equal(t, 0, report.Archived)
	})
}

func TestFeedIngestionPayloadOverridesFeeds(t *testing.T) {
	server := newFeedServer(t, map[string]string{"/syndicated": syndicatedFeed})
	repo := newMemoryNewsRepo()
	cfg := newIngestionConfig(server.URL + "/not-used")

	s := NewFeedIngestionStrategy(cfg, logger.NewNop(), repo, classifier.Default())
	payload := []byte(fmt.Sprintf(`{"feeds": [%q]}`, server.URL+"/syndicated"))
	out, err := s.Execute(context.Background(), &entity.Job{Type: entity.JobTypeFeedIngestion, Payload: payload})
	require.NoError(t, err)

	report := decodeIngestionReport(t, out)
	assert.Equal(t, 1, report.Feeds)
	assert.Equal(t, 1, report.Archived)

	_, err = s.Execute(context.Background(), &entity.Job{Payload: []byte("{")})
	assert.Error(t, err)
}

func TestFeedIngestionConcurrentFeeds(t *testing.T) {
	feeds := map[string]string{}
	var urls []string
	server := newFeedServer(t, feeds)
	for i := 0; i < 5; i++ {
		path := fmt.Sprintf("/feed-%d", i)
		feeds[path] = strings.ReplaceAll(syndicatedFeed, "https://accra.example/cedi", fmt.Sprintf("https://accra.example/cedi-%d", i))
		urls = append(urls, server.URL+path)
	}

	repo := newMemoryNewsRepo()
	cfg := newIngestionConfig(urls...)
	cfg.Ingestion.MaxConcurrentFeeds = 3

	s := NewFeedIngestionStrategy(cfg, logger.NewNop(), repo, classifier.Default())
	report := s.Ingest(context.Background(), urls)

	assert.Equal(t, 5, report.Feeds)
	assert.Equal(t, 5, report.Archived)
	require.Len(t, report.FeedResults, 5)
	for i, result := range report.FeedResults {
		assert.Equal(t, urls[i], result.URL)
	}
}

func TestFeedIngestionTruncatesSummary(t *testing.T) {
	long := strings.Repeat("₵", 50)
	feed := strings.Replace(syndicatedFeed, "Syndicated copy.", long, 1)
	server := newFeedServer(t, map[string]string{"/long": feed})
	repo := newMemoryNewsRepo()
	cfg := newIngestionConfig(server.URL + "/long")
	cfg.Ingestion.SummaryMaxLength = 10

	s := NewFeedIngestionStrategy(cfg, logger.NewNop(), repo, classifier.Default())
	s.Ingest(context.Background(), cfg.FeedURLs())

	items := repo.all()
	require.Len(t, items, 1)
	assert.Equal(t, strings.Repeat("₵", 10), items[0].Summary)
}

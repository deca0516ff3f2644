package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/executor/classifier"
	"golang-market-intel/internal/executor/config"
	"golang-market-intel/internal/executor/dto"
	"golang-market-intel/internal/executor/repository"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/utils"

	"github.com/mmcdole/gofeed"
)

// FeedIngestionPayload optionally overrides the configured feed list for one run.
type FeedIngestionPayload struct {
	Feeds []string `json:"feeds"`
}

// FeedIngestionStrategy polls every configured feed, keeps the relevant entries
// and archives the ones not seen before with status pending_enrichment.
type FeedIngestionStrategy struct {
	cfg        *config.Config
	logger     *logger.Logger
	repo       repository.NewsItemRepository
	classifier *classifier.Classifier
	gate       *DuplicateGate
	parser     *gofeed.Parser
	fetcher    ContentFetcher
	now        func() time.Time
}

// NewFeedIngestionStrategy creates a new instance of FeedIngestionStrategy.
func NewFeedIngestionStrategy(cfg *config.Config, log *logger.Logger, repo repository.NewsItemRepository, c *classifier.Classifier) *FeedIngestionStrategy {
	client := &http.Client{Timeout: cfg.Ingestion.RequestTimeout}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = cfg.Ingestion.UserAgent
	parser.RSSTranslator = &sourceRSSTranslator{}

	s := &FeedIngestionStrategy{
		cfg:        cfg,
		logger:     log,
		repo:       repo,
		classifier: c,
		gate:       NewDuplicateGate(repo, cfg.Ingestion.DedupCacheTTL),
		parser:     parser,
		now:        utils.TimeNowUTC,
	}
	if cfg.Ingestion.BackfillEmptySummary {
		s.fetcher = NewReadabilityFetcher(client, cfg.Ingestion.UserAgent, log)
	}
	return s
}

// GetType returns the job type this strategy handles.
func (s *FeedIngestionStrategy) GetType() entity.JobType {
	return entity.JobTypeFeedIngestion
}

// Execute runs one ingestion pass and returns the JSON report.
// Failures of a single feed or entry never fail the run.
func (s *FeedIngestionStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	feeds := s.cfg.FeedURLs()
	if job != nil && len(job.Payload) > 0 {
		var payload FeedIngestionPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return "", fmt.Errorf("failed to unmarshal job payload: %w", err)
		}
		if len(payload.Feeds) > 0 {
			feeds = payload.Feeds
		}
	}

	report := s.Ingest(ctx, feeds)

	resultJSON, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}
	return string(resultJSON), nil
}

// Ingest polls feeds in order, or through a bounded fan-out when
// ingestion.max_concurrent_feeds is above one.
func (s *FeedIngestionStrategy) Ingest(ctx context.Context, feeds []string) *dto.IngestionReport {
	report := &dto.IngestionReport{FeedResults: []dto.FeedResult{}}

	maxConcurrent := s.cfg.Ingestion.MaxConcurrentFeeds
	if maxConcurrent <= 1 {
		for _, feedURL := range feeds {
			if !utils.ShouldContinue(ctx, s.logger) {
				break
			}
			mergeFeed(report, s.processFeed(ctx, feedURL))
		}
		s.logReport(report)
		return report
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]*dto.IngestionReport, len(feeds))
	semaphore := make(chan struct{}, maxConcurrent)

	for i, feedURL := range feeds {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		wg.Add(1)
		utils.GoSafe(s.logger, func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			partial := s.processFeed(ctx, feedURL)
			mu.Lock()
			results[i] = partial
			mu.Unlock()
		})
	}
	wg.Wait()

	for _, partial := range results {
		if partial != nil {
			mergeFeed(report, partial)
		}
	}
	s.logReport(report)
	return report
}

// processFeed handles a single source and returns its counters with one FeedResult.
func (s *FeedIngestionStrategy) processFeed(ctx context.Context, feedURL string) *dto.IngestionReport {
	feedURL = strings.TrimSpace(feedURL)
	partial := &dto.IngestionReport{Feeds: 1}
	result := dto.FeedResult{URL: feedURL, Status: dto.SUCCESS}

	s.logger.Info("Processing RSS feed", logger.StringField("url", feedURL))

	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		s.logger.Error("Failed to parse RSS feed", logger.ErrorField(err), logger.StringField("url", feedURL))
		partial.FailedFeeds = 1
		result.Status = dto.FAILED
		result.Error = err.Error()
		partial.FeedResults = []dto.FeedResult{result}
		return partial
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = feedURL
	}
	result.Source = source

	googleNews := config.IsGoogleNewsFeed(feedURL)
	for _, item := range feed.Items {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		partial.Scanned++
		s.processItem(ctx, item, entrySource(item, source, googleNews), partial)
	}

	result.Scanned = partial.Scanned
	result.Archived = partial.Archived
	if partial.Scanned == 0 {
		result.Status = dto.SKIPPED
	}
	partial.FeedResults = []dto.FeedResult{result}

	s.logger.Info("Processed RSS feed",
		logger.StringField("url", feedURL),
		logger.IntField("scanned", partial.Scanned),
		logger.IntField("relevant", partial.Relevant),
		logger.IntField("archived", partial.Archived),
	)
	return partial
}

func (s *FeedIngestionStrategy) processItem(ctx context.Context, item *gofeed.Item, source string, partial *dto.IngestionReport) {
	if item == nil {
		partial.Invalid++
		return
	}
	link := strings.TrimSpace(item.Link)
	if link == "" {
		partial.Invalid++
		return
	}

	title := utils.SafeText(item.Title)
	summary := item.Description
	if strings.TrimSpace(summary) == "" {
		summary = item.Content
	}
	summary = utils.SafeText(summary)

	if summary == "" && s.fetcher != nil {
		text, err := s.fetcher.Fetch(ctx, link)
		if err != nil {
			s.logger.Warn("Failed to backfill summary", logger.ErrorField(err), logger.StringField("url", link))
		} else {
			summary = text
		}
	}
	summary = utils.TruncateRunes(summary, s.cfg.Ingestion.SummaryMaxLength)

	verdict := s.classifier.Classify(title, summary)
	if !verdict.Relevant {
		partial.Irrelevant++
		return
	}
	partial.Relevant++

	seen, err := s.gate.Seen(ctx, link)
	if err != nil {
		s.logger.Error("Failed to check duplicate news", logger.ErrorField(err), logger.StringField("url", link))
		partial.DedupErrors++
		return
	}
	if seen {
		partial.Duplicates++
		return
	}

	news := entity.NewsItem{
		Title:          title,
		URL:            link,
		Summary:        summary,
		Source:         source,
		PublishedAt:    utils.FirstTime(s.now(), item.PublishedParsed, item.UpdatedParsed),
		Category:       verdict.Category,
		Status:         entity.StatusPendingEnrichment,
		MatchedSignals: verdict.Signals,
		CreatedAt:      s.now(),
	}

	inserted, err := s.repo.CreateIgnoreConflict(ctx, &news)
	if err != nil {
		s.logger.Error("Failed to archive news item", logger.ErrorField(err), logger.StringField("url", link))
		partial.InsertErrors++
		return
	}
	s.gate.Remember(link)
	if !inserted {
		partial.Duplicates++
		return
	}

	partial.Archived++
	s.logger.Info("Archived news item",
		logger.StringField("title", news.Title),
		logger.StringField("category", string(news.Category)),
		logger.StringField("source", source),
	)
}

func (s *FeedIngestionStrategy) logReport(report *dto.IngestionReport) {
	s.logger.Info("Feed ingestion completed",
		logger.IntField("feeds", report.Feeds),
		logger.IntField("failed_feeds", report.FailedFeeds),
		logger.IntField("scanned", report.Scanned),
		logger.IntField("relevant", report.Relevant),
		logger.IntField("duplicates", report.Duplicates),
		logger.IntField("archived", report.Archived),
	)
}

func mergeFeed(report, partial *dto.IngestionReport) {
	report.Feeds += partial.Feeds
	report.FailedFeeds += partial.FailedFeeds
	report.Scanned += partial.Scanned
	report.Relevant += partial.Relevant
	report.Irrelevant += partial.Irrelevant
	report.Invalid += partial.Invalid
	report.Duplicates += partial.Duplicates
	report.Archived += partial.Archived
	report.DedupErrors += partial.DedupErrors
	report.InsertErrors += partial.InsertErrors
	report.FeedResults = append(report.FeedResults, partial.FeedResults...)
}

package dto

const (
	SUCCESS = "success"
	FAILED  = "failed"
	SKIPPED = "skipped"
)

// FeedResult summarizes one feed source within an ingestion run.
type FeedResult struct {
	URL      string `json:"url"`
	Source   string `json:"source,omitempty"`
	Status   string `json:"status"`
	Scanned  int    `json:"scanned"`
	Archived int    `json:"archived"`
	Error    string `json:"error,omitempty"`
}

// IngestionReport is the output of a feed ingestion run.
type IngestionReport struct {
	Feeds        int          `json:"feeds"`
	FailedFeeds  int          `json:"failed_feeds"`
	Scanned      int          `json:"scanned"`
	Relevant     int          `json:"relevant"`
	Irrelevant   int          `json:"irrelevant"`
	Invalid      int          `json:"invalid"`
	Duplicates   int          `json:"duplicates"`
	Archived     int          `json:"archived"`
	DedupErrors  int          `json:"dedup_errors"`
	InsertErrors int          `json:"insert_errors"`
	FeedResults  []FeedResult `json:"feed_results"`
}

// EnrichmentItemResult is the outcome of one enrichment cycle.
type EnrichmentItemResult struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Status    string  `json:"status"`
	Sentiment float64 `json:"sentiment,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// EnrichmentReport is the output of an enrichment run.
type EnrichmentReport struct {
	Selected int                    `json:"selected"`
	Enriched int                    `json:"enriched"`
	Failed   int                    `json:"failed"`
	Skipped  int                    `json:"skipped"`
	Items    []EnrichmentItemResult `json:"items"`
}

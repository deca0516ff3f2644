package dto

import (
	"time"
)

// NewsListRequest carries the query parameters of the news listing.
type NewsListRequest struct {
	Status   string `query:"status"`
	Category string `query:"category"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

// NewsResponse is the DTO for API responses containing a news item.
type NewsResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	Summary         string    `json:"summary"`
	Source          string    `json:"source"`
	PublishedAt     time.Time `json:"published_at"`
	Category        string    `json:"category"`
	Status          string    `json:"status"`
	SentimentScore  *float64  `json:"sentiment_score"`
	Insight         string    `json:"insight,omitempty"`
	MatchedSignals  []string  `json:"matched_signals"`
	EnrichmentError string    `json:"enrichment_error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewsListResponse is one page of news items.
type NewsListResponse struct {
	Items  []NewsResponse `json:"items"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// NewsStatsResponse counts news items per status.
type NewsStatsResponse struct {
	PendingEnrichment int64 `json:"pending_enrichment"`
	Enriched          int64 `json:"enriched"`
	Failed            int64 `json:"failed"`
	Total             int64 `json:"total"`
}

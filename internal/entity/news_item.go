package entity

import (
	"time"

	"github.com/lib/pq"
)

// Category is the topical bucket assigned to a news item at ingestion.
type Category string

const (
	CategoryRealEstate Category = "real_estate"
	CategoryEconomy    Category = "economy"
	CategoryGeneral    Category = "general"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryRealEstate, CategoryEconomy, CategoryGeneral:
		return true
	}
	return false
}

// NewsStatus drives stage-two eligibility. It only ever moves forward:
// pending_enrichment -> enriched, or pending_enrichment -> failed.
type NewsStatus string

const (
	StatusPendingEnrichment NewsStatus = "pending_enrichment"
	StatusEnriched          NewsStatus = "enriched"
	StatusFailed            NewsStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s NewsStatus) Valid() bool {
	switch s {
	case StatusPendingEnrichment, StatusEnriched, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s NewsStatus) Terminal() bool {
	return s == StatusEnriched || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s NewsStatus) CanTransitionTo(next NewsStatus) bool {
	return s == StatusPendingEnrichment && next.Terminal()
}

// NewsItem is an archived feed entry.
type NewsItem struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id" bson:"_id"`
	Title           string         `gorm:"not null" json:"title" bson:"title"`
	URL             string         `gorm:"uniqueIndex;not null" json:"url" bson:"url"`
	Summary         string         `gorm:"not null;default:''" json:"summary" bson:"summary"`
	Source          string         `gorm:"not null;default:''" json:"source" bson:"source"`
	PublishedAt     time.Time      `gorm:"not null" json:"published_at" bson:"published_at"`
	Category        Category       `gorm:"type:varchar(20);not null" json:"category" bson:"category"`
	Status          NewsStatus     `gorm:"type:varchar(30);not null;index" json:"status" bson:"status"`
	SentimentScore  float64        `gorm:"not null;default:0" json:"sentiment_score" bson:"sentiment_score"`
	AISummary       string         `gorm:"column:ai_summary;not null;default:''" json:"ai_summary" bson:"ai_summary"`
	MatchedSignals  pq.StringArray `gorm:"type:text[]" json:"matched_signals" bson:"matched_signals"`
	EnrichmentError string         `gorm:"not null;default:''" json:"enrichment_error,omitempty" bson:"enrichment_error"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at" bson:"updated_at"`
}

// TableName specifies the table name for the NewsItem model.
func (NewsItem) TableName() string {
	return "market_news"
}

package entity

import (
	"time"

	"gorm.io/datatypes"
)

// JobType identifies a pipeline stage.
type JobType string

const (
	JobTypeFeedIngestion  JobType = "feed_ingestion"
	JobTypeNewsEnrichment JobType = "news_enrichment"
)

// RunStatus is the outcome of a single job run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusSkipped   RunStatus = "skipped"
)

// Job describes one requested run. Payload optionally overrides stage settings.
type Job struct {
	Type    JobType
	Payload []byte
}

// RunHistory records one execution of a pipeline stage.
type RunHistory struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id" bson:"_id"`
	JobType      JobType        `gorm:"type:varchar(50);not null;index" json:"job_type" bson:"job_type"`
	Status       RunStatus      `gorm:"type:varchar(20);not null" json:"status" bson:"status"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at" bson:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	Output       datatypes.JSON `gorm:"type:jsonb" json:"output,omitempty" bson:"output,omitempty"`
	ErrorMessage string         `gorm:"not null;default:''" json:"error_message,omitempty" bson:"error_message"`
}

// TableName specifies the table name for the RunHistory model.
func (RunHistory) TableName() string {
	return "run_histories"
}

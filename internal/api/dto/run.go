package dto

import (
	"encoding/json"
	"time"
)

// RunResponse is the DTO for API responses containing a job run.
type RunResponse struct {
	ID           string          `json:"id"`
	JobType      string          `json:"job_type"`
	Status       string          `json:"status"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	Duration     int64           `json:"duration_ms"`
	Output       json.RawMessage `json:"output,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

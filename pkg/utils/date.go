package utils

import (
	"time"
)

// TimeNowUTC returns the current time in UTC. Stored timestamps are always UTC.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// FirstTime returns the first non-nil, non-zero time, in UTC, or fallback.
func FirstTime(fallback time.Time, candidates ...*time.Time) time.Time {
	for _, t := range candidates {
		if t != nil && !t.IsZero() {
			return t.UTC()
		}
	}
	return fallback.UTC()
}

// PrettyDate formats t for human-facing messages.
func PrettyDate(t time.Time) string {
	return t.UTC().Format("02 Jan 2006 15:04 MST")
}

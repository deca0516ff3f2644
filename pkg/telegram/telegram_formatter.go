package telegram

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/executor/dto"
	"golang-market-intel/pkg/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FormatRunSummaryForTelegram formats a finished run into a Markdown message.
func FormatRunSummaryForTelegram(history *entity.RunHistory) string {
	var sb strings.Builder

	var emoji string
	switch history.Status {
	case entity.RunStatusCompleted:
		emoji = "✅"
	case entity.RunStatusSkipped:
		emoji = "⏭"
	default:
		emoji = "📛"
	}

	sb.WriteString(fmt.Sprintf("%s *%s* %s\n", emoji, jobTitle(history.JobType), history.Status))
	sb.WriteString(fmt.Sprintf("🕒 %s", utils.PrettyDate(history.StartedAt)))
	if history.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf(" (%s)", history.CompletedAt.Sub(history.StartedAt).Round(time.Second)))
	}
	sb.WriteString("\n")

	switch history.JobType {
	case entity.JobTypeFeedIngestion:
		var report dto.IngestionReport
		if json.Unmarshal(history.Output, &report) == nil && report.Feeds > 0 {
			sb.WriteString(fmt.Sprintf("📡 Feeds: %d (%d failed)\n", report.Feeds, report.FailedFeeds))
			sb.WriteString(fmt.Sprintf("🔎 Scanned: %d, relevant: %d\n", report.Scanned, report.Relevant))
			sb.WriteString(fmt.Sprintf("🗄 Archived: %d, duplicates: %d\n", report.Archived, report.Duplicates))
			if errs := report.DedupErrors + report.InsertErrors; errs > 0 {
				sb.WriteString(fmt.Sprintf("⚠️ Store errors: %d\n", errs))
			}
		}
	case entity.JobTypeNewsEnrichment:
		var report dto.EnrichmentReport
		if json.Unmarshal(history.Output, &report) == nil {
			sb.WriteString(fmt.Sprintf("🧠 Selected: %d, enriched: %d, failed: %d, skipped: %d\n",
				report.Selected, report.Enriched, report.Failed, report.Skipped))
		}
	}

	if history.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("⚠️ %s\n", escapeMarkdown(history.ErrorMessage)))
	}
	return sb.String()
}

func jobTitle(jobType entity.JobType) string {
	switch jobType {
	case entity.JobTypeFeedIngestion:
		return "Feed ingestion"
	case entity.JobTypeNewsEnrichment:
		return "News enrichment"
	default:
		return escapeMarkdown(string(jobType))
	}
}

// escapeMarkdown keeps free text such as store errors from being read as Markdown entities.
func escapeMarkdown(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, text)
}

package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang-market-intel/internal/executor/dto"
	"golang-market-intel/pkg/common"
)

// ErrInvalidAnalysis marks a model reply that cannot be accepted as an analysis.
var ErrInvalidAnalysis = errors.New("invalid analysis response")

func BuildAnalyzeNewsPrompt(title, summary string) string {
	return fmt.Sprintf(`Analyze this news summary regarding the Ghanaian Market/Economy.

TITLE: %s
SUMMARY: %s

Task:
1. Determine the Sentiment Score (-1.0 to 1.0) where -1 is negative for economy/housing, 1 is positive.
2. Write a 1-sentence strategic insight for a Real Estate Investor.

Output JSON format only:
{
  "sentiment": 0.5,
  "insight": "Your insight here"
}
`, title, summary)
}

// ParseNewsAnalysis decodes a model reply into a validated analysis.
// A missing sentiment counts as neutral and a missing insight gets the
// placeholder text. Scores outside [-1, 1] are rejected.
func ParseNewsAnalysis(raw string) (*dto.NewsAnalysisResult, error) {
	rawJSON := stripCodeFence(raw)
	if rawJSON == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidAnalysis)
	}
	if !strings.HasPrefix(rawJSON, "{") {
		return nil, fmt.Errorf("%w: response is not a JSON object", ErrInvalidAnalysis)
	}

	var resp dto.NewsAnalysisResponse
	if err := json.Unmarshal([]byte(rawJSON), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}

	result := &dto.NewsAnalysisResult{Insight: common.DefaultInsight}
	if resp.Sentiment != nil {
		s := *resp.Sentiment
		if math.IsNaN(s) || s < -1 || s > 1 {
			return nil, fmt.Errorf("%w: sentiment %v out of range", ErrInvalidAnalysis, s)
		}
		result.Sentiment = s
	}
	if resp.Insight != nil && strings.TrimSpace(*resp.Insight) != "" {
		result.Insight = strings.TrimSpace(*resp.Insight)
	}
	return result, nil
}

// stripCodeFence removes a surrounding Markdown code fence and its language tag, if any.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

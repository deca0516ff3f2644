package repository

import (
	"context"
	"fmt"
	"time"

	"golang-market-intel/internal/executor/config"
	"golang-market-intel/internal/executor/dto"
	"golang-market-intel/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AnalysisRepository that uses the Google Gemini API.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AnalysisRepository, error) {
	if cfg.Gemini.MaxRequestPerMinute <= 0 {
		return nil, fmt.Errorf("gemini.max_request_per_minute must be positive")
	}
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		genAiClient:    genAiClient,
	}, nil
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"sentiment": {Type: genai.TypeNumber, Description: "Sentiment score from -1.0 to 1.0"},
		"insight":   {Type: genai.TypeString, Description: "One-sentence insight for a real estate investor"},
	},
	Required: []string{"sentiment", "insight"},
}

// AnalyzeNews scores one news item using the Gemini API.
func (r *geminiAIRepository) AnalyzeNews(ctx context.Context, title, summary string) (*dto.NewsAnalysisResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	prompt := BuildAnalyzeNewsPrompt(title, summary)
	r.logger.Debug("Request Gemini API", logger.StringField("model", r.cfg.Gemini.Model), logger.StringField("title", title))

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Gemini API: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content found in Gemini response", ErrInvalidAnalysis)
	}

	result, err := ParseNewsAnalysis(resp.Text())
	if err != nil {
		r.logger.Warn("Unusable Gemini response", logger.ErrorField(err), logger.StringField("response", resp.Text()))
		return nil, err
	}
	return result, nil
}

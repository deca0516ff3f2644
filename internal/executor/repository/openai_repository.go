package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-market-intel/internal/executor/config"
	"golang-market-intel/internal/executor/dto"
	"golang-market-intel/pkg/logger"

	"golang.org/x/time/rate"
)

type openaiAIRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewOpenAIRepository creates an AnalysisRepository backed by an OpenAI-compatible chat completions endpoint.
func NewOpenAIRepository(cfg *config.Config, logger *logger.Logger) (AnalysisRepository, error) {
	if cfg.OpenAI.MaxRequestPerMinute <= 0 {
		return nil, fmt.Errorf("openai.max_request_per_minute must be positive")
	}
	secondsPerRequest := time.Minute / time.Duration(cfg.OpenAI.MaxRequestPerMinute)

	return &openaiAIRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:            cfg,
		logger:         logger,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}, nil
}

func (r *openaiAIRepository) AnalyzeNews(ctx context.Context, title, summary string) (*dto.NewsAnalysisResult, error) {
	resp, err := r.sendRequest(ctx, BuildAnalyzeNewsPrompt(title, summary))
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.Content) == 0 {
		return nil, fmt.Errorf("%w: no content found in OpenAI response", ErrInvalidAnalysis)
	}
	return ParseNewsAnalysis(resp.Choices[0].Message.Content)
}

func (r *openaiAIRepository) sendRequest(ctx context.Context, prompt string) (*dto.OpenAIResponse, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.OpenAIRequest{
		Model: r.cfg.OpenAI.Model,
		Messages: []dto.Message{
			{Role: "system", Content: "You are an analyst of the Ghanaian economy and property market. Reply with JSON only."},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.2,
		ResponseFormat: &dto.ResponseFormat{Type: "json_object"},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.OpenAI.BaseURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.cfg.OpenAI.APIKey))

	r.logger.Debug("Sending request to OpenAI API", logger.StringField("url", r.cfg.OpenAI.BaseURL), logger.StringField("model", r.cfg.OpenAI.Model))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		r.logger.Error("Received non-OK response from OpenAI API", logger.IntField("status_code", resp.StatusCode), logger.StringField("model", r.cfg.OpenAI.Model))
		return nil, fmt.Errorf("received non-OK response from OpenAI API: %d - %s", resp.StatusCode, string(body))
	}

	var openaiResp dto.OpenAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	r.logger.Debug("OpenAI usage", logger.IntField("total_tokens", openaiResp.Usage.TotalTokens))
	return &openaiResp, nil
}

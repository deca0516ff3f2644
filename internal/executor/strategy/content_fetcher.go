package strategy

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/utils"

	"github.com/mauidude/go-readability"
)

// ContentFetcher downloads an article page and extracts its readable text.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type readabilityFetcher struct {
	client    *http.Client
	userAgent string
	logger    *logger.Logger
}

// NewReadabilityFetcher creates a ContentFetcher that uses go-readability on the fetched HTML.
func NewReadabilityFetcher(client *http.Client, userAgent string, log *logger.Logger) ContentFetcher {
	return &readabilityFetcher{client: client, userAgent: userAgent, logger: log}
}

func (f *readabilityFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for article: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch article, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read article body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %w", err)
	}
	return utils.StripMarkup(doc.Content()), nil
}

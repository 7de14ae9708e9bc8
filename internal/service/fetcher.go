package service

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// SourceFetcher retrieves the raw text lines of one corpus source. The
// markov engine never does I/O itself; this collaborator feeds it.
type SourceFetcher interface {
	FetchLines(ctx context.Context, url string) ([]string, error)
}

// HTTPSourceFetcher fetches corpus sources with plain HTTP GETs.
type HTTPSourceFetcher struct {
	client *http.Client
	logger *zap.Logger
}

// NewHTTPSourceFetcher creates a fetcher with the given per-request
// timeout.
func NewHTTPSourceFetcher(timeout time.Duration, logger *zap.Logger) *HTTPSourceFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSourceFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// FetchLines downloads url and splits the body into lines.
func (f *HTTPSourceFetcher) FetchLines(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", url, err)
	}

	f.logger.Debug("Fetched babble source",
		zap.String("url", url),
		zap.Int("lines", len(lines)),
	)
	return lines, nil
}

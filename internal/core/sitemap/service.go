package sitemap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prerender/internal/logger"
)

// Service resolves a URL source into the list of pages to prerender. The
// manual /api/sitemap endpoint and the scheduled recache path share this
// single implementation.
type Service struct {
	http *http.Client
	log  *logger.Logger
}

func New() *Service {
	return &Service{
		http: &http.Client{Timeout: 30 * time.Second},
		log:  logger.New("SitemapService"),
	}
}

// Resolve fetches the source and parses the payload.
func (s *Service) Resolve(ctx context.Context, sitemapURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build sitemap request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch sitemap: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sitemap: %w", err)
	}

	urls := Parse(string(body))
	s.log.LogInfof("resolved %d urls from %s", len(urls), sitemapURL)
	return urls, nil
}

// Parse accepts either a JSON object exposing a "urls" array or, failing
// that, newline-delimited entries. Blank lines and leading-# comments are
// dropped; entries are trimmed.
func Parse(payload string) []string {
	var structured struct {
		URLs []string `json:"urls"`
	}
	if err := json.Unmarshal([]byte(payload), &structured); err == nil && structured.URLs != nil {
		return structured.URLs
	}

	var urls []string
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls
}

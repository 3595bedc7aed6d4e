package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"prerender/internal/logger"
)

// Client fetches metadata records from an external provider reachable at
// base, queried as GET {base}?url={encoded}. Metadata is an enhancement, not
// a correctness requirement, so callers treat every failure as "no record".
type Client struct {
	base string
	http *http.Client
	log  *logger.Logger
}

func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  logger.New("MetaClient"),
	}
}

func (c *Client) Fetch(ctx context.Context, pageURL string) (*Record, error) {
	endpoint := fmt.Sprintf("%s?url=%s", c.base, url.QueryEscape(pageURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build meta request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meta fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Provider has no record for this URL; not an error.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("meta fetch: unexpected status %d", resp.StatusCode)
	}

	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode meta response: %w", err)
	}
	return &rec, nil
}

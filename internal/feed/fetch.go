// Package feed retrieves and parses the school portal's ICS timetable feed.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appLog "entsync/internal/log"
)

// Fetcher downloads the ICS feed over authenticated HTTP. Any failure is
// fatal to the run: a sync against a missing or truncated feed would compute
// a destructive diff.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with a bounded request timeout. A hung portal
// must fail the run rather than stall the scheduler slot.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch downloads the feed at url using HTTP Basic Auth.
//
// The portal rejects requests without a browser-looking User-Agent, hence
// the header. Non-2xx responses are returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, url, user, pass string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("feed URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(user, pass)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	appLog.Info("feed fetch start", "url", redactURL(url))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed fetch: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed fetch: %w", err)
	}

	appLog.Info("feed fetch success", "url", redactURL(url), "bytes", len(body))
	return body, nil
}

// redactURL hides the path and query of a feed URL for logging; portal feed
// URLs routinely embed per-user tokens.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := strings.Index(u, "://")
	if i == -1 {
		return "ics://...(redacted)"
	}

	j := strings.IndexByte(u[i+3:], '/')
	if j == -1 {
		return u + redactedSuffix
	}
	return u[:i+3+j] + redactedSuffix
}

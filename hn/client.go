package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hn402/metrics"
)

// DefaultBaseURL is the public Firebase API root.
const DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"

type Client struct {
	base string
	http *http.Client
	sem  chan struct{}
}

// NewClient returns a client against baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: 15 * time.Second},
		sem:  make(chan struct{}, 10), // concurrency limit of 10
	}
}

func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() { <-c.sem }

func (c *Client) get(ctx context.Context, url string, dst any) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// FeedIDs returns the ordered item IDs of a named feed. Ordering is
// determined upstream (rank for top, recency for new).
func (c *Client) FeedIDs(ctx context.Context, feed Feed) ([]int, error) {
	path, ok := endpoint[feed]
	if !ok {
		return nil, fmt.Errorf("unknown feed %q", feed)
	}

	var ids []int
	if err := c.get(ctx, fmt.Sprintf("%s/%s.json", c.base, path), &ids); err != nil {
		metrics.RecordUpstreamFetch("feed", "error")
		return nil, err
	}
	metrics.RecordUpstreamFetch("feed", "ok")
	return ids, nil
}

// Item fetches a single item by ID. A missing item (upstream body "null")
// returns (nil, nil).
func (c *Client) Item(ctx context.Context, id int) (*Item, error) {
	var item *Item
	if err := c.get(ctx, fmt.Sprintf("%s/item/%d.json", c.base, id), &item); err != nil {
		metrics.RecordUpstreamFetch("item", "error")
		return nil, err
	}
	metrics.RecordUpstreamFetch("item", "ok")
	return item, nil
}

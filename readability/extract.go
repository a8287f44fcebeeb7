// Package readability fetches a story's external URL and extracts
// reader-mode content from it.
package readability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	goreadability "github.com/go-shiori/go-readability"
)

const (
	fetchTimeout = 30 * time.Second
	maxBodySize  = 1 << 20 // 1 MiB
	userAgent    = "hn402/1.0"
)

// client is dedicated to article fetching: external sites get tighter
// transport controls than the upstream API client.
var client = &http.Client{
	Timeout: fetchTimeout,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
	},
}

// StatusError reports a non-OK response from the article's host, so
// callers can distinguish a page that is gone from a host that is broken.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch returned status %d", e.Code)
}

// Article holds extracted reader-mode content.
type Article struct {
	Title   string
	Byline  string
	Excerpt string
	Content string // cleaned HTML
}

// Extract fetches rawURL and runs readability extraction on the body.
// A 30-second timeout is applied on top of the caller's context.
func Extract(ctx context.Context, rawURL string) (*Article, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	body, err := fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	parsed, err := goreadability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability extract: %w", err)
	}
	if parsed.Content == "" {
		return nil, fmt.Errorf("no content extracted")
	}

	return &Article{
		Title:   parsed.Title,
		Byline:  parsed.Byline,
		Excerpt: parsed.Excerpt,
		Content: parsed.Content,
	}, nil
}

// fetch downloads the page, capped at maxBodySize.
func fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response exceeds %d bytes", maxBodySize)
	}
	return body, nil
}

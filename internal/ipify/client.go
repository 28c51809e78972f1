// Package ipify fetches the caller's public address from an ipify-style
// endpoint that answers with {"ip": "<address>"}.
package ipify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Flarenzy/whats-my-ip/internal/domain"
)

const (
	DefaultURL = "https://api.ipify.org?format=json"

	maxBodyBytes = 1 << 20
)

type Config struct {
	URL string
	// Timeout bounds a whole request. Zero waits on the transport defaults.
	Timeout time.Duration
	// RequireSuccessStatus rejects non-2xx responses before decoding.
	RequireSuccessStatus bool
}

type Client struct {
	url            string
	requireSuccess bool
	client         *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	endpoint := cfg.URL
	if endpoint == "" {
		endpoint = DefaultURL
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup url: %v", domain.ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: lookup url must be absolute http(s): %q", domain.ErrInvalidConfig, endpoint)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: negative lookup timeout", domain.ErrInvalidConfig)
	}

	return &Client{
		url:            endpoint,
		requireSuccess: cfg.RequireSuccessStatus,
		client:         &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) FetchIP(ctx context.Context) (domain.LookupResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.LookupResult{}, fmt.Errorf("%w: build request: %w", domain.ErrLookupFailure, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.LookupResult{}, fmt.Errorf("%w: %w", domain.ErrLookupFailure, err)
	}
	defer resp.Body.Close()

	if c.requireSuccess && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.LookupResult{}, fmt.Errorf("%w: unexpected status %d", domain.ErrLookupFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.LookupResult{}, fmt.Errorf("%w: read body: %w", domain.ErrLookupFailure, err)
	}

	result, err := decodeResult(body)
	if err != nil {
		return domain.LookupResult{}, fmt.Errorf("%w: %w", domain.ErrLookupFailure, err)
	}
	return result, nil
}

// decodeResult reads the ip field the way a loosely typed client would: a
// document that is valid JSON but carries no ip field yields an absent
// result, while invalid JSON or a null document is an error.
func decodeResult(body []byte) (domain.LookupResult, error) {
	var doc json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.LookupResult{}, fmt.Errorf("decode body: %w", err)
	}

	doc = bytes.TrimSpace(doc)
	switch doc[0] {
	case 'n':
		return domain.LookupResult{}, fmt.Errorf("decode body: null document")
	case '{':
	default:
		return domain.LookupResult{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return domain.LookupResult{}, fmt.Errorf("decode body: %w", err)
	}

	raw, ok := fields["ip"]
	if !ok {
		return domain.LookupResult{}, nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return domain.LookupResult{}, fmt.Errorf("decode ip field: %w", err)
	}

	return domain.LookupResult{IP: displayText(value), Present: true}, nil
}

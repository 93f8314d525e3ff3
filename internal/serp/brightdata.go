package serp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/FranksOps/vantage/internal/metrics"
	"github.com/FranksOps/vantage/pkg/httpclient"
)

// DefaultEndpoint is the Bright Data request proxy.
const DefaultEndpoint = "https://api.brightdata.com/request"

const providerBrightData = "brightdata"

// ClientConfig configures the SERP proxy client.
type ClientConfig struct {
	APIKey   string
	Zone     string
	Endpoint string // defaults to DefaultEndpoint
	Timeout  time.Duration
}

// Client queries search engines through the Bright Data SERP proxy. One POST
// per query; the proxy fetches the results page and returns it wrapped in a
// JSON envelope.
type Client struct {
	cfg       ClientConfig
	http      *httpclient.Client
	extractor Extractor
}

// requestBody is the proxy wire format.
type requestBody struct {
	Zone   string `json:"zone"`
	URL    string `json:"url"`
	Format string `json:"format"`
}

// NewClient creates a proxy-backed Provider. The extractor turns raw
// payloads into records and must not be nil.
func NewClient(cfg ClientConfig, extractor Extractor) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("serp: APIKey is required")
	}
	if cfg.Zone == "" {
		return nil, errors.New("serp: Zone is required")
	}
	if extractor == nil {
		return nil, errors.New("serp: extractor is nil")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}

	hc, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("serp: %w", err)
	}

	return &Client{cfg: cfg, http: hc, extractor: extractor}, nil
}

// query issues one request through the proxy and returns the raw payload.
func (c *Client) query(ctx context.Context, q Query) ([]byte, error) {
	start := time.Now()

	resp, err := c.http.PostJSON(ctx, c.cfg.Endpoint,
		map[string]string{"Authorization": "Bearer " + c.cfg.APIKey},
		requestBody{
			Zone:   c.cfg.Zone,
			URL:    q.BuildURL(),
			Format: "json",
		},
	)
	if err != nil {
		metrics.RecordQuery(providerBrightData, 0, time.Since(start), 0)
		return nil, fmt.Errorf("serp: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.RecordQuery(providerBrightData, resp.StatusCode, time.Since(start), len(body))
	if err != nil {
		return nil, fmt.Errorf("serp: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// Search performs one query and returns at most limit extracted records,
// preserving the order the engine returned them in.
func (c *Client) Search(ctx context.Context, q Query, limit int) ([]Record, error) {
	if limit < 0 {
		return nil, fmt.Errorf("serp: limit cannot be negative: %d", limit)
	}

	raw, err := c.query(ctx, q)
	if err != nil {
		return nil, err
	}

	records, err := c.extractor.Extract(raw)
	if err != nil {
		return nil, fmt.Errorf("serp: %w", err)
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

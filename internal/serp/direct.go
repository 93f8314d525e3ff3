package serp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FranksOps/vantage/internal/fingerprint"
	"github.com/FranksOps/vantage/internal/metrics"
	"github.com/FranksOps/vantage/pkg/httpclient"
	"github.com/FranksOps/vantage/pkg/useragent"
)

const providerDirect = "direct"

// DirectConfig configures the direct engine provider.
type DirectConfig struct {
	Timeout     time.Duration
	Fingerprint fingerprint.Profile // defaults to chrome
	UAPool      *useragent.Pool     // defaults to the built-in pool
	Detectors   []Detector          // defaults to DefaultDetectors
}

// Direct fetches the results page straight from the engine, using a uTLS
// ClientHello profile and User-Agent rotation. Useful without proxy
// credentials, but subject to engine-side blocking, which is surfaced as a
// BlockedError.
type Direct struct {
	cfg       DirectConfig
	http      *httpclient.Client
	uas       *useragent.Pool
	detectors []Detector
	extractor Extractor
}

// NewDirect creates a direct-scrape Provider.
func NewDirect(cfg DirectConfig, extractor Extractor) (*Direct, error) {
	if extractor == nil {
		return nil, errors.New("serp: extractor is nil")
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if cfg.Detectors == nil {
		cfg.Detectors = DefaultDetectors()
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("serp: setup transport: %w", err)
	}

	hc, err := httpclient.New(httpclient.Config{
		Timeout:   cfg.Timeout,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("serp: %w", err)
	}

	return &Direct{
		cfg:       cfg,
		http:      hc,
		uas:       cfg.UAPool,
		detectors: cfg.Detectors,
		extractor: extractor,
	}, nil
}

// Search fetches the results page for q and returns at most limit extracted
// records.
func (d *Direct) Search(ctx context.Context, q Query, limit int) ([]Record, error) {
	if limit < 0 {
		return nil, fmt.Errorf("serp: limit cannot be negative: %d", limit)
	}

	req, err := http.NewRequest(http.MethodGet, q.BuildURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("serp: %w", err)
	}
	req.Header.Set("User-Agent", d.uas.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if q.Language != "" {
		req.Header.Set("Accept-Language", q.Language)
	}

	start := time.Now()
	resp, err := d.http.Do(ctx, req)
	if err != nil {
		metrics.RecordQuery(providerDirect, 0, time.Since(start), 0)
		return nil, fmt.Errorf("serp: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.RecordQuery(providerDirect, resp.StatusCode, time.Since(start), len(body))
	if err != nil {
		return nil, fmt.Errorf("serp: read response: %w", err)
	}

	if blocked, source := DetectBlock(resp.StatusCode, resp.Header, body, d.detectors); blocked {
		return nil, &BlockedError{Source: source}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	records, err := d.extractor.Extract(body)
	if err != nil {
		return nil, fmt.Errorf("serp: %w", err)
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

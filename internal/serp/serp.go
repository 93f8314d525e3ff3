package serp

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Query is one keyword search with geo/language targeting. Immutable once
// constructed.
type Query struct {
	Keyword  string `json:"keyword"`
	Country  string `json:"country"`
	Language string `json:"language"`
}

// BuildURL returns the search engine URL for the query. The country code is
// uppercased for the gl parameter, matching what the upstream expects.
func (q Query) BuildURL() string {
	v := url.Values{}
	v.Set("q", q.Keyword)
	if q.Country != "" {
		v.Set("gl", strings.ToUpper(q.Country))
	}
	if q.Language != "" {
		v.Set("hl", q.Language)
	}
	return "https://www.google.com/search?" + v.Encode()
}

// Record is one extracted search hit. Never mutated after creation.
type Record struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"description"`
}

// Provider abstracts a search engine provider that returns extracted result
// records for a query. Implementations may use a SERP proxy API, direct
// scraping, or other mechanisms. The limit parameter caps the number of
// results returned.
type Provider interface {
	Search(ctx context.Context, q Query, limit int) ([]Record, error)
}

// Extractor turns a raw SERP payload into result records. Implemented by
// the extract package; kept as an interface here so providers can be tested
// with canned extraction.
type Extractor interface {
	Extract(raw []byte) ([]Record, error)
}

// APIError reports an upstream request that failed with a non-success status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("serp: upstream returned %d: %s", e.StatusCode, truncate(e.Body, 200))
}

// Top performs a single-result search and returns one field of the top
// record ("title", "url" or "snippet"). Returns "-" when nothing was found.
// Kept for callers that only care about the leading hit.
func Top(ctx context.Context, p Provider, q Query, field string) (string, error) {
	records, err := p.Search(ctx, q, 1)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "-", nil
	}

	switch field {
	case "title":
		return records[0].Title, nil
	case "url":
		return records[0].URL, nil
	case "snippet":
		return records[0].Snippet, nil
	default:
		return "", fmt.Errorf("serp: unknown record field %q", field)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

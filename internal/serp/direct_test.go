package serp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FranksOps/vantage/internal/fingerprint"
)

// direct tests point the query URL at a local server by rewriting the
// request through a stub transport.
type rewriteTransport struct {
	target string
	inner  http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = "http"
	r.URL.Host = strings.TrimPrefix(t.target, "http://")
	return t.inner.RoundTrip(r)
}

func newTestDirect(t *testing.T, target string, ex Extractor) *Direct {
	t.Helper()
	d, err := NewDirect(DirectConfig{Fingerprint: fingerprint.ProfileGo}, ex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.http.Transport = &rewriteTransport{target: target, inner: http.DefaultTransport}
	return d
}

func TestDirect_Search(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h3>A real organic result</h3></body></html>`)
	}))
	defer ts.Close()

	ex := &cannedExtractor{records: []Record{
		{Title: "A real organic result", URL: "https://example.com", Snippet: "snippet"},
	}}
	d := newTestDirect(t, ts.URL, ex)

	records, err := d.Search(context.Background(), Query{Keyword: "acme.com", Language: "en"}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}
	if gotUA == "" {
		t.Error("expected a rotated User-Agent header")
	}
}

func TestDirect_Blocked(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `<html>Our systems have detected unusual traffic from your computer network</html>`)
	}))
	defer ts.Close()

	d := newTestDirect(t, ts.URL, &cannedExtractor{})

	_, err := d.Search(context.Background(), Query{Keyword: "acme.com"}, 3)
	if err == nil {
		t.Fatal("expected blocked error")
	}

	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected *BlockedError, got %T: %v", err, err)
	}
	if blocked.Source != "Google" {
		t.Errorf("expected Google block source, got %q", blocked.Source)
	}
}

func TestDirect_NonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	d := newTestDirect(t, ts.URL, &cannedExtractor{})

	_, err := d.Search(context.Background(), Query{Keyword: "acme.com"}, 3)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", apiErr.StatusCode)
	}
}

//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FranksOps/vantage/internal/extract"
	"github.com/FranksOps/vantage/internal/intel"
	"github.com/FranksOps/vantage/internal/report"
	"github.com/FranksOps/vantage/internal/serp"
	"github.com/FranksOps/vantage/internal/storage"
	"github.com/FranksOps/vantage/pkg/ratelimit"
)

// mockArchive is an in-memory storage.Backend for verifying archival
type mockArchive struct {
	mu      sync.Mutex
	reports []*storage.Report
}

func (m *mockArchive) Save(ctx context.Context, r *storage.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *mockArchive) Query(ctx context.Context, filter storage.Filter) ([]*storage.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reports, nil
}

func (m *mockArchive) Close() error { return nil }

func organicBody(topic string) []byte {
	type hit struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Description string `json:"description"`
	}
	var hits []hit
	for i := 1; i <= 3; i++ {
		hits = append(hits, hit{
			Title:       fmt.Sprintf("%s headline %d", topic, i),
			Link:        fmt.Sprintf("https://news.example.com/%s/%d", topic, i),
			Description: fmt.Sprintf("Detailed %s coverage number %d with enough substance to pass the snippet filter.", topic, i),
		})
	}
	body, _ := json.Marshal(map[string]any{"organic": hits})
	return body
}

func TestIntegration_ResearchToReport(t *testing.T) {
	var queries atomic.Int64

	// 1. Mock proxy endpoint: one canned organic payload per query angle
	proxyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}

		var req struct {
			Zone   string `json:"zone"`
			URL    string `json:"url"`
			Format string `json:"format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding proxy request: %v", err)
		}

		target, err := url.Parse(req.URL)
		if err != nil {
			t.Errorf("parsing target url %q: %v", req.URL, err)
		}
		keyword := target.Query().Get("q")
		queries.Add(1)

		var topic string
		switch {
		case strings.Contains(keyword, "vs competitors"):
			topic = "positioning"
		case strings.Contains(keyword, "case study"):
			topic = "customers"
		case strings.Contains(keyword, "funding"):
			topic = "strategy"
		case strings.Contains(keyword, "product launch"):
			topic = "product"
		default:
			t.Errorf("unexpected query %q", keyword)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(organicBody(topic))
	}))
	defer proxyServer.Close()

	// 2. Full wiring: proxy client -> extractor -> agent -> renderer
	client, err := serp.NewClient(serp.ClientConfig{
		APIKey:   "test-key",
		Zone:     "serp_zone",
		Endpoint: proxyServer.URL,
		Timeout:  5 * time.Second,
	}, extract.New())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	archive := &mockArchive{}
	agent, err := intel.New(client, intel.Config{
		Country:  "us",
		Language: "en",
		Count:    3,
		Limiter:  ratelimit.NewLimiter(0, 0),
		Archive:  archive,
	})
	if err != nil {
		t.Fatalf("intel.New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ci, err := agent.Research(ctx, "acme.com")
	if err != nil {
		t.Fatalf("Research: %v", err)
	}

	if got := queries.Load(); got != 4 {
		t.Errorf("proxy received %d queries, want 4", got)
	}
	for _, section := range ci.Sections() {
		if len(section.Records) != 3 {
			t.Errorf("section %q has %d records, want 3", section.Category, len(section.Records))
		}
	}

	// 3. Rendered briefing carries every section and entry
	var buf bytes.Buffer
	if err := report.WriteText(&buf, []*intel.CompanyIntelligence{ci}); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()

	for _, heading := range []string{
		"COMPETITIVE POSITIONING",
		"CUSTOMER INTELLIGENCE",
		"STRATEGIC ACTIVITY",
		"PRODUCT DEVELOPMENTS",
	} {
		if !strings.Contains(out, heading) {
			t.Errorf("briefing missing heading %q", heading)
		}
	}
	entries := regexp.MustCompile(`(?m)^\d+\. `).FindAllString(out, -1)
	if len(entries) != 12 {
		t.Errorf("briefing has %d entries, want 12", len(entries))
	}
	if !strings.Contains(out, "positioning headline 1") {
		t.Error("briefing missing extracted record title")
	}

	// 4. Report was archived
	if len(archive.reports) != 1 {
		t.Fatalf("archived %d reports, want 1", len(archive.reports))
	}
	if archive.reports[0].Domain != "acme.com" {
		t.Errorf("archived domain = %q", archive.reports[0].Domain)
	}
}

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/vantage/internal/intel"
	"github.com/FranksOps/vantage/internal/serp"
)

func sampleIntel(domain string, perSection int) *intel.CompanyIntelligence {
	section := func(cat intel.Category) intel.CategoryResults {
		records := make([]serp.Record, 0, perSection)
		for i := 0; i < perSection; i++ {
			records = append(records, serp.Record{
				Title:   fmt.Sprintf("%s %s result %d", domain, cat, i+1),
				URL:     fmt.Sprintf("https://example.com/%s/%d", cat, i+1),
				Snippet: fmt.Sprintf("Snippet %d for the %s angle on %s.", i+1, cat, domain),
			})
		}
		return intel.CategoryResults{Category: cat, Records: records}
	}

	return &intel.CompanyIntelligence{
		ID:              "report-1",
		Domain:          domain,
		GeneratedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Positioning:     section(intel.CategoryPositioning),
		Customers:       section(intel.CategoryCustomers),
		StrategicMoves:  section(intel.CategoryStrategicMoves),
		ProductStrategy: section(intel.CategoryProductStrategy),
		Summary: intel.Summary{
			MarketPosition: "Leads its segment.",
			KeyCustomers:   "Large enterprise accounts.",
			RecentMoves:    "Recent acquisition closed.",
			ProductFocus:   "Shipping platform features.",
		},
	}
}

func TestWriteTextRendersAllSections(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, []*intel.CompanyIntelligence{sampleIntel("acme.com", 3)}); err != nil {
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
			t.Errorf("output missing heading %q", heading)
		}
	}

	entries := regexp.MustCompile(`(?m)^\d+\. `).FindAllString(out, -1)
	if len(entries) != 12 {
		t.Errorf("got %d numbered entries, want 12", len(entries))
	}

	if !strings.Contains(out, "Market Position: Leads its segment.") {
		t.Error("executive summary missing")
	}
	if !strings.Contains(out, "Domain:    acme.com") {
		t.Error("domain header missing")
	}
}

func TestWriteTextEmptySection(t *testing.T) {
	ci := sampleIntel("acme.com", 0)

	var buf bytes.Buffer
	if err := WriteText(&buf, []*intel.CompanyIntelligence{ci}); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if strings.Count(buf.String(), "No results found.") != 4 {
		t.Errorf("empty sections not marked:\n%s", buf.String())
	}
}

func TestWriteJSONShape(t *testing.T) {
	single := []*intel.CompanyIntelligence{sampleIntel("acme.com", 2)}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, single); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Error("single report should encode as an object")
	}

	var decoded struct {
		Domain      string `json:"domain"`
		Positioning struct {
			Records []serp.Record `json:"records"`
		} `json:"positioning"`
		Summary struct {
			MarketPosition string `json:"market_position"`
		} `json:"intelligence_summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if decoded.Domain != "acme.com" {
		t.Errorf("domain = %q", decoded.Domain)
	}
	if len(decoded.Positioning.Records) != 2 {
		t.Errorf("positioning records = %d, want 2", len(decoded.Positioning.Records))
	}
	if decoded.Summary.MarketPosition != "Leads its segment." {
		t.Errorf("summary = %q", decoded.Summary.MarketPosition)
	}

	buf.Reset()
	batch := []*intel.CompanyIntelligence{sampleIntel("acme.com", 1), sampleIntel("widgets.dev", 1)}
	if err := WriteJSON(&buf, batch); err != nil {
		t.Fatalf("WriteJSON batch: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "[") {
		t.Error("batch should encode as an array")
	}
}

func TestPDFName(t *testing.T) {
	single := []*intel.CompanyIntelligence{sampleIntel("acme.com", 1)}
	if got := PDFName(single); got != "acme_com_intelligence_report.pdf" {
		t.Errorf("single name = %q", got)
	}

	batch := append(single, sampleIntel("widgets.dev", 1))
	if got := PDFName(batch); got != "competitive_intelligence_report.pdf" {
		t.Errorf("batch name = %q", got)
	}
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	reports := []*intel.CompanyIntelligence{
		sampleIntel("acme.com", 3),
		sampleIntel("widgets.dev", 0),
	}

	if err := WritePDF(path, reports); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestWritePDFBadPath(t *testing.T) {
	err := WritePDF(filepath.Join(t.TempDir(), "missing", "out.pdf"), []*intel.CompanyIntelligence{sampleIntel("acme.com", 1)})
	if err == nil {
		t.Fatal("expected error for unreachable path")
	}
}

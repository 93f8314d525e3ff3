// Package extract turns raw SERP payloads into result records. The upstream
// proxy returns either a JSON envelope wrapping the HTML results page or a
// pre-parsed hit list, so payloads are modeled as a small tagged union with
// one parser per variant.
package extract

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/FranksOps/vantage/internal/metrics"
	"github.com/FranksOps/vantage/internal/serp"
)

// Kind discriminates the recognized payload variants.
type Kind int

const (
	KindUnknown Kind = iota
	KindHTML         // JSON envelope carrying an HTML results page, or bare HTML
	KindOrganic      // structured hit list
)

func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindOrganic:
		return "organic"
	default:
		return "unknown"
	}
}

// Payload is a classified raw response.
type Payload struct {
	Kind    Kind
	HTML    []byte
	Organic []organicHit
}

type organicHit struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

// envelope covers both proxy response shapes at once; Detect picks the
// variant from which fields are populated.
type envelope struct {
	Body    string       `json:"body"`
	Organic []organicHit `json:"organic"`
}

// Detect classifies a raw payload. Unrecognized shapes yield KindUnknown;
// the extractor treats those as zero records rather than an error.
func Detect(raw []byte) Payload {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Payload{Kind: KindUnknown}
	}

	// Bare HTML, e.g. from a direct engine fetch
	if trimmed[0] == '<' {
		return Payload{Kind: KindHTML, HTML: trimmed}
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Payload{Kind: KindUnknown}
	}
	if len(env.Organic) > 0 {
		return Payload{Kind: KindOrganic, Organic: env.Organic}
	}
	if env.Body != "" {
		return Payload{Kind: KindHTML, HTML: []byte(env.Body)}
	}
	return Payload{Kind: KindUnknown}
}

// Extractor parses payloads into records, filtering out entries whose
// snippet falls outside the configured length window. The window exists to
// drop navigation chrome and boilerplate, not to rank relevance.
type Extractor struct {
	MinSnippet int // inclusive lower bound, in runes
	MaxSnippet int // inclusive upper bound, in runes
}

// New returns an Extractor with the standard 50..500 snippet window.
func New() *Extractor {
	return &Extractor{MinSnippet: 50, MaxSnippet: 500}
}

// Extract parses whichever payload variant raw contains. An unrecognized
// shape returns no records and no error. Record order follows payload order;
// no deduplication is performed.
func (e *Extractor) Extract(raw []byte) ([]serp.Record, error) {
	payload := Detect(raw)

	var records []serp.Record
	switch payload.Kind {
	case KindOrganic:
		records = e.fromOrganic(payload.Organic)
	case KindHTML:
		var err error
		records, err = e.fromHTML(payload.HTML)
		if err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}

	metrics.ExtractedRecordsTotal.WithLabelValues(payload.Kind.String()).Add(float64(len(records)))
	return records, nil
}

// fromOrganic converts a structured hit list, discarding hits with a missing
// field or an out-of-window description.
func (e *Extractor) fromOrganic(hits []organicHit) []serp.Record {
	records := make([]serp.Record, 0, len(hits))
	for _, h := range hits {
		title := clean(h.Title)
		link := strings.TrimSpace(h.Link)
		snippet := clean(h.Description)

		if title == "" || link == "" || snippet == "" {
			continue
		}
		if !e.snippetOK(snippet) {
			continue
		}
		records = append(records, serp.Record{Title: title, URL: link, Snippet: snippet})
	}
	return records
}

// fromHTML pulls titles, links and snippets out of a results page and zips
// them positionally, the way the engine lays out one result block per hit.
func (e *Extractor) fromHTML(html []byte) ([]serp.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		// Malformed markup degrades to zero records
		return nil, nil
	}

	var titles []string
	doc.Find("h3").Each(func(_ int, s *goquery.Selection) {
		t := clean(s.Text())
		// Very short h3 text is navigation, not a result title
		if len([]rune(t)) > 5 {
			titles = append(titles, t)
		}
	})

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link := resultLink(href)
		if link != "" {
			links = append(links, link)
		}
	})

	var snippets []string
	doc.Find("div[data-sncf], div.VwiC3b, span.st").Each(func(_ int, s *goquery.Selection) {
		sn := clean(s.Text())
		if e.snippetOK(sn) {
			snippets = append(snippets, sn)
		}
	})

	n := len(titles)
	if len(links) < n {
		n = len(links)
	}
	if len(snippets) < n {
		n = len(snippets)
	}

	records := make([]serp.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, serp.Record{
			Title:   titles[i],
			URL:     links[i],
			Snippet: snippets[i],
		})
	}
	return records, nil
}

// resultLink normalizes a result anchor href, unwrapping the engine's
// /url?q= indirection and dropping the engine's own chrome links.
func resultLink(href string) string {
	if strings.HasPrefix(href, "/url?") {
		if u, err := url.Parse(href); err == nil {
			href = u.Query().Get("q")
		}
	}
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return ""
	}
	for _, own := range []string{"google.com", "gstatic.com", "youtube.com/redirect"} {
		if strings.Contains(href, own) {
			return ""
		}
	}
	return href
}

// snippetOK applies the length window and the boilerplate filter.
func (e *Extractor) snippetOK(s string) bool {
	n := len([]rune(s))
	if n < e.MinSnippet || n > e.MaxSnippet {
		return false
	}
	lower := strings.ToLower(s)
	for _, junk := range []string{"javascript", "cookie", "sign in", "log in"} {
		if strings.Contains(lower, junk) {
			return false
		}
	}
	return true
}

// clean collapses whitespace runs into single spaces and trims the result.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

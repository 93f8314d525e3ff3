// Package report renders finished intelligence reports as text, JSON or PDF.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/FranksOps/vantage/internal/intel"
)

const textBody = `{{range . -}}
======================================================================
COMPETITIVE INTELLIGENCE REPORT
Domain:    {{.Domain}}
Generated: {{.GeneratedAt.Format "2006-01-02 15:04 UTC"}}
======================================================================

EXECUTIVE SUMMARY
-----------------
Market Position: {{.Summary.MarketPosition}}
Key Customers:   {{.Summary.KeyCustomers}}
Recent Moves:    {{.Summary.RecentMoves}}
Product Focus:   {{.Summary.ProductFocus}}
{{range .Sections}}
{{heading .Category.Label}}
{{- if .Records}}
{{- range $i, $r := .Records}}
{{inc $i}}. {{$r.Title}}
   {{$r.URL}}
   {{$r.Snippet}}
{{- end}}
{{- else}}
No results found.
{{- end}}
{{end}}
{{- end}}`

var textTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"heading": func(label string) string {
		upper := strings.ToUpper(label)
		return upper + "\n" + strings.Repeat("-", len(upper))
	},
}).Parse(textBody))

// WriteText renders reports as a plain-text briefing.
func WriteText(w io.Writer, reports []*intel.CompanyIntelligence) error {
	if err := textTmpl.Execute(w, reports); err != nil {
		return fmt.Errorf("report: rendering text: %w", err)
	}
	return nil
}

// WriteJSON renders reports as indented JSON. A single report is written as
// an object, a batch as an array.
func WriteJSON(w io.Writer, reports []*intel.CompanyIntelligence) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	var payload any = reports
	if len(reports) == 1 {
		payload = reports[0]
	}
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("report: encoding json: %w", err)
	}
	return nil
}

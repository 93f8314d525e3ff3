package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/FranksOps/vantage/internal/intel"
)

// Display caps keep individual PDF cells from overflowing the page.
const (
	pdfMaxURL     = 80
	pdfMaxSnippet = 200
)

// PDFName returns the default output filename for a set of reports.
func PDFName(reports []*intel.CompanyIntelligence) string {
	if len(reports) == 1 {
		return strings.ReplaceAll(reports[0].Domain, ".", "_") + "_intelligence_report.pdf"
	}
	return "competitive_intelligence_report.pdf"
}

// WritePDF renders reports into a PDF file at path: a title page followed by
// one section per company.
func WritePDF(path string, reports []*intel.CompanyIntelligence) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)

	writeTitlePage(pdf, reports)
	for _, ci := range reports {
		writeCompany(pdf, ci)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("report: writing pdf %s: %w", path, err)
	}
	return nil
}

func writeTitlePage(pdf *fpdf.Fpdf, reports []*intel.CompanyIntelligence) {
	pdf.AddPage()
	pdf.Ln(60)

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, "Competitive Intelligence Report", "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	noun := "Companies"
	if len(reports) == 1 {
		noun = "Company"
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("%d %s Analyzed", len(reports), noun), "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 11)
	for _, ci := range reports {
		pdf.CellFormat(0, 6, ci.Domain, "", 1, "C", false, 0, "")
	}

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated "+time.Now().UTC().Format("January 2, 2006 15:04 UTC"), "", 1, "C", false, 0, "")
}

func writeCompany(pdf *fpdf.Fpdf, ci *intel.CompanyIntelligence) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, ci.Domain, "B", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Executive Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range []struct{ label, insight string }{
		{"Market Position", ci.Summary.MarketPosition},
		{"Key Customers", ci.Summary.KeyCustomers},
		{"Recent Moves", ci.Summary.RecentMoves},
		{"Product Focus", ci.Summary.ProductFocus},
	} {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, row.label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, row.insight, "", "L", false)
	}
	pdf.Ln(4)

	for _, section := range ci.Sections() {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, section.Category.Label(), "", 1, "L", false, 0, "")

		if len(section.Records) == 0 {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.CellFormat(0, 6, "No results found.", "", 1, "L", false, 0, "")
			pdf.Ln(2)
			continue
		}

		for i, r := range section.Records {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(0, 5, fmt.Sprintf("%d. %s", i+1, r.Title), "", "L", false)

			pdf.SetFont("Helvetica", "", 8)
			pdf.SetTextColor(0, 0, 200)
			pdf.CellFormat(0, 4, capRunes(r.URL, pdfMaxURL), "", 1, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)

			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 5, capRunes(r.Snippet, pdfMaxSnippet), "", "L", false)
			pdf.Ln(2)
		}
		pdf.Ln(2)
	}
}

func capRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

package export

import (
	"bytes"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// exportTimestamp pins the document dates so re-rendering the same
// artifact is byte-identical.
var exportTimestamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

var emphasisReplacer = strings.NewReplacer("**", "", "*", "")

// renderPDF converts Markdown line by line: headings become decreasing
// bold sizes, list markers become bullets, table rows keep a fixed-width
// font, and emphasis markers are stripped from body text.
func renderPDF(markdown string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "Letter", "")
	// Resource dictionaries are otherwise emitted in map order.
	doc.SetCatalogSort(true)
	doc.SetCreationDate(exportTimestamp)
	doc.SetModificationDate(exportTimestamp)
	doc.SetTitle("TeachAssist Export", false)
	doc.SetCreator("TeachAssist", false)
	doc.SetMargins(18, 18, 18)
	doc.SetAutoPageBreak(true, 18)
	doc.AddPage()

	// Core fonts are cp1252; translate UTF-8 input accordingly.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		switch {
		case strings.HasPrefix(trimmed, "# "):
			doc.SetFont("Helvetica", "B", 20)
			doc.MultiCell(0, 9, tr(trimmed[2:]), "", "L", false)
			doc.Ln(3)
		case strings.HasPrefix(trimmed, "## "):
			doc.Ln(2)
			doc.SetFont("Helvetica", "B", 16)
			doc.MultiCell(0, 7.5, tr(trimmed[3:]), "", "L", false)
			doc.Ln(2)
		case strings.HasPrefix(trimmed, "### "):
			doc.Ln(1)
			doc.SetFont("Helvetica", "B", 13)
			doc.MultiCell(0, 6.5, tr(trimmed[4:]), "", "L", false)
			doc.Ln(1)
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, 5.5, tr("  •  "+emphasisReplacer.Replace(trimmed[2:])), "", "L", false)
		case strings.HasPrefix(trimmed, "|"):
			doc.SetFont("Courier", "", 10)
			doc.MultiCell(0, 5, tr(trimmed), "", "L", false)
		case trimmed == "":
			doc.Ln(2)
		default:
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, 5.5, tr(emphasisReplacer.Replace(trimmed)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

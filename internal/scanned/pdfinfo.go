package scanned

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDFInfo summarizes a scanned-path PDF before it is handed to OCR.
type PDFInfo struct {
	Pages        int
	HasTextLayer bool
}

// minTextLayerChars is the extractable-text length below which a PDF is
// still treated as image-only; real text layers run to thousands of
// characters, OCR artifacts and metadata to a handful.
const minTextLayerChars = 200

// ProbePDF inspects a PDF destined for the imaged path: page count via
// pdfcpu, and a text-layer check so documents that never needed OCR can be
// flagged for triage. Probe failure is advisory; the document still goes to
// OCR.
func ProbePDF(path string) (*PDFInfo, error) {
	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	info := &PDFInfo{Pages: count}

	f, reader, err := pdf.Open(path)
	if err != nil {
		// Not all scanner output survives a strict parse; the page count
		// already succeeded, so report what we have.
		return info, nil
	}
	defer f.Close()

	var chars int
	for i := 1; i <= reader.NumPage() && chars < minTextLayerChars; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		chars += len(strings.TrimSpace(text))
	}
	info.HasTextLayer = chars >= minTextLayerChars

	return info, nil
}

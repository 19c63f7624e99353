// Package scanned implements the imaged extraction path: locating the
// balance-sheet pages in an OCR word stream, reconstructing tabular rows
// from noisy geometry, and inferring the document-wide reporting unit.
package scanned

import (
	"strings"

	"github.com/accdata/sheetscan/internal/ocr"
)

// LocatorConfig configures balance-sheet page scoring.
type LocatorConfig struct {
	// Keywords are heading terms associated with balance-sheet sections.
	Keywords []string
	// ScoreThreshold is the minimum confidence-weighted keyword score a
	// page needs to qualify.
	ScoreThreshold float64
}

// DefaultLocatorConfig returns the default scoring configuration.
func DefaultLocatorConfig() LocatorConfig {
	return LocatorConfig{
		Keywords: []string{
			"assets", "liabilities", "equity", "shareholders",
			"shareholder", "funds", "capital", "reserves",
			"creditors", "debtors", "balance", "sheet",
		},
		ScoreThreshold: 2.0,
	}
}

// PageLocator scores pages for likelihood of containing the balance sheet
// and selects the most likely contiguous region.
type PageLocator struct {
	cfg      LocatorConfig
	keywords map[string]struct{}
}

// NewPageLocator creates a locator from the given configuration.
func NewPageLocator(cfg LocatorConfig) *PageLocator {
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultLocatorConfig().Keywords
	}
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = DefaultLocatorConfig().ScoreThreshold
	}
	keywords := make(map[string]struct{}, len(cfg.Keywords))
	for _, k := range cfg.Keywords {
		keywords[strings.ToLower(k)] = struct{}{}
	}
	return &PageLocator{cfg: cfg, keywords: keywords}
}

// Score returns the page's confidence-weighted keyword score.
func (l *PageLocator) Score(page ocr.Page) float64 {
	var score float64
	for _, w := range page.Words {
		if _, ok := l.keywords[normalizeToken(w.Text)]; ok {
			score += w.Confidence
		}
	}
	return score
}

// Locate selects the contiguous run of qualifying pages with the greatest
// aggregate score. An empty selection is not an error: downstream records
// with zero elements are the documented data-quality signal.
func (l *PageLocator) Locate(pages []ocr.Page) []ocr.Page {
	scores := make([]float64, len(pages))
	for i, p := range pages {
		scores[i] = l.Score(p)
	}

	bestStart, bestEnd := -1, -1
	var bestTotal float64
	i := 0
	for i < len(pages) {
		if scores[i] < l.cfg.ScoreThreshold {
			i++
			continue
		}
		j := i
		var total float64
		for j < len(pages) && scores[j] >= l.cfg.ScoreThreshold {
			total += scores[j]
			j++
		}
		if total > bestTotal {
			bestStart, bestEnd, bestTotal = i, j, total
		}
		i = j
	}

	if bestStart < 0 {
		return nil
	}
	return pages[bestStart:bestEnd]
}

// normalizeToken lowercases a word and strips everything but letters, so
// "Liabilities:" and "liabilities" score the same.
func normalizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

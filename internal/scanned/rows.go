package scanned

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/accdata/sheetscan/internal/ocr"
)

// Row is a transient line candidate: words judged to lie on one logical
// line, possibly merged from several raw OCR lines. It is consumed by the
// grammar matcher and discarded.
type Row struct {
	Words  []ocr.Word
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// Triple is one matched balance-sheet line: a label and its two value
// columns, current year then prior year.
type Triple struct {
	Label      string
	Current    float64
	Prior      float64
	Confidence float64
	// Tokens keeps the raw word texts of the matched row for unit
	// inference, which needs the currency symbols the number parser
	// strips.
	Tokens []string
}

// RowConfig configures row reconstruction.
type RowConfig struct {
	// LineTolerance is the vertical-centre distance, in pixels, within
	// which two words are considered to share a line. This is the primary
	// tuning knob: too wide and a label merges across the page, too
	// narrow and wrapped labels fragment.
	LineTolerance float64
}

// DefaultRowConfig returns the default reconstruction configuration.
func DefaultRowConfig() RowConfig {
	return RowConfig{LineTolerance: 10.0}
}

// RowReconstructor clusters words into line candidates, merges continuation
// lines, and matches the row grammar <label> <number> <number>.
type RowReconstructor struct {
	cfg RowConfig
}

// NewRowReconstructor creates a reconstructor from the given configuration.
func NewRowReconstructor(cfg RowConfig) *RowReconstructor {
	if cfg.LineTolerance <= 0 {
		cfg.LineTolerance = DefaultRowConfig().LineTolerance
	}
	return &RowReconstructor{cfg: cfg}
}

// Reconstruct emits the triples of every page's grammar-matching rows, in
// page then top-to-bottom order. Rows failing the grammar are dropped
// silently; the resulting low element count is the caller's data-quality
// signal.
func (rr *RowReconstructor) Reconstruct(pages []ocr.Page) []Triple {
	var triples []Triple
	for _, page := range pages {
		rows := rr.clusterLines(page.Words)
		rows = mergeContinuations(rows)
		for _, row := range rows {
			if t, ok := matchRow(row); ok {
				triples = append(triples, t)
			}
		}
	}
	return triples
}

// clusterLines groups words into line candidates by vertical-centre
// proximity, then orders each candidate left to right.
func (rr *RowReconstructor) clusterLines(words []ocr.Word) []Row {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]ocr.Word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Box.CenterY() != sorted[j].Box.CenterY() {
			return sorted[i].Box.CenterY() < sorted[j].Box.CenterY()
		}
		return sorted[i].Box.Left < sorted[j].Box.Left
	})

	var rows []Row
	current := newRow(sorted[0])
	anchor := sorted[0].Box.CenterY()

	for _, w := range sorted[1:] {
		if w.Box.CenterY()-anchor > rr.cfg.LineTolerance {
			rows = append(rows, finishRow(current))
			current = newRow(w)
		} else {
			current = extendRow(current, w)
		}
		anchor = w.Box.CenterY()
	}
	rows = append(rows, finishRow(current))
	return rows
}

func newRow(w ocr.Word) Row {
	return Row{
		Words:  []ocr.Word{w},
		Top:    w.Box.Top,
		Bottom: w.Box.Bottom(),
		Left:   w.Box.Left,
		Right:  w.Box.Right(),
	}
}

func extendRow(r Row, w ocr.Word) Row {
	r.Words = append(r.Words, w)
	if w.Box.Top < r.Top {
		r.Top = w.Box.Top
	}
	if w.Box.Bottom() > r.Bottom {
		r.Bottom = w.Box.Bottom()
	}
	if w.Box.Left < r.Left {
		r.Left = w.Box.Left
	}
	if w.Box.Right() > r.Right {
		r.Right = w.Box.Right()
	}
	return r
}

func finishRow(r Row) Row {
	sort.Slice(r.Words, func(i, j int) bool {
		return r.Words[i].Box.Left < r.Words[j].Box.Left
	})
	return r
}

// mergeContinuations folds a line that starts with a lowercase letter into
// its predecessor, recovering labels that OCR split across two recognized
// lines. Misses continuations that start with a number.
func mergeContinuations(rows []Row) []Row {
	var merged []Row
	for _, row := range rows {
		if len(merged) > 0 && startsLowercase(row) {
			prev := &merged[len(merged)-1]
			for _, w := range row.Words {
				*prev = extendRow(*prev, w)
			}
			continue
		}
		merged = append(merged, row)
	}
	return merged
}

func startsLowercase(r Row) bool {
	if len(r.Words) == 0 {
		return false
	}
	for _, c := range r.Words[0].Text {
		return unicode.IsLower(c)
	}
	return false
}

// matchRow matches the row grammar: one or more label tokens followed by a
// trailing run of at least two number tokens. When the run carries a note
// column the right-most two numbers win. Numbers may carry thousands
// separators, parentheses for negatives, and currency symbols.
func matchRow(row Row) (Triple, bool) {
	words := row.Words
	run := 0
	for run < len(words) {
		if _, ok := parseNumber(words[len(words)-1-run].Text); !ok {
			break
		}
		run++
	}
	if run < 2 || run == len(words) {
		return Triple{}, false
	}

	labelWords := words[:len(words)-run]
	current, _ := parseNumber(words[len(words)-2].Text)
	prior, _ := parseNumber(words[len(words)-1].Text)

	labels := make([]string, len(labelWords))
	for i, w := range labelWords {
		labels[i] = w.Text
	}

	tokens := make([]string, len(words))
	var confSum float64
	for i, w := range words {
		tokens[i] = w.Text
		confSum += w.Confidence
	}

	return Triple{
		Label:      strings.TrimSpace(strings.Join(labels, " ")),
		Current:    current,
		Prior:      prior,
		Confidence: confSum / float64(len(words)),
		Tokens:     tokens,
	}, true
}

// parseNumber parses a reported number token. A lone dash means zero;
// parentheses negate; leading currency symbols and thousands separators are
// stripped.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if s == "-" {
		return 0, true
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	for _, sym := range []string{"£", "$", "€"} {
		s = strings.TrimPrefix(s, sym)
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != ',' && r != '.' {
			return 0, false
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

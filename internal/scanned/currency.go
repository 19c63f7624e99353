package scanned

import (
	"strings"

	"github.com/accdata/sheetscan/internal/ocr"
	"github.com/accdata/sheetscan/internal/record"
)

// Inference is the document-wide reporting unit chosen for an imaged
// filing: no per-fact unit tags exist, so one (currency, scale) pair is
// applied uniformly to every extracted row.
type Inference struct {
	Currency record.Unit
	Scale    int64
	Count    int
}

// CurrencyInferencer tallies currency and scale markers across matched
// rows and selects the most frequent pair. Ties break toward the pair
// encountered first in scan order.
type CurrencyInferencer struct {
	// CollapseScale treats a bare symbol and the same symbol qualified by
	// a scale word ("£" vs "£'000") as the same logical unit when
	// deciding the most frequent currency.
	CollapseScale bool
}

// NewCurrencyInferencer returns an inferencer with scale collapsing on,
// matching how filings mix bare and scale-qualified symbols on one page.
func NewCurrencyInferencer() *CurrencyInferencer {
	return &CurrencyInferencer{CollapseScale: true}
}

type pair struct {
	currency record.Unit
	scale    int64
}

// Infer scans the matched rows' tokens for currency symbols and scale
// words. With no markers at all the document-wide unit is unknown with
// unit scale.
func (ci *CurrencyInferencer) Infer(triples []Triple) Inference {
	counts := make(map[pair]int)
	var order []pair

	for _, t := range triples {
		for _, tok := range t.Tokens {
			p, ok := markerOf(tok)
			if !ok {
				continue
			}
			if _, seen := counts[p]; !seen {
				order = append(order, p)
			}
			counts[p]++
		}
	}

	if len(order) == 0 {
		return Inference{Currency: record.UnitUnknown, Scale: 1}
	}

	if ci.CollapseScale {
		return ci.inferCollapsed(counts, order)
	}

	best := order[0]
	for _, p := range order[1:] {
		if counts[p] > counts[best] {
			best = p
		}
	}
	return Inference{Currency: best.currency, Scale: best.scale, Count: counts[best]}
}

// inferCollapsed decides the currency over summed counts, then takes the
// most frequent scale observed for that currency.
func (ci *CurrencyInferencer) inferCollapsed(counts map[pair]int, order []pair) Inference {
	currencyCounts := make(map[record.Unit]int)
	var currencyOrder []record.Unit
	for _, p := range order {
		if _, seen := currencyCounts[p.currency]; !seen {
			currencyOrder = append(currencyOrder, p.currency)
		}
		currencyCounts[p.currency] += counts[p]
	}

	bestCurrency := currencyOrder[0]
	for _, c := range currencyOrder[1:] {
		if currencyCounts[c] > currencyCounts[bestCurrency] {
			bestCurrency = c
		}
	}

	scale := int64(0)
	scaleCount := -1
	for _, p := range order {
		if p.currency != bestCurrency {
			continue
		}
		if counts[p] > scaleCount {
			scale = p.scale
			scaleCount = counts[p]
		}
	}

	return Inference{Currency: bestCurrency, Scale: scale, Count: currencyCounts[bestCurrency]}
}

// markerOf recognizes a currency/scale marker in a row token: a bare or
// qualified symbol ("£", "£'000", "£m", "$k") or a symbol-prefixed figure.
// A scale word with no currency attached is not a marker on its own.
func markerOf(tok string) (pair, bool) {
	lowered := strings.ToLower(strings.TrimSpace(tok))
	if lowered == "" {
		return pair{}, false
	}

	currency, ok := currencyOf(lowered)
	if !ok {
		return pair{}, false
	}

	return pair{currency: currency, scale: scaleOf(lowered)}, true
}

func currencyOf(tok string) (record.Unit, bool) {
	switch {
	case strings.HasPrefix(tok, "£") || strings.HasPrefix(tok, "gbp"):
		return record.UnitGBP, true
	case strings.HasPrefix(tok, "$") || strings.HasPrefix(tok, "usd"):
		return record.UnitUSD, true
	case strings.HasPrefix(tok, "€") || strings.HasPrefix(tok, "eur"):
		return record.UnitEUR, true
	}
	return "", false
}

func scaleOf(tok string) int64 {
	switch {
	case strings.Contains(tok, "million"), strings.HasSuffix(tok, "m"):
		return 1_000_000
	case strings.Contains(tok, "thousand"), strings.Contains(tok, "'000"),
		strings.Contains(tok, "000s"), strings.HasSuffix(tok, "k"):
		return 1_000
	}
	return 1
}

// Markers also appear outside matched rows, typically in the column
// headers above the figures. InferFromPages widens the scan to every word
// of the selected pages when row-level inference found nothing.
func (ci *CurrencyInferencer) InferFromPages(pages []ocr.Page) Inference {
	var triples []Triple
	for _, p := range pages {
		tokens := make([]string, len(p.Words))
		for i, w := range p.Words {
			tokens[i] = w.Text
		}
		triples = append(triples, Triple{Tokens: tokens})
	}
	return ci.Infer(triples)
}

package xbrl

import (
	"strconv"
	"strings"

	"github.com/accdata/sheetscan/internal/record"
)

// ExtractElements walks the parsed tree in document order and extracts every
// tagged fact. A fact is any node carrying a contextRef attribute: inline
// facts (ix:nonFraction, ix:nonNumeric) name themselves through their name
// attribute, legacy facts through the tag itself.
//
// Tree order is the discovery order, and determines the occurrence index
// each fact gets within its name. Re-running on the same tree yields an
// identical element list.
func ExtractElements(doc *Document, res *Resolver) []record.Element {
	var elements []record.Element
	occurrences := make(map[string]int)

	doc.Walk(func(n Node) bool {
		ctxRef, ok := n.Attr("contextref")
		if !ok {
			return true
		}

		name := factName(n)
		if name == "" {
			return true
		}

		elem := record.Element{
			Name:     name,
			RawValue: strings.TrimSpace(n.Text()),
		}

		// A fact with no text of its own takes its value from the
		// referenced context's dimension member.
		if elem.RawValue == "" {
			elem.RawValue = res.ContextSegment(ctxRef)
		}

		if unitRef, ok := n.Attr("unitref"); ok {
			if unit, ok := res.ResolveUnit(unitRef); ok {
				u := unit
				elem.Unit = &u
			}
		}

		// Numeric conversion only makes sense for facts with a resolved
		// unit; unitless facts are frequently textual metadata.
		if elem.Unit != nil {
			if v, ok := cleanValue(elem.RawValue); ok {
				elem.Numeric = &v
			}
		}

		if period, ok := res.ResolvePeriod(ctxRef); ok {
			elem.Date = period.Date()
		}

		elem.OccurrenceIndex = occurrences[name]
		occurrences[name]++

		elements = append(elements, elem)
		return true
	})

	return elements
}

// factName derives the canonical fact name: the name attribute when present
// (inline facts), the tag name otherwise, lowercased and stripped of its
// namespace prefix.
func factName(n Node) string {
	name, ok := n.Attr("name")
	if !ok || name == "" {
		name = n.Name()
	}
	name = strings.ToLower(name)
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}

// cleanValue converts a reported string value to a number. A lone dash is
// reported as zero by convention; thousands separators and spaces are
// stripped.
func cleanValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "-" {
		return 0, true
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

package xbrl

import (
	"strings"
	"time"

	"github.com/accdata/sheetscan/internal/record"
)

// knownStandards maps schema-file identifiers to accounting-standard names.
// The identifiers come from the basename of the schemaRef href; the table
// needs maintaining as regulators publish new taxonomies.
var knownStandards = []struct {
	marker string
	name   string
}{
	{"frs-101", "FRS 101"},
	{"frs-102", "FRS 102"},
	{"frs-105", "FRS 105"},
	{"uk-ifrs", "UK IFRS"},
	{"uk-gaap", "UK GAAP"},
	{"ukgaap", "UK GAAP"},
	{"char", "Charities SORP"},
	{"ifrs", "IFRS"},
}

// DetectStandard identifies the accounting standard governing the document
// by inspecting its schema-reference link. The schema basename encodes both
// the taxonomy family and its issue date, e.g.
//
//	https://xbrl.frc.org.uk/FRS-102/2014-09-01/FRS-102-2014-09-01.xsd
//
// Returns nil when no schema reference is present or it matches no known
// standard. Documents carrying several references resolve to the first in
// tree order.
func DetectStandard(doc *Document) *record.Standard {
	link := doc.First("link:schemaref", "schemaref")
	if link == nil {
		return nil
	}
	href, ok := link.Attr("xlink:href")
	if !ok || href == "" {
		return nil
	}

	base := href
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".xsd")
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}

	name, ok := lookupStandard(base)
	if !ok {
		return nil
	}

	std := &record.Standard{Type: name, Link: href}

	// Issue date is the trailing yyyy-mm-dd of the basename when present.
	if len(base) >= 10 {
		tail := base[len(base)-10:]
		if _, err := time.Parse("2006-01-02", tail); err == nil {
			std.Date = tail
		}
	}

	return std
}

func lookupStandard(base string) (string, bool) {
	lowered := strings.ToLower(base)
	for _, s := range knownStandards {
		if strings.Contains(lowered, s.marker) {
			return s.name, true
		}
	}
	return "", false
}

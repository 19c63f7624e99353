package xbrl

import (
	"strings"
	"time"

	"github.com/accdata/sheetscan/internal/record"
)

// dateLayouts covers the formats seen inside context period tags across
// filers. Tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"2 January 2006",
	"02 January 2006",
	"January 2, 2006",
	"02/01/2006",
}

// Period is a resolved reporting period: an instant for balance-sheet
// contexts, a start/end pair for duration contexts.
type Period struct {
	Instant *time.Time
	Start   *time.Time
	End     *time.Time
}

// Date returns the single representative date of the period, preferring the
// end of a duration, then an instant. Nil when nothing was resolvable.
func (p *Period) Date() *time.Time {
	if p == nil {
		return nil
	}
	if p.End != nil {
		return p.End
	}
	if p.Instant != nil {
		return p.Instant
	}
	return p.Start
}

// Resolver owns one document's reference tables: context id → period and
// unit id → unit. Both maps are built on first use and discarded with the
// resolver; nothing is shared across documents.
type Resolver struct {
	doc      *Document
	periods  map[string]*Period
	units    map[string]record.Unit
	segments map[string]string
	built    bool
}

// NewResolver creates a resolver scoped to a single parsed document.
func NewResolver(doc *Document) *Resolver {
	return &Resolver{doc: doc}
}

// ResolveUnit resolves a unitRef identifier to a canonical unit. An
// identifier present in the table but carrying an unrecognized marker
// resolves to UnitUnknown; an identifier absent from the table falls back
// to reading a currency marker from the identifier text itself, and only
// when that also fails is the reference unresolved (ok=false).
func (r *Resolver) ResolveUnit(ref string) (record.Unit, bool) {
	r.build()
	if u, ok := r.units[ref]; ok {
		return u, true
	}
	if u, ok := detectCurrency(ref); ok {
		return u, true
	}
	return "", false
}

// ResolvePeriod resolves a contextRef identifier to its reporting period.
// Identifiers absent from the table are tried as literal dates before the
// reference is declared unresolved.
func (r *Resolver) ResolvePeriod(ref string) (*Period, bool) {
	r.build()
	if p, ok := r.periods[ref]; ok {
		return p, true
	}
	if d, ok := parseDate(ref); ok {
		return &Period{Instant: &d}, true
	}
	return nil, false
}

// ContextSegment returns the explicitMember segment text of a context, used
// to raid a value for facts whose own node text is empty.
func (r *Resolver) ContextSegment(ref string) string {
	r.build()
	if seg, ok := r.segments[ref]; ok {
		return seg
	}
	return ""
}

// build walks the tree once, populating both reference tables.
func (r *Resolver) build() {
	if r.built {
		return
	}
	r.built = true
	r.periods = make(map[string]*Period)
	r.units = make(map[string]record.Unit)
	r.segments = make(map[string]string)

	r.doc.Walk(func(n Node) bool {
		switch n.Name() {
		case "xbrli:context", "context":
			id, ok := n.Attr("id")
			if !ok || id == "" {
				return true
			}
			r.periods[id] = periodOf(n)
			if seg := segmentOf(n); seg != "" {
				r.segments[id] = seg
			}
		case "xbrli:unit", "unit":
			id, ok := n.Attr("id")
			if !ok || id == "" {
				return true
			}
			if u, ok := detectCurrency(n.Text()); ok {
				r.units[id] = u
			} else {
				r.units[id] = record.UnitUnknown
			}
		}
		return true
	})
}

// periodOf extracts the period from a context node's subtree.
func periodOf(ctx Node) *Period {
	p := &Period{}
	walkNodes(ctx, func(n Node) {
		d, ok := parseDate(n.Text())
		if !ok {
			return
		}
		switch n.Name() {
		case "xbrli:instant", "instant":
			p.Instant = &d
		case "xbrli:startdate", "startdate":
			p.Start = &d
		case "xbrli:enddate", "enddate":
			p.End = &d
		}
	})
	return p
}

// segmentOf extracts the trailing explicitMember dimension value, if any.
func segmentOf(ctx Node) string {
	var seg string
	walkNodes(ctx, func(n Node) {
		switch n.Name() {
		case "xbrldi:explicitmember", "explicitmember":
			if seg != "" {
				return
			}
			text := strings.TrimSpace(n.Text())
			if i := strings.LastIndex(text, ":"); i >= 0 {
				text = text[i+1:]
			}
			seg = strings.TrimSpace(text)
		}
	})
	return seg
}

func walkNodes(n Node, visit func(Node)) {
	for _, c := range n.Children() {
		visit(c)
		walkNodes(c, visit)
	}
}

// detectCurrency recognizes a currency marker by literal code or symbol.
// Anything else, including the PURE marker on ratio facts, is not a
// currency.
func detectCurrency(s string) (record.Unit, bool) {
	upper := strings.ToUpper(s)
	switch {
	case strings.Contains(upper, "USD") || strings.Contains(s, "$"):
		return record.UnitUSD, true
	case strings.Contains(upper, "GBP") || strings.Contains(s, "£"):
		return record.UnitGBP, true
	case strings.Contains(upper, "EUR") || strings.Contains(s, "€"):
		return record.UnitEUR, true
	}
	return "", false
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// Package record defines the canonical document record emitted by the
// extraction pipeline, and the assembler that builds it from fully-computed
// inputs. The JSON field names are the published schema and must not change;
// occurence_index keeps its historical spelling.
package record

import (
	"encoding/json"
	"time"
)

// Unit is a canonical reporting unit. Unrecognized currency markers map to
// UnitUnknown, never to an empty value.
type Unit string

const (
	UnitUSD     Unit = "USD"
	UnitGBP     Unit = "GBP"
	UnitEUR     Unit = "EUR"
	UnitUnknown Unit = "unknown"
)

// Valid reports whether u is one of the four canonical units.
func (u Unit) Valid() bool {
	switch u {
	case UnitUSD, UnitGBP, UnitEUR, UnitUnknown:
		return true
	}
	return false
}

// Element is a single extracted fact. A nil Unit means the fact's unit
// reference could not be resolved against the document's reference table,
// which is distinct from a resolved-but-unrecognized unit (UnitUnknown).
// Numeric is set if and only if a unit was resolved; otherwise the raw text
// is carried through unchanged.
type Element struct {
	Name            string
	RawValue        string
	Numeric         *float64
	Unit            *Unit
	Date            *time.Time
	OccurrenceIndex int
}

// elementJSON is the wire form of an Element.
type elementJSON struct {
	Name            string  `json:"name"`
	Value           any     `json:"value"`
	Unit            *Unit   `json:"unit"`
	Date            *string `json:"date"`
	OccurrenceIndex int     `json:"occurence_index"`
}

// MarshalJSON emits the canonical element schema: value is numeric when a
// unit was resolved, the raw text otherwise; date is ISO-8601 or null.
func (e Element) MarshalJSON() ([]byte, error) {
	out := elementJSON{
		Name:            e.Name,
		Unit:            e.Unit,
		OccurrenceIndex: e.OccurrenceIndex,
	}
	if e.Numeric != nil {
		out.Value = *e.Numeric
	} else {
		out.Value = e.RawValue
	}
	if e.Date != nil {
		s := e.Date.Format("2006-01-02")
		out.Date = &s
	}
	return json.Marshal(out)
}

// Standard identifies the accounting standard governing a digital filing.
type Standard struct {
	Type string `json:"type"`
	Date string `json:"date"`
	Link string `json:"link"`
}

// Record is the canonical output for one input document. One Record per
// document; owned by the assembler from creation to emission.
type Record struct {
	DocName          string     `json:"doc_name"`
	DocType          string     `json:"doc_type"`
	DocUploadDate    string     `json:"doc_upload_date"`
	ArchiveName      string     `json:"arc_name"`
	Parsed           bool       `json:"doc_parsed"`
	BalanceSheetDate *string    `json:"doc_balancesheetdate"`
	CompanyNumber    *string    `json:"doc_companieshouseregisterednumber"`
	StandardType     *string    `json:"doc_standard_type,omitempty"`
	StandardDate     *string    `json:"doc_standard_date,omitempty"`
	StandardLink     *string    `json:"doc_standard_link,omitempty"`
	Elements         []Element  `json:"elements"`
}

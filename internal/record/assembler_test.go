package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func unitPtr(u Unit) *Unit        { return &u }

func TestAssemble(t *testing.T) {
	bsDate := time.Date(2016, 3, 31, 0, 0, 0, 0, time.UTC)
	meta := Metadata{
		DocName:          "Prod224_0064_00913035_20160331.html",
		DocType:          "html",
		ArchiveName:      "Accounts_Monthly_Data-June2016.zip",
		UploadDate:       time.Date(2016, 7, 2, 9, 30, 0, 0, time.UTC),
		BalanceSheetDate: &bsDate,
		CompanyNumber:    "00913035",
	}
	std := &Standard{Type: "FRS 102", Date: "2014-09-01", Link: "https://xbrl.frc.org.uk/FRS-102/2014-09-01/FRS-102-2014-09-01.xsd"}
	elements := []Element{
		{Name: "totalassets", RawValue: "1234", Numeric: floatPtr(1234), Unit: unitPtr(UnitGBP)},
	}

	rec := Assemble(meta, std, true, elements)

	assert.Equal(t, meta.DocName, rec.DocName)
	assert.Equal(t, "html", rec.DocType)
	assert.Equal(t, "2016-07-02T09:30:00Z", rec.DocUploadDate)
	assert.Equal(t, meta.ArchiveName, rec.ArchiveName)
	assert.True(t, rec.Parsed)
	require.NotNil(t, rec.BalanceSheetDate)
	assert.Equal(t, "2016-03-31", *rec.BalanceSheetDate)
	require.NotNil(t, rec.CompanyNumber)
	assert.Equal(t, "00913035", *rec.CompanyNumber)
	require.NotNil(t, rec.StandardType)
	assert.Equal(t, "FRS 102", *rec.StandardType)
	assert.Len(t, rec.Elements, 1)
}

func TestAssemble_AbsentOptionalsStayAbsent(t *testing.T) {
	meta := Metadata{DocName: "scan.pdf", DocType: "pdf", UploadDate: time.Now()}

	rec := Assemble(meta, nil, false, nil)

	assert.False(t, rec.Parsed)
	assert.Nil(t, rec.BalanceSheetDate)
	assert.Nil(t, rec.CompanyNumber)
	assert.Nil(t, rec.StandardType)
	require.NotNil(t, rec.Elements, "elements must serialize as [], not null")
	assert.Empty(t, rec.Elements)
}

func TestRecord_CanonicalFieldNames(t *testing.T) {
	bsDate := time.Date(2016, 3, 31, 0, 0, 0, 0, time.UTC)
	meta := Metadata{
		DocName:          "doc.html",
		DocType:          "html",
		ArchiveName:      "arc.zip",
		UploadDate:       time.Date(2016, 7, 2, 0, 0, 0, 0, time.UTC),
		BalanceSheetDate: &bsDate,
		CompanyNumber:    "01234567",
	}
	rec := Assemble(meta, nil, true, []Element{
		{Name: "totalassets", RawValue: "1,234", Numeric: floatPtr(1234), Unit: unitPtr(UnitGBP), Date: &bsDate},
	})

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	for _, key := range []string{
		"doc_name", "doc_type", "doc_upload_date", "arc_name", "doc_parsed",
		"doc_balancesheetdate", "doc_companieshouseregisterednumber", "elements",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "doc_standard_type", "absent standard fields are omitted")

	elems, ok := decoded["elements"].([]any)
	require.True(t, ok)
	require.Len(t, elems, 1)
	elem := elems[0].(map[string]any)
	assert.Contains(t, elem, "occurence_index", "field keeps its historical spelling")
	assert.Equal(t, 1234.0, elem["value"])
	assert.Equal(t, "GBP", elem["unit"])
	assert.Equal(t, "2016-03-31", elem["date"])
}

func TestElement_MarshalUnresolvedUnit(t *testing.T) {
	raw, err := json.Marshal(Element{Name: "turnover", RawValue: "12,500"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "12,500", decoded["value"], "raw text survives when no unit resolved")
	assert.Nil(t, decoded["unit"])
	assert.Nil(t, decoded["date"])
}

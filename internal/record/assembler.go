package record

import "time"

// Metadata is the filename- and environment-derived portion of a record,
// fully computed before assembly.
type Metadata struct {
	DocName          string
	DocType          string
	ArchiveName      string
	UploadDate       time.Time
	BalanceSheetDate *time.Time
	CompanyNumber    string
}

// Assemble merges metadata, an optional detected standard, the open-success
// flag and the extracted element list into one Record. It performs no
// resolution of its own; absent optional inputs stay absent, never fatal.
func Assemble(meta Metadata, std *Standard, parsed bool, elements []Element) Record {
	rec := Record{
		DocName:       meta.DocName,
		DocType:       meta.DocType,
		DocUploadDate: meta.UploadDate.Format(time.RFC3339),
		ArchiveName:   meta.ArchiveName,
		Parsed:        parsed,
		Elements:      elements,
	}
	if rec.Elements == nil {
		rec.Elements = []Element{}
	}
	if meta.BalanceSheetDate != nil {
		s := meta.BalanceSheetDate.Format("2006-01-02")
		rec.BalanceSheetDate = &s
	}
	if meta.CompanyNumber != "" {
		n := meta.CompanyNumber
		rec.CompanyNumber = &n
	}
	if std != nil {
		t, d, l := std.Type, std.Date, std.Link
		rec.StandardType = &t
		rec.StandardDate = &d
		rec.StandardLink = &l
	}
	return rec
}

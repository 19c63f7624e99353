// Package filemeta derives filing metadata from the bulk-archive filename
// convention. Filenames look like
//
//	Prod224_0040_08123456_20160331.html
//
// where the last underscore-delimited field is the balance-sheet date
// (yyyymmdd) and the second-to-last is the registrant's registered number.
// Parsing fails soft: fields that cannot be derived are left unset and the
// document still flows through the pipeline.
package filemeta

import (
	"path/filepath"
	"strings"
	"time"
)

const dateLayout = "20060102"

// Meta holds the filename-derived fields for one document.
type Meta struct {
	DocName          string
	DocType          string
	ArchiveName      string
	BalanceSheetDate *time.Time
	CompanyNumber    string
}

// Parse extracts metadata from a document path. The parent directory is
// taken as the archive the document was unpacked from.
func Parse(path string) Meta {
	base := filepath.Base(path)
	meta := Meta{
		DocName:     base,
		ArchiveName: filepath.Base(filepath.Dir(path)),
	}

	if ext := filepath.Ext(base); ext != "" {
		meta.DocType = strings.ToLower(strings.TrimPrefix(ext, "."))
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	fields := strings.Split(stem, "_")
	if len(fields) < 3 {
		return meta
	}

	if d, err := time.Parse(dateLayout, fields[len(fields)-1]); err == nil {
		meta.BalanceSheetDate = &d
		meta.CompanyNumber = fields[len(fields)-2]
	}

	return meta
}

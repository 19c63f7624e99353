// Package sqlite persists canonical records for downstream consumers: the
// nested record as JSON for fidelity, plus the flattened row-per-element
// table bulk analysis wants. Flattening is a pure, lossless reshaping of
// the canonical schema.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/accdata/sheetscan/internal/record"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	doc_name           TEXT NOT NULL,
	doc_type           TEXT NOT NULL,
	doc_upload_date    TEXT NOT NULL,
	arc_name           TEXT NOT NULL,
	doc_parsed         INTEGER NOT NULL,
	balance_sheet_date TEXT,
	company_number     TEXT,
	standard_type      TEXT,
	standard_date      TEXT,
	standard_link      TEXT,
	element_count      INTEGER NOT NULL,
	raw_record         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS elements (
	document_id    INTEGER NOT NULL REFERENCES documents(id),
	name           TEXT NOT NULL,
	raw_value      TEXT NOT NULL,
	numeric_value  REAL,
	unit           TEXT,
	date           TEXT,
	occurence_idx  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_elements_document ON elements(document_id);
CREATE INDEX IF NOT EXISTS idx_elements_name ON elements(name);
`

// Store is a SQLite-backed record sink.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at path and ensures the schema.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveRecord persists one record and its flattened elements in a single
// transaction.
func (s *Store) SaveRecord(ctx context.Context, rec record.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.DocName, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO documents (
			doc_name, doc_type, doc_upload_date, arc_name, doc_parsed,
			balance_sheet_date, company_number,
			standard_type, standard_date, standard_link,
			element_count, raw_record
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.DocName, rec.DocType, rec.DocUploadDate, rec.ArchiveName, rec.Parsed,
		rec.BalanceSheetDate, rec.CompanyNumber,
		rec.StandardType, rec.StandardDate, rec.StandardLink,
		len(rec.Elements), string(raw),
	)
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", rec.DocName, err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading document id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO elements (
			document_id, name, raw_value, numeric_value, unit, date, occurence_idx
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing element insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range rec.Elements {
		var unit *string
		if e.Unit != nil {
			u := string(*e.Unit)
			unit = &u
		}
		var date *string
		if e.Date != nil {
			d := e.Date.Format("2006-01-02")
			date = &d
		}
		if _, err := stmt.ExecContext(ctx,
			docID, e.Name, e.RawValue, e.Numeric, unit, date, e.OccurrenceIndex,
		); err != nil {
			return fmt.Errorf("inserting element %s of %s: %w", e.Name, rec.DocName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record %s: %w", rec.DocName, err)
	}
	return nil
}

// CountDocuments returns the number of stored documents, split by parse
// outcome.
func (s *Store) CountDocuments(ctx context.Context) (parsed, failed int, err error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT doc_parsed, COUNT(*) FROM documents GROUP BY doc_parsed")
	if err != nil {
		return 0, 0, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ok bool
		var n int
		if err := rows.Scan(&ok, &n); err != nil {
			return 0, 0, fmt.Errorf("scanning count: %w", err)
		}
		if ok {
			parsed = n
		} else {
			failed = n
		}
	}
	return parsed, failed, rows.Err()
}

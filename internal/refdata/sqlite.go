package refdata

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSource loads reference data from a SQLite database. Deployments with
// full-size title corpora keep them in a bundled .db file instead of the
// embedded snapshot; the loaded structures are identical either way.
//
// Expected schema:
//
//	CREATE TABLE canonical_titles (id TEXT PRIMARY KEY, display TEXT NOT NULL, category TEXT);
//	CREATE TABLE title_variants   (variant TEXT NOT NULL, canonical_id TEXT NOT NULL);
//	CREATE TABLE title_corpus     (title TEXT NOT NULL);
//	CREATE TABLE canonical_departments (id TEXT PRIMARY KEY, display TEXT NOT NULL, category TEXT NOT NULL);
//	CREATE TABLE department_variants   (variant TEXT NOT NULL, canonical_id TEXT NOT NULL);
//	CREATE TABLE department_abbreviations (abbr TEXT PRIMARY KEY, canonical_id TEXT NOT NULL);
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens a reference database read-only.
func OpenSQLite(path string, maxOpenConns int) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("open reference database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping reference database: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close releases the database handle. The Store loaded from this source
// remains valid; all data is copied out during Load.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// LoadTitles reads curated titles, their variants, and the discovery corpus.
func (s *SQLiteSource) LoadTitles() ([]CanonicalTitle, []string, error) {
	rows, err := s.db.Query(`SELECT id, display, COALESCE(category, '') FROM canonical_titles ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("query canonical_titles: %w", err)
	}
	defer rows.Close()

	var entries []CanonicalTitle
	index := make(map[string]int)
	for rows.Next() {
		var e CanonicalTitle
		if err := rows.Scan(&e.ID, &e.Display, &e.Category); err != nil {
			return nil, nil, fmt.Errorf("scan canonical_titles: %w", err)
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate canonical_titles: %w", err)
	}

	vrows, err := s.db.Query(`SELECT variant, canonical_id FROM title_variants`)
	if err != nil {
		return nil, nil, fmt.Errorf("query title_variants: %w", err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var variant, id string
		if err := vrows.Scan(&variant, &id); err != nil {
			return nil, nil, fmt.Errorf("scan title_variants: %w", err)
		}
		i, ok := index[id]
		if !ok {
			return nil, nil, fmt.Errorf("title variant %q references unknown canonical id %q", variant, id)
		}
		entries[i].Variants = append(entries[i].Variants, strings.TrimSpace(variant))
	}
	if err := vrows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate title_variants: %w", err)
	}

	crows, err := s.db.Query(`SELECT title FROM title_corpus`)
	if err != nil {
		return nil, nil, fmt.Errorf("query title_corpus: %w", err)
	}
	defer crows.Close()

	var corpus []string
	for crows.Next() {
		var title string
		if err := crows.Scan(&title); err != nil {
			return nil, nil, fmt.Errorf("scan title_corpus: %w", err)
		}
		corpus = append(corpus, title)
	}
	if err := crows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate title_corpus: %w", err)
	}

	return entries, corpus, nil
}

// LoadDepartments reads canonical departments, variants, and abbreviations.
func (s *SQLiteSource) LoadDepartments() ([]CanonicalDepartment, map[string]string, error) {
	rows, err := s.db.Query(`SELECT id, display, category FROM canonical_departments ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("query canonical_departments: %w", err)
	}
	defer rows.Close()

	var entries []CanonicalDepartment
	index := make(map[string]int)
	for rows.Next() {
		var e CanonicalDepartment
		if err := rows.Scan(&e.ID, &e.Display, &e.Category); err != nil {
			return nil, nil, fmt.Errorf("scan canonical_departments: %w", err)
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate canonical_departments: %w", err)
	}

	vrows, err := s.db.Query(`SELECT variant, canonical_id FROM department_variants`)
	if err != nil {
		return nil, nil, fmt.Errorf("query department_variants: %w", err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var variant, id string
		if err := vrows.Scan(&variant, &id); err != nil {
			return nil, nil, fmt.Errorf("scan department_variants: %w", err)
		}
		i, ok := index[id]
		if !ok {
			return nil, nil, fmt.Errorf("department variant %q references unknown canonical id %q", variant, id)
		}
		entries[i].Variants = append(entries[i].Variants, strings.TrimSpace(variant))
	}
	if err := vrows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate department_variants: %w", err)
	}

	arows, err := s.db.Query(`SELECT abbr, canonical_id FROM department_abbreviations`)
	if err != nil {
		return nil, nil, fmt.Errorf("query department_abbreviations: %w", err)
	}
	defer arows.Close()

	abbreviations := make(map[string]string)
	for arows.Next() {
		var abbr, id string
		if err := arows.Scan(&abbr, &id); err != nil {
			return nil, nil, fmt.Errorf("scan department_abbreviations: %w", err)
		}
		abbreviations[abbr] = id
	}
	if err := arows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate department_abbreviations: %w", err)
	}

	return entries, abbreviations, nil
}

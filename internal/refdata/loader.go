package refdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed data/titles.json data/title_corpus.json data/departments.json
var dataFS embed.FS

// Store bundles the frozen reference sets for one process.
type Store struct {
	Titles      *TitleSet
	Departments *DepartmentSet
}

// Source supplies raw reference data. Implementations exist for the embedded
// snapshot and for a SQLite database; both feed the same frozen structures.
type Source interface {
	LoadTitles() (entries []CanonicalTitle, corpus []string, err error)
	LoadDepartments() (entries []CanonicalDepartment, abbreviations map[string]string, err error)
}

var (
	defaultStore *Store
	defaultErr   error
	defaultOnce  sync.Once
)

// Default returns the process-wide store backed by the embedded snapshot.
// Loading happens once; the tables are immutable afterwards.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = Load(EmbeddedSource{})
	})
	return defaultStore, defaultErr
}

// Load builds a Store from a Source. A failure here is fatal for matching:
// callers must surface it before attempting any match rather than degrade
// into indistinguishable no-match results.
func Load(src Source) (*Store, error) {
	titleEntries, corpus, err := src.LoadTitles()
	if err != nil {
		return nil, fmt.Errorf("load title reference data: %w", err)
	}
	if len(titleEntries) == 0 {
		return nil, fmt.Errorf("title reference data is empty")
	}

	titles, err := NewTitleSet(titleEntries, corpus)
	if err != nil {
		return nil, fmt.Errorf("build title set: %w", err)
	}

	deptEntries, abbreviations, err := src.LoadDepartments()
	if err != nil {
		return nil, fmt.Errorf("load department reference data: %w", err)
	}
	if len(deptEntries) == 0 {
		return nil, fmt.Errorf("department reference data is empty")
	}

	departments, err := NewDepartmentSet(deptEntries, abbreviations)
	if err != nil {
		return nil, fmt.Errorf("build department set: %w", err)
	}

	return &Store{Titles: titles, Departments: departments}, nil
}

// EmbeddedSource loads the reference snapshot compiled into the binary.
type EmbeddedSource struct{}

type titlesFile struct {
	Canonicals []CanonicalTitle `json:"canonicals"`
}

type corpusFile struct {
	Titles []string `json:"titles"`
}

type departmentsFile struct {
	Canonicals    []CanonicalDepartment `json:"canonicals"`
	Abbreviations map[string]string     `json:"abbreviations"`
}

// LoadTitles reads the embedded curated titles and discovery corpus.
func (EmbeddedSource) LoadTitles() ([]CanonicalTitle, []string, error) {
	raw, err := dataFS.ReadFile("data/titles.json")
	if err != nil {
		return nil, nil, fmt.Errorf("read embedded titles: %w", err)
	}
	var tf titlesFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return nil, nil, fmt.Errorf("parse embedded titles: %w", err)
	}

	raw, err = dataFS.ReadFile("data/title_corpus.json")
	if err != nil {
		return nil, nil, fmt.Errorf("read embedded title corpus: %w", err)
	}
	var cf corpusFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return nil, nil, fmt.Errorf("parse embedded title corpus: %w", err)
	}

	return tf.Canonicals, cf.Titles, nil
}

// LoadDepartments reads the embedded canonical department table.
func (EmbeddedSource) LoadDepartments() ([]CanonicalDepartment, map[string]string, error) {
	raw, err := dataFS.ReadFile("data/departments.json")
	if err != nil {
		return nil, nil, fmt.Errorf("read embedded departments: %w", err)
	}
	var df departmentsFile
	if err := json.Unmarshal(raw, &df); err != nil {
		return nil, nil, fmt.Errorf("parse embedded departments: %w", err)
	}
	return df.Canonicals, df.Abbreviations, nil
}

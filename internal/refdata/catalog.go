// Package refdata provides the immutable canonical reference sets the
// matchers discover against: a curated canonical title list, a larger raw
// title corpus, and the canonical department table with categories.
//
// Two structures are kept deliberately separate: the discovery corpus may
// grow large and noisy, while the curated sets define the only strings the
// engine ever publishes. They are joined by stable canonical IDs.
package refdata

import (
	"fmt"
	"strings"
)

// CanonicalTitle is one curated job title.
type CanonicalTitle struct {
	ID       string   `json:"id"`
	Display  string   `json:"display"`
	Category string   `json:"category,omitempty"`
	Variants []string `json:"variants,omitempty"`
}

// CanonicalDepartment is one curated department with its category.
type CanonicalDepartment struct {
	ID       string   `json:"id"`
	Display  string   `json:"display"`
	Category string   `json:"category"`
	Variants []string `json:"variants,omitempty"`
}

// TitleSet is the frozen title reference: curated canonicals plus the raw
// discovery corpus. Safe for concurrent readers; never mutated after Load.
type TitleSet struct {
	entries     []CanonicalTitle
	byID        map[string]int
	variantToID map[string]string
	corpus      []string
	corpusIndex map[string]string // lowercase corpus entry -> original form
}

// NewTitleSet builds a TitleSet and validates the canonical invariants:
// unique IDs, and no variant claimed by two canonicals.
func NewTitleSet(entries []CanonicalTitle, corpus []string) (*TitleSet, error) {
	s := &TitleSet{
		entries:     entries,
		byID:        make(map[string]int, len(entries)),
		variantToID: make(map[string]string),
		corpus:      corpus,
		corpusIndex: make(map[string]string, len(corpus)),
	}

	for i, e := range entries {
		if e.ID == "" || e.Display == "" {
			return nil, fmt.Errorf("canonical title %d: id and display are required", i)
		}
		if _, dup := s.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate canonical title id %q", e.ID)
		}
		s.byID[e.ID] = i

		for _, variant := range append([]string{e.Display}, e.Variants...) {
			key := strings.ToLower(strings.TrimSpace(variant))
			if key == "" {
				continue
			}
			if prev, dup := s.variantToID[key]; dup && prev != e.ID {
				return nil, fmt.Errorf("title variant %q maps to both %q and %q", variant, prev, e.ID)
			}
			s.variantToID[key] = e.ID
		}
	}

	for _, raw := range corpus {
		key := strings.ToLower(strings.TrimSpace(raw))
		if key == "" {
			continue
		}
		if _, seen := s.corpusIndex[key]; !seen {
			s.corpusIndex[key] = raw
		}
	}

	return s, nil
}

// Entries returns the curated canonical titles.
func (s *TitleSet) Entries() []CanonicalTitle {
	return s.entries
}

// ByID returns the canonical title with the given id.
func (s *TitleSet) ByID(id string) (CanonicalTitle, bool) {
	i, ok := s.byID[id]
	if !ok {
		return CanonicalTitle{}, false
	}
	return s.entries[i], true
}

// CanonicalIDForVariant returns the canonical id a variant string maps to.
// The lookup is case-insensitive.
func (s *TitleSet) CanonicalIDForVariant(variant string) (string, bool) {
	id, ok := s.variantToID[strings.ToLower(strings.TrimSpace(variant))]
	return id, ok
}

// Corpus returns the raw discovery corpus.
func (s *TitleSet) Corpus() []string {
	return s.corpus
}

// CorpusContains looks up text in the corpus case-insensitively and returns
// the corpus's original form plus whether the hit was case-exact.
func (s *TitleSet) CorpusContains(text string) (original string, exact, ok bool) {
	key := strings.ToLower(strings.TrimSpace(text))
	original, ok = s.corpusIndex[key]
	if !ok {
		return "", false, false
	}
	return original, original == strings.TrimSpace(text), true
}

// DepartmentSet is the frozen department reference table.
type DepartmentSet struct {
	entries       []CanonicalDepartment
	byID          map[string]int
	variantToID   map[string]string
	abbreviations map[string]string // short form -> canonical id
}

// NewDepartmentSet builds a DepartmentSet and validates its invariants.
func NewDepartmentSet(entries []CanonicalDepartment, abbreviations map[string]string) (*DepartmentSet, error) {
	s := &DepartmentSet{
		entries:       entries,
		byID:          make(map[string]int, len(entries)),
		variantToID:   make(map[string]string),
		abbreviations: make(map[string]string, len(abbreviations)),
	}

	for i, e := range entries {
		if e.ID == "" || e.Display == "" {
			return nil, fmt.Errorf("canonical department %d: id and display are required", i)
		}
		if _, dup := s.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate canonical department id %q", e.ID)
		}
		s.byID[e.ID] = i

		for _, variant := range append([]string{e.Display}, e.Variants...) {
			key := strings.ToLower(strings.TrimSpace(variant))
			if key == "" {
				continue
			}
			if prev, dup := s.variantToID[key]; dup && prev != e.ID {
				return nil, fmt.Errorf("department variant %q maps to both %q and %q", variant, prev, e.ID)
			}
			s.variantToID[key] = e.ID
		}
	}

	for abbr, id := range abbreviations {
		if _, ok := s.byID[id]; !ok {
			return nil, fmt.Errorf("abbreviation %q targets unknown department id %q", abbr, id)
		}
		s.abbreviations[strings.ToLower(abbr)] = id
	}

	return s, nil
}

// Entries returns the curated canonical departments.
func (s *DepartmentSet) Entries() []CanonicalDepartment {
	return s.entries
}

// ByID returns the canonical department with the given id.
func (s *DepartmentSet) ByID(id string) (CanonicalDepartment, bool) {
	i, ok := s.byID[id]
	if !ok {
		return CanonicalDepartment{}, false
	}
	return s.entries[i], true
}

// CanonicalIDForVariant returns the canonical id a variant maps to.
func (s *DepartmentSet) CanonicalIDForVariant(variant string) (string, bool) {
	id, ok := s.variantToID[strings.ToLower(strings.TrimSpace(variant))]
	return id, ok
}

// ExpandAbbreviation resolves short forms like "hr" or "dpw".
func (s *DepartmentSet) ExpandAbbreviation(token string) (string, bool) {
	id, ok := s.abbreviations[strings.ToLower(token)]
	return id, ok
}

// CategoryOf returns the category for a canonical department id, or "".
func (s *DepartmentSet) CategoryOf(id string) string {
	if e, ok := s.ByID(id); ok {
		return e.Category
	}
	return ""
}

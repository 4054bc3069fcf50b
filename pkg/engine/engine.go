// Package engine is the public facade over the contact canonicalization and
// comparison core: reference data loading, tiered matching, canonical
// naming, and weighted record comparison behind one constructor.
package engine

import (
	"fmt"

	"github.com/spherical-ai/contact-engine/internal/compare"
	"github.com/spherical-ai/contact-engine/internal/config"
	"github.com/spherical-ai/contact-engine/internal/matching"
	"github.com/spherical-ai/contact-engine/internal/observability"
	"github.com/spherical-ai/contact-engine/internal/refdata"
	"github.com/spherical-ai/contact-engine/internal/semantics"
)

// Engine bundles the matchers and the comparator over one frozen reference
// store. All methods are safe for concurrent use; construction is the only
// place reference data I/O happens.
type Engine struct {
	cfg         *config.Config
	logger      *observability.Logger
	store       *refdata.Store
	titles      *matching.TitleMatcher
	departments *matching.DepartmentMatcher
	comparator  *compare.Comparator
	sqlite      *refdata.SQLiteSource
}

// New builds an Engine from configuration. Reference-data failures are
// fatal here, never deferred into silent no-matches later.
func New(cfg *config.Config, logger *observability.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = observability.Nop()
	}

	e := &Engine{cfg: cfg, logger: logger.WithComponent("engine")}

	var err error
	switch cfg.RefData.Source {
	case "sqlite":
		e.sqlite, err = refdata.OpenSQLite(cfg.RefData.SQLite.Path, cfg.RefData.SQLite.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		e.store, err = refdata.Load(e.sqlite)
	default:
		e.store, err = refdata.Default()
	}
	if err != nil {
		return nil, err
	}

	vocab, err := semantics.Default()
	if err != nil {
		return nil, fmt.Errorf("load semantic vocabulary: %w", err)
	}
	guard := semantics.NewSafeguard(vocab)

	e.titles = matching.NewTitleMatcher(e.store, guard, matching.TitleMatcherOptions{
		CuratedFloor: cfg.Matching.TitleThreshold,
		MemoSize:     cfg.Matching.MemoCacheSize,
		Logger:       logger,
	})
	e.departments = matching.NewDepartmentMatcher(e.store, guard, matching.DepartmentMatcherOptions{
		Floor:    cfg.Matching.DepartmentThreshold,
		MemoSize: cfg.Matching.MemoCacheSize,
		Logger:   logger,
	})

	e.comparator, err = compare.NewComparator(guard, logger)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("refdata_source", cfg.RefData.Source).
		Int("curated_titles", len(e.store.Titles.Entries())).
		Int("title_corpus", len(e.store.Titles.Corpus())).
		Int("departments", len(e.store.Departments.Entries())).
		Msg("engine initialized")
	return e, nil
}

// Close releases the reference database handle when one is open. The loaded
// tables stay valid.
func (e *Engine) Close() error {
	if e.sqlite != nil {
		return e.sqlite.Close()
	}
	return nil
}

// MatchTitle canonicalizes a normalized job title. departmentContext is an
// optional tie-break hint.
func (e *Engine) MatchTitle(title, departmentContext string) matching.MatchResult {
	return e.titles.Match(title, departmentContext)
}

// MatchDepartment canonicalizes a normalized department name.
func (e *Engine) MatchDepartment(department string) matching.MatchResult {
	return e.departments.Match(department)
}

// CanonicalTitle matches and names a title in one call. Overrides are
// validated eagerly and win over the inferred match.
func (e *Engine) CanonicalTitle(title, departmentContext string, overrides map[string]string) (string, matching.MatchResult, error) {
	if err := matching.ValidateOverrides(overrides); err != nil {
		return "", matching.MatchResult{}, err
	}
	match := e.titles.Match(title, departmentContext)
	return e.titles.ToCanonical(title, match, overrides), match, nil
}

// CanonicalDepartment matches and names a department in one call.
func (e *Engine) CanonicalDepartment(department string, overrides map[string]string) (string, matching.MatchResult, error) {
	if err := matching.ValidateOverrides(overrides); err != nil {
		return "", matching.MatchResult{}, err
	}
	match := e.departments.Match(department)
	return e.departments.ToCanonical(department, match, overrides), match, nil
}

// DepartmentCategory returns the category of a canonical department id.
func (e *Engine) DepartmentCategory(canonicalID string) string {
	return e.store.Departments.CategoryOf(canonicalID)
}

// TopTitleMatches lists the best title candidates for interactive review.
func (e *Engine) TopTitleMatches(title string, limit int) []matching.Candidate {
	return e.titles.TopMatches(title, limit)
}

// TopDepartmentMatches lists the best department candidates.
func (e *Engine) TopDepartmentMatches(department string, limit int) []matching.Candidate {
	return e.departments.TopMatches(department, limit)
}

// Compare scores two normalized records. A nil Weights in opts falls back
// to the configured weights, then to the built-in defaults.
func (e *Engine) Compare(a, b compare.Record, opts compare.Options) (compare.ComparisonResult, error) {
	if opts.Weights == nil && len(e.cfg.Compare.Weights) > 0 {
		opts.Weights = e.cfg.Compare.Weights
	}
	return e.comparator.Compare(a, b, opts)
}

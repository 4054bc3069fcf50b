package matching

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/spherical-ai/contact-engine/internal/observability"
	"github.com/spherical-ai/contact-engine/internal/refdata"
	"github.com/spherical-ai/contact-engine/internal/semantics"
)

const scoreEpsilon = 1e-9

// TitleMatcher maps a normalized job title to a canonical entry using three
// tiers tried in order: exact lookup, fuzzy over the raw discovery corpus,
// fuzzy over the curated canonical list. The semantic safeguard is a hard
// veto inside both fuzzy tiers.
//
// The matcher is stateless apart from a bounded memo cache and is safe for
// concurrent use.
type TitleMatcher struct {
	titles       *refdata.TitleSet
	departments  *refdata.DepartmentSet
	guard        *semantics.Safeguard
	corpusFloor  float64
	curatedFloor float64
	logger       *observability.Logger
	memo         *lru.Cache[string, MatchResult]
}

// TitleMatcherOptions tunes a TitleMatcher. Zero values select defaults.
type TitleMatcherOptions struct {
	// CorpusFloor raises the fuzzy-corpus acceptance floor. Values below
	// the calibrated default are ignored: lowering the floor would admit
	// matches the confidence table has no entry for.
	CorpusFloor float64

	// CuratedFloor raises the curated-tier acceptance floor likewise.
	CuratedFloor float64

	// MemoSize bounds the memo cache. 0 selects the default; negative
	// disables memoization entirely.
	MemoSize int

	Logger *observability.Logger
}

// NewTitleMatcher builds a matcher over the frozen reference store.
func NewTitleMatcher(store *refdata.Store, guard *semantics.Safeguard, opts TitleMatcherOptions) *TitleMatcher {
	m := &TitleMatcher{
		titles:       store.Titles,
		departments:  store.Departments,
		guard:        guard,
		corpusFloor:  titleCorpusFloor,
		curatedFloor: titleCuratedFloor,
		logger:       opts.Logger,
		memo:         newMemo(opts.MemoSize),
	}
	if opts.CorpusFloor > m.corpusFloor {
		m.corpusFloor = opts.CorpusFloor
	}
	if opts.CuratedFloor > m.curatedFloor {
		m.curatedFloor = opts.CuratedFloor
	}
	if m.logger == nil {
		m.logger = observability.Nop()
	}
	return m
}

// Match canonicalizes one normalized title. departmentContext, when
// non-empty, breaks ties between equally scored candidates in favor of the
// one whose category matches the department's; it never relaxes a floor.
func (m *TitleMatcher) Match(input, departmentContext string) MatchResult {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return MatchResult{Tier: TierNone}
	}

	key := memoKey("t", trimmed, departmentContext)
	if m.memo != nil {
		if cached, ok := m.memo.Get(key); ok {
			return cached
		}
	}

	result := m.match(trimmed, departmentContext)
	if m.memo != nil {
		m.memo.Add(key, result)
	}
	return result
}

func (m *TitleMatcher) match(input, departmentContext string) MatchResult {
	// Exact tier. A corpus hit outranks a curated hit because a case-exact
	// corpus entry is the strongest evidence available.
	if original, caseExact, ok := m.titles.CorpusContains(input); ok {
		conf := confTitleCorpusFolded
		if caseExact {
			conf = confTitleCorpusCaseExact
		}
		id, _ := m.titles.CanonicalIDForVariant(original)
		return MatchResult{
			CanonicalID: id,
			Matched:     original,
			Tier:        TierExact,
			RawScore:    1.0,
			Confidence:  conf,
		}
	}
	if id, ok := m.titles.CanonicalIDForVariant(input); ok {
		entry, _ := m.titles.ByID(id)
		return MatchResult{
			CanonicalID: id,
			Matched:     entry.Display,
			Tier:        TierExact,
			RawScore:    1.0,
			Confidence:  confTitleCuratedExact,
		}
	}

	contextCategory := m.contextCategory(departmentContext)
	inputHasSignal := m.guard.HasSignal(input)

	vetoed := false
	vetoScore := 0.0

	// Fuzzy over the discovery corpus.
	if r, v, vs := m.fuzzyCorpus(input, inputHasSignal, contextCategory); r.Found() {
		return r
	} else if v {
		vetoed = true
		vetoScore = vs
	}

	// Fuzzy over the curated list.
	if r, v, vs := m.fuzzyCurated(input, contextCategory); r.Found() {
		return r
	} else if v && vs > vetoScore {
		vetoed = true
		vetoScore = vs
	}

	return MatchResult{Tier: TierNone, Vetoed: vetoed, RawScore: vetoScore}
}

type titleCandidate struct {
	score          float64
	entry          string
	canonicalID    string
	display        string
	categoryAgrees bool
	found          bool
}

func (m *TitleMatcher) fuzzyCorpus(input string, inputHasSignal bool, contextCategory string) (MatchResult, bool, float64) {
	var best titleCandidate
	vetoed := false
	vetoScore := 0.0

	for _, entry := range m.titles.Corpus() {
		score := TokenSortRatio(input, entry)
		floor := m.corpusFloor
		// A generic single-word candidate must clear a higher bar against
		// a domain-specific input: generic terms must not soak up specific
		// ones cheaply.
		if inputHasSignal && m.isGenericTerm(entry) {
			floor = titleCorpusGenericFloor
		}
		if score < floor {
			continue
		}

		if m.guard.Check(input, entry).Conflict() {
			vetoed = true
			if score > vetoScore {
				vetoScore = score
			}
			m.logger.Debug().
				Str("input", input).
				Str("candidate", entry).
				Float64("score", score).
				Msg("title candidate vetoed on semantic conflict")
			continue
		}

		id, _ := m.titles.CanonicalIDForVariant(entry)
		cand := titleCandidate{
			score:          score,
			entry:          entry,
			canonicalID:    id,
			display:        m.displayFor(id, entry),
			categoryAgrees: contextCategory != "" && m.titleCategory(id) == contextCategory,
			found:          true,
		}
		if cand.beats(best) {
			best = cand
		}
	}

	if !best.found {
		return MatchResult{}, vetoed, vetoScore
	}
	return MatchResult{
		CanonicalID: best.canonicalID,
		Matched:     best.entry,
		Tier:        TierFuzzyStrict,
		RawScore:    best.score,
		Confidence:  titleCorpusConfidence(best.score),
	}, vetoed, vetoScore
}

func (m *TitleMatcher) fuzzyCurated(input string, contextCategory string) (MatchResult, bool, float64) {
	var best titleCandidate
	vetoed := false
	vetoScore := 0.0

	for _, entry := range m.titles.Entries() {
		for _, variant := range append([]string{entry.Display}, entry.Variants...) {
			score := TokenSortRatio(input, variant)
			if score < m.curatedFloor {
				continue
			}

			if m.guard.Check(input, variant).Conflict() {
				vetoed = true
				if score > vetoScore {
					vetoScore = score
				}
				continue
			}

			cand := titleCandidate{
				score:          score,
				entry:          variant,
				canonicalID:    entry.ID,
				display:        entry.Display,
				categoryAgrees: contextCategory != "" && entry.Category == contextCategory,
				found:          true,
			}
			if cand.beats(best) {
				best = cand
			}
		}
	}

	if !best.found {
		return MatchResult{}, vetoed, vetoScore
	}
	return MatchResult{
		CanonicalID: best.canonicalID,
		Matched:     best.entry,
		Tier:        TierFuzzyLenient,
		RawScore:    best.score,
		Confidence:  titleCuratedConfidence(input, best.entry, best.score),
	}, vetoed, vetoScore
}

// beats orders candidates deterministically: higher score, then department
// category agreement, then shorter display form, then lexicographic.
func (c titleCandidate) beats(other titleCandidate) bool {
	if !other.found {
		return true
	}
	if c.score > other.score+scoreEpsilon {
		return true
	}
	if c.score < other.score-scoreEpsilon {
		return false
	}
	if c.categoryAgrees != other.categoryAgrees {
		return c.categoryAgrees
	}
	if len(c.display) != len(other.display) {
		return len(c.display) < len(other.display)
	}
	return c.display < other.display
}

// isGenericTerm reports whether a corpus entry is a lone common word with no
// domain signal of its own.
func (m *TitleMatcher) isGenericTerm(entry string) bool {
	return len(semantics.Tokenize(entry)) == 1 && !m.guard.HasSignal(entry)
}

func (m *TitleMatcher) displayFor(canonicalID, fallback string) string {
	if entry, ok := m.titles.ByID(canonicalID); ok {
		return entry.Display
	}
	return fallback
}

func (m *TitleMatcher) titleCategory(canonicalID string) string {
	if entry, ok := m.titles.ByID(canonicalID); ok {
		return entry.Category
	}
	return ""
}

// contextCategory resolves an optional department hint to its category. The
// hint may be a department name, a known variant, or a category itself.
func (m *TitleMatcher) contextCategory(departmentContext string) string {
	hint := strings.TrimSpace(departmentContext)
	if hint == "" {
		return ""
	}
	if id, ok := m.departments.CanonicalIDForVariant(hint); ok {
		return m.departments.CategoryOf(id)
	}
	for _, entry := range m.departments.Entries() {
		if strings.EqualFold(entry.Category, hint) {
			return entry.Category
		}
	}
	return ""
}

// TitleSimilarity scores two title strings with the matcher's token-sort
// ratio. Empty input on either side scores 0.
func TitleSimilarity(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	return TokenSortRatio(a, b)
}

// TopMatches returns up to limit corpus and curated candidates scoring at
// or above the corpus floor, best first, conflicts excluded.
func (m *TitleMatcher) TopMatches(input string, limit int) []Candidate {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || limit <= 0 {
		return nil
	}

	best := make(map[string]Candidate)
	consider := func(id, display string, score float64) {
		if prev, ok := best[display]; ok && prev.Score >= score {
			return
		}
		best[display] = Candidate{CanonicalID: id, Display: display, Score: score}
	}

	for _, entry := range m.titles.Corpus() {
		s := TokenSortRatio(trimmed, entry)
		if s < m.corpusFloor || m.guard.Check(trimmed, entry).Conflict() {
			continue
		}
		id, _ := m.titles.CanonicalIDForVariant(entry)
		consider(id, m.displayFor(id, entry), s)
	}

	for _, entry := range m.titles.Entries() {
		for _, variant := range append([]string{entry.Display}, entry.Variants...) {
			s := TokenSortRatio(trimmed, variant)
			if s < m.corpusFloor || m.guard.Check(trimmed, variant).Conflict() {
				continue
			}
			consider(entry.ID, entry.Display, s)
		}
	}

	collector := newCandidateCollector(limit)
	for _, cand := range best {
		collector.add(cand)
	}
	return collector.sorted()
}

// titleCuratedConfidence scales the curated-tier score into its confidence
// band, with a small bonus when one string wholly contains the other.
func titleCuratedConfidence(input, candidate string, score float64) float64 {
	conf := scaleConfidence(score, titleCuratedFloor, confTitleCuratedMin, confTitleCuratedMax)
	a := strings.ToLower(input)
	b := strings.ToLower(candidate)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		conf += 0.03
	}
	if conf > confTitleCuratedMax {
		conf = confTitleCuratedMax
	}
	return conf
}

package matching

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/spherical-ai/contact-engine/internal/observability"
	"github.com/spherical-ai/contact-engine/internal/refdata"
	"github.com/spherical-ai/contact-engine/internal/semantics"
)

// deptStoplist holds generic organizational tokens stripped from both sides
// before any pass, so matching is driven by the substantive words.
var deptStoplist = map[string]struct{}{
	"department": {}, "dept": {}, "division": {}, "div": {},
	"bureau": {}, "agency": {}, "office": {},
	"city": {}, "county": {}, "state": {}, "municipal": {},
	"town": {}, "township": {}, "village": {}, "borough": {},
	"of": {}, "the": {}, "and": {},
}

// deptLocationQualifiers are site/facility words additionally ignored by the
// partial pass, which exists to absorb exactly this kind of trailing
// qualifier ("Water Department - North Plant").
var deptLocationQualifiers = map[string]struct{}{
	"north": {}, "south": {}, "east": {}, "west": {}, "central": {},
	"downtown": {}, "annex": {}, "branch": {}, "building": {},
	"campus": {}, "center": {}, "complex": {}, "facility": {},
	"hall": {}, "plant": {}, "site": {}, "station": {},
}

// DepartmentMatcher maps a normalized department name to the canonical
// department table using an abbreviation/variant exact pass followed by
// three fuzzy passes of decreasing strictness. The semantic safeguard acts
// as a soft veto: a conflicting candidate is skipped and the pass continues.
type DepartmentMatcher struct {
	departments *refdata.DepartmentSet
	guard       *semantics.Safeguard
	floor       float64
	logger      *observability.Logger
	memo        *lru.Cache[string, MatchResult]
}

// DepartmentMatcherOptions tunes a DepartmentMatcher. Zero values select
// defaults.
type DepartmentMatcherOptions struct {
	// Floor raises the partial-pass acceptance floor; values below the
	// calibrated default are ignored.
	Floor float64

	// MemoSize bounds the memo cache. 0 selects the default; negative
	// disables memoization.
	MemoSize int

	Logger *observability.Logger
}

// NewDepartmentMatcher builds a matcher over the frozen reference store.
func NewDepartmentMatcher(store *refdata.Store, guard *semantics.Safeguard, opts DepartmentMatcherOptions) *DepartmentMatcher {
	m := &DepartmentMatcher{
		departments: store.Departments,
		guard:       guard,
		floor:       deptPartialFloor,
		logger:      opts.Logger,
		memo:        newMemo(opts.MemoSize),
	}
	if opts.Floor > m.floor {
		m.floor = opts.Floor
	}
	if m.logger == nil {
		m.logger = observability.Nop()
	}
	return m
}

// Match canonicalizes one normalized department name.
func (m *DepartmentMatcher) Match(input string) MatchResult {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return MatchResult{Tier: TierNone}
	}

	key := memoKey("d", trimmed, "")
	if m.memo != nil {
		if cached, ok := m.memo.Get(key); ok {
			return cached
		}
	}

	result := m.match(trimmed)
	if m.memo != nil {
		m.memo.Add(key, result)
	}
	return result
}

func (m *DepartmentMatcher) match(input string) MatchResult {
	// Room/building strings are location data that leaked into the
	// department column; force-matching them would only produce noise.
	if isLikelyLocation(input) {
		return MatchResult{Tier: TierNone}
	}

	// Abbreviation and exact-variant pre-pass on the raw input.
	if r, ok := m.exact(input); ok {
		return r
	}

	stripped := stripTokens(input, deptStoplist)
	if stripped != "" && stripped != strings.ToLower(input) {
		// "Public Works Dept" collapses to "public works" here.
		if r, ok := m.exact(stripped); ok {
			return r
		}
	}
	if stripped == "" {
		// Nothing substantive left ("City Department"), no basis to match.
		return MatchResult{Tier: TierNone}
	}

	vetoed := false
	vetoScore := 0.0
	note := func(v bool, vs float64) {
		if v {
			vetoed = true
			if vs > vetoScore {
				vetoScore = vs
			}
		}
	}

	// Pass 1 (strict): token-sort ratio on the stripped strings.
	if r, v, vs := m.pass(stripped, TokenSortRatio, deptStrictFloor, TierFuzzyStrict, false); r.Found() {
		return r
	} else {
		note(v, vs)
	}

	// Pass 2 (lenient): lower floor, accepted only under semantic
	// agreement or fail-open.
	if r, v, vs := m.pass(stripped, TokenSortRatio, deptLenientFloor, TierFuzzyLenient, true); r.Found() {
		return r
	} else {
		note(v, vs)
	}

	// Pass 3 (partial): token-set ratio with location qualifiers dropped,
	// absorbing site suffixes on an otherwise-matching name.
	partial := stripTokens(stripped, deptLocationQualifiers)
	if partial == "" {
		partial = stripped
	}
	if r, v, vs := m.pass(partial, TokenSetRatio, m.floor, TierFuzzyPartial, false); r.Found() {
		return r
	} else {
		note(v, vs)
	}

	return MatchResult{Tier: TierNone, Vetoed: vetoed, RawScore: vetoScore}
}

// exact resolves abbreviations and known variants.
func (m *DepartmentMatcher) exact(input string) (MatchResult, bool) {
	if id, ok := m.departments.ExpandAbbreviation(input); ok {
		entry, _ := m.departments.ByID(id)
		return MatchResult{
			CanonicalID: id,
			Matched:     entry.Display,
			Tier:        TierExact,
			RawScore:    1.0,
			Confidence:  confDeptExact,
		}, true
	}
	if id, ok := m.departments.CanonicalIDForVariant(input); ok {
		entry, _ := m.departments.ByID(id)
		return MatchResult{
			CanonicalID: id,
			Matched:     entry.Display,
			Tier:        TierExact,
			RawScore:    1.0,
			Confidence:  confDeptExact,
		}, true
	}
	return MatchResult{}, false
}

type deptCandidate struct {
	score   float64
	id      string
	display string
	capped  bool
	found   bool
}

// pass runs one fuzzy pass over every canonical display and variant,
// pre-stripped of stoplist tokens. When gated is true, acceptance requires
// semantic agreement or fail-open, and one-sided signal caps confidence.
func (m *DepartmentMatcher) pass(input string, score func(a, b string) float64, floor float64, tier Tier, gated bool) (MatchResult, bool, float64) {
	var best deptCandidate
	vetoed := false
	vetoScore := 0.0

	for _, entry := range m.departments.Entries() {
		for _, variant := range append([]string{entry.Display}, entry.Variants...) {
			candidate := stripTokens(variant, deptStoplist)
			if candidate == "" {
				continue
			}
			s := score(input, candidate)
			if s < floor {
				continue
			}

			decision := m.guard.Check(input, candidate)
			if decision.Conflict() {
				// Soft veto: skip this candidate, keep scanning.
				vetoed = true
				if s > vetoScore {
					vetoScore = s
				}
				m.logger.Debug().
					Str("input", input).
					Str("candidate", variant).
					Str("tier", tier.String()).
					Float64("score", s).
					Msg("department candidate skipped on semantic conflict")
				continue
			}

			cand := deptCandidate{
				score:   s,
				id:      entry.ID,
				display: entry.Display,
				capped:  gated && decision.Verdict == semantics.VerdictPartialSignal,
				found:   true,
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
		CanonicalID: best.id,
		Matched:     best.display,
		Tier:        tier,
		RawScore:    best.score,
		Confidence:  deptConfidence(tier, best.score, best.capped),
	}, vetoed, vetoScore
}

func (c deptCandidate) beats(other deptCandidate) bool {
	if !other.found {
		return true
	}
	if c.score > other.score+scoreEpsilon {
		return true
	}
	if c.score < other.score-scoreEpsilon {
		return false
	}
	if len(c.display) != len(other.display) {
		return len(c.display) < len(other.display)
	}
	return c.display < other.display
}

func deptConfidence(tier Tier, score float64, capped bool) float64 {
	var conf float64
	switch tier {
	case TierFuzzyStrict:
		conf = scaleConfidence(score, deptStrictFloor, confDeptStrictMin, confDeptStrictMax)
	case TierFuzzyLenient:
		conf = scaleConfidence(score, deptLenientFloor, confDeptLenientMin, confDeptLenientMax)
	case TierFuzzyPartial:
		conf = scaleConfidence(score, deptPartialFloor, confDeptPartialMin, confDeptPartialMax)
	default:
		conf = confDeptExact
	}
	if capped && conf > deptPartialSignalCeiling {
		conf = deptPartialSignalCeiling
	}
	return conf
}

// roomWords mark strings that describe a place inside a building rather
// than an organizational unit.
var roomWords = map[string]struct{}{
	"room": {}, "rm": {}, "suite": {}, "ste": {},
	"floor": {}, "fl": {}, "unit": {}, "bldg": {},
}

// isLikelyLocation reports whether the input reads as a room or building
// reference: a room word alongside a numbered token, e.g. "Room 101" or
// "Harbor Building 04B".
func isLikelyLocation(s string) bool {
	tokens := semantics.Tokenize(s)
	hasRoomWord := false
	hasNumber := false
	for _, t := range tokens {
		if _, ok := roomWords[t]; ok {
			hasRoomWord = true
		}
		if t == "building" {
			hasRoomWord = true
		}
		for _, r := range t {
			if r >= '0' && r <= '9' {
				hasNumber = true
				break
			}
		}
	}
	return hasRoomWord && hasNumber
}

// DepartmentSimilarity scores two department strings with the matcher's own
// preprocessing: stoplist stripping then token-sort ratio. Empty input on
// either side scores 0.
func DepartmentSimilarity(a, b string) float64 {
	sa := stripTokens(a, deptStoplist)
	sb := stripTokens(b, deptStoplist)
	if sa == "" || sb == "" {
		return 0
	}
	return TokenSortRatio(sa, sb)
}

// TopMatches returns up to limit candidates scoring at or above the partial
// floor, best first, conflicts excluded. Intended for interactive
// validation of the reference data, not for the hot path.
func (m *DepartmentMatcher) TopMatches(input string, limit int) []Candidate {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || limit <= 0 || isLikelyLocation(trimmed) {
		return nil
	}
	stripped := stripTokens(trimmed, deptStoplist)
	if stripped == "" {
		return nil
	}

	collector := newCandidateCollector(limit)
	for _, entry := range m.departments.Entries() {
		best := 0.0
		for _, variant := range append([]string{entry.Display}, entry.Variants...) {
			candidate := stripTokens(variant, deptStoplist)
			if candidate == "" {
				continue
			}
			s := TokenSetRatio(stripped, candidate)
			if s < m.floor || m.guard.Check(stripped, candidate).Conflict() {
				continue
			}
			if s > best {
				best = s
			}
		}
		if best > 0 {
			collector.add(Candidate{CanonicalID: entry.ID, Display: entry.Display, Score: best})
		}
	}
	return collector.sorted()
}

// stripTokens removes stoplisted tokens and rejoins the remainder in the
// original order, lowercased.
func stripTokens(s string, stoplist map[string]struct{}) string {
	tokens := semantics.Tokenize(s)
	kept := tokens[:0]
	for _, t := range tokens {
		if _, drop := stoplist[t]; !drop {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// CategoryOf exposes the canonical category for a matched department id.
func (m *DepartmentMatcher) CategoryOf(canonicalID string) string {
	return m.departments.CategoryOf(canonicalID)
}

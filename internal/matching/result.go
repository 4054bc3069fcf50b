package matching

// Tier identifies which strategy level produced a match.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierFuzzyStrict
	TierFuzzyLenient
	TierFuzzyPartial
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "EXACT"
	case TierFuzzyStrict:
		return "FUZZY_STRICT"
	case TierFuzzyLenient:
		return "FUZZY_LENIENT"
	case TierFuzzyPartial:
		return "FUZZY_PARTIAL"
	default:
		return "NONE"
	}
}

// MatchResult is the outcome of one canonicalization attempt. A no-match is
// a normal result, not an error: Tier is TierNone and Confidence is 0.
//
// Vetoed true always implies CanonicalID empty: a semantically conflicting
// candidate is never published, however high its raw score.
type MatchResult struct {
	// CanonicalID is the stable id of the matched curated entry, empty when
	// the discovery hit has no curated mapping or no match was found.
	CanonicalID string `json:"canonical_id,omitempty"`

	// Matched is the raw reference entry the discovery tier hit, in its
	// original form. Naming goes through the canonical mapper, never
	// through this field directly.
	Matched string `json:"matched,omitempty"`

	Tier       Tier    `json:"tier"`
	RawScore   float64 `json:"raw_score"`
	Confidence float64 `json:"confidence"`
	Vetoed     bool    `json:"vetoed"`
}

// Found reports whether any tier accepted a candidate.
func (r MatchResult) Found() bool {
	return r.Tier != TierNone
}

package semantics

// Verdict classifies the semantic relationship between two strings.
type Verdict int

const (
	// VerdictNoSignal means neither string carries domain tags; there is not
	// enough information to judge, so the match is allowed (fail-open).
	VerdictNoSignal Verdict = iota
	// VerdictAgreement means both strings carry domain tags and the tag sets
	// intersect.
	VerdictAgreement
	// VerdictPartialSignal means exactly one string carries domain tags.
	// Callers cap confidence at a moderate ceiling rather than veto, since
	// partial information alone cannot disqualify a candidate.
	VerdictPartialSignal
	// VerdictConflict means both strings carry domain tags and the sets are
	// disjoint. Title matching treats this as a hard veto; department
	// matching skips the candidate and continues the pass.
	VerdictConflict
)

// String returns a human-readable verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictNoSignal:
		return "no_signal"
	case VerdictAgreement:
		return "agreement"
	case VerdictPartialSignal:
		return "partial_signal"
	case VerdictConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a safeguard check. DomainsA and DomainsB are
// the domain tags each side contributed, in no particular order; both are
// nil for VerdictNoSignal.
type Decision struct {
	Verdict  Verdict
	DomainsA []string
	DomainsB []string
}

// Conflict reports whether the decision is a hard conflict.
func (d Decision) Conflict() bool {
	return d.Verdict == VerdictConflict
}

// Safeguard checks candidate pairs for domain incompatibility. It holds only
// an immutable vocabulary reference and is safe for concurrent use; a check
// is a handful of map lookups, cheap enough for inner matching loops.
type Safeguard struct {
	vocab *Vocabulary
}

// NewSafeguard creates a safeguard over the given vocabulary.
func NewSafeguard(vocab *Vocabulary) *Safeguard {
	return &Safeguard{vocab: vocab}
}

// Check compares the domain signals of two strings.
//
// Token voting: each side's tokens vote their domains; neutral tokens
// evaporate. No votes on either side is no-signal. Votes on one side only is
// partial-signal. Votes on both sides conflict only when the sets are
// disjoint.
func (s *Safeguard) Check(textA, textB string) Decision {
	domainsA := s.vocab.ExtractDomains(textA)
	domainsB := s.vocab.ExtractDomains(textB)

	switch {
	case len(domainsA) == 0 && len(domainsB) == 0:
		return Decision{Verdict: VerdictNoSignal}
	case len(domainsA) == 0 || len(domainsB) == 0:
		return Decision{
			Verdict:  VerdictPartialSignal,
			DomainsA: setToSlice(domainsA),
			DomainsB: setToSlice(domainsB),
		}
	}

	for d := range domainsA {
		if _, ok := domainsB[d]; ok {
			return Decision{
				Verdict:  VerdictAgreement,
				DomainsA: setToSlice(domainsA),
				DomainsB: setToSlice(domainsB),
			}
		}
	}

	return Decision{
		Verdict:  VerdictConflict,
		DomainsA: setToSlice(domainsA),
		DomainsB: setToSlice(domainsB),
	}
}

// HasSignal reports whether text contributes at least one domain tag.
func (s *Safeguard) HasSignal(text string) bool {
	return len(s.vocab.ExtractDomains(text)) > 0
}

func setToSlice(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	return out
}

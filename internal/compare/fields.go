package compare

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/spherical-ai/contact-engine/internal/matching"
)

// Field-scorer policy constants.
const (
	// Name scoring blends first- and last-name similarity equally. A
	// disagreeing last name caps the blend: first-name similarity alone
	// must not carry two different people over a dedup threshold.
	nameFirstShare          = 0.5
	nameLastShare           = 0.5
	lastNameAgreementFloor  = 0.80
	nameLastMismatchCeiling = 0.40
	// One record having only a single name token leaves the surname
	// unverified; the score is capped rather than zeroed.
	nameMissingSurnameCeiling = 0.80

	// Same-domain email scores live in [0.5, 1.0]; cross-domain scores are
	// scaled into [0, 0.4] so the weakest same-domain pair still outranks
	// the strongest cross-domain pair.
	emailSameDomainBase   = 0.50
	emailCrossDomainScale = 0.40
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName lowercases and strips diacritics ("José" -> "jose").
func foldName(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// levRatio is a normalized Levenshtein similarity in [0,1].
func levRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// nameSimilarity scores two person names: nickname-aware first-name match
// blended with the last-name match, with caps for surname mismatch or a
// missing surname.
func (c *Comparator) nameSimilarity(a, b string) (float64, string) {
	fa, fb := foldName(a), foldName(b)
	if fa == fb {
		return 1.0, ""
	}
	tokensA, tokensB := strings.Fields(fa), strings.Fields(fb)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0, ""
	}

	firstA, firstB := tokensA[0], tokensB[0]
	firstSim := levRatio(firstA, firstB)
	note := ""
	if firstSim < 1.0 && c.nicknames.Equivalent(firstA, firstB) {
		firstSim = 1.0
		note = "nickname equivalence"
	}

	if len(tokensA) == 1 && len(tokensB) == 1 {
		return firstSim, note
	}
	if len(tokensA) == 1 || len(tokensB) == 1 {
		sim := firstSim
		if sim > nameMissingSurnameCeiling {
			sim = nameMissingSurnameCeiling
			note = "missing surname cap"
		}
		return sim, note
	}

	lastA, lastB := tokensA[len(tokensA)-1], tokensB[len(tokensB)-1]
	lastSim := levRatio(lastA, lastB)
	combined := nameFirstShare*firstSim + nameLastShare*lastSim
	if lastSim < lastNameAgreementFloor && combined > nameLastMismatchCeiling {
		combined = nameLastMismatchCeiling
		note = "last-name mismatch cap"
	}
	return combined, note
}

// emailSimilarity scores two addresses. Plus-aliases are stripped from the
// local part, and "rchen" is treated as equivalent to "robert.chen". Domain
// equality is a multiplicative gate, never an additive bonus.
func emailSimilarity(a, b string) (float64, string) {
	la, da := splitEmail(a)
	lb, db := splitEmail(b)
	if la == "" || lb == "" {
		return 0.0, ""
	}
	if la == lb && da == db {
		return 1.0, ""
	}

	localSim := levRatio(la, lb)
	note := ""
	if localAliasEquivalent(la, lb) {
		localSim = 1.0
		note = "local-part alias"
	}

	if da != db {
		return emailCrossDomainScale * localSim, "cross-domain gate"
	}
	return emailSameDomainBase + (1.0-emailSameDomainBase)*localSim, note
}

// splitEmail lowercases, strips a plus-alias, and splits on the last @.
func splitEmail(addr string) (local, domain string) {
	addr = strings.ToLower(strings.TrimSpace(addr))
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return addr, ""
	}
	local, domain = addr[:at], addr[at+1:]
	if plus := strings.Index(local, "+"); plus > 0 {
		local = local[:plus]
	}
	return local, domain
}

// localAliasEquivalent matches dotted and initial-compressed local-part
// forms of the same name: "robert.chen" == "rchen" == "r.chen".
func localAliasEquivalent(a, b string) bool {
	na := strings.ReplaceAll(a, ".", "")
	nb := strings.ReplaceAll(b, ".", "")
	if na == nb {
		return true
	}
	return initialForm(a) == nb || initialForm(b) == na
}

// initialForm compresses "robert.chen" to "rchen"; "" when there is no
// dotted structure to compress.
func initialForm(local string) string {
	parts := strings.Split(local, ".")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}
	return parts[0][:1] + strings.Join(parts[1:], "")
}

// phoneSimilarity is exact-or-nothing: numbers in E.164 either match or
// they identify different lines.
func phoneSimilarity(a, b string) (float64, string) {
	if strings.TrimSpace(a) == strings.TrimSpace(b) {
		return 1.0, ""
	}
	return 0.0, ""
}

// canonicalSimilarity scores two canonical title/department strings:
// equality wins outright, a semantic conflict zeroes the field, anything
// else scores by token-sort ratio.
func (c *Comparator) canonicalSimilarity(a, b string) (float64, string) {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	if na == nb {
		return 1.0, ""
	}
	if c.guard.Check(na, nb).Conflict() {
		return 0.0, "semantic conflict"
	}
	return matching.TokenSortRatio(na, nb), ""
}

// genericSimilarity handles caller-configured extra fields.
func genericSimilarity(a, b string) (float64, string) {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	if na == nb {
		return 1.0, ""
	}
	return matching.TokenSortRatio(na, nb), ""
}
